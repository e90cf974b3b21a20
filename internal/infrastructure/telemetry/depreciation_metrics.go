package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics recorder is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// RunMetrics records depreciation run metrics from execution events.
// It is registered on the event bus as a handler for the execution
// lifecycle events.
type RunMetrics struct {
	logger *zap.Logger

	runsTotal       *Counter
	assetsProcessed *Counter
	assetsFailed    *Counter
	amountTotal     *Counter
	runDuration     *Histogram
	runsInFlight    metric.Int64UpDownCounter
	lastRunAssets   *Gauge
}

// NewRunMetrics creates the run instruments on the given meter.
func NewRunMetrics(meter metric.Meter, logger *zap.Logger) (*RunMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &RunMetrics{logger: logger}
	var err error

	if m.runsTotal, err = NewCounter(meter,
		"depreciation_runs_total",
		"Depreciation runs that reached a terminal status",
		"{runs}",
	); err != nil {
		return nil, err
	}
	if m.assetsProcessed, err = NewCounter(meter,
		"depreciation_assets_processed_total",
		"Assets processed by depreciation runs",
		"{assets}",
	); err != nil {
		return nil, err
	}
	if m.assetsFailed, err = NewCounter(meter,
		"depreciation_assets_failed_total",
		"Assets whose depreciation failed",
		"{assets}",
	); err != nil {
		return nil, err
	}
	if m.amountTotal, err = NewCounter(meter,
		"depreciation_amount_minor_total",
		"Depreciation posted, in minor currency units",
		"{cents}",
	); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "depreciation_run_duration_seconds",
		Description: "Wall clock duration of depreciation runs",
		Unit:        "s",
		Boundaries:  RunDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.runsInFlight, err = meter.Int64UpDownCounter(
		"depreciation_runs_in_flight",
		metric.WithDescription("Depreciation runs currently RUNNING"),
		metric.WithUnit("{runs}"),
	); err != nil {
		return nil, err
	}
	if m.lastRunAssets, err = NewGauge(meter,
		"depreciation_last_run_assets",
		"Assets processed by the most recent run of a tenant",
		"{assets}",
	); err != nil {
		return nil, err
	}

	return m, nil
}

// EventTypes implements shared.EventHandler.
func (m *RunMetrics) EventTypes() []string {
	return []string{
		depreciation.EventTypeExecutionStarted,
		depreciation.EventTypeExecutionCompleted,
		depreciation.EventTypeExecutionFailed,
	}
}

// Handle implements shared.EventHandler.
func (m *RunMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *depreciation.ExecutionStartedEvent:
		m.runsInFlight.Add(ctx, 1, metric.WithAttributes(tenant))

	case *depreciation.ExecutionCompletedEvent:
		m.runsInFlight.Add(ctx, -1, metric.WithAttributes(tenant))
		attrs := []attribute.KeyValue{
			tenant,
			AttrTriggerType.String(string(e.TriggerType)),
			AttrStatus.String(e.Status.String()),
		}
		m.runsTotal.Inc(ctx, attrs...)
		m.runDuration.RecordDuration(ctx, time.Duration(e.DurationMs)*time.Millisecond, attrs...)
		m.assetsProcessed.Add(ctx, int64(e.TotalAssetsProcessed), tenant)
		m.assetsFailed.Add(ctx, int64(e.FailedCalculations), tenant)
		m.amountTotal.Add(ctx, e.TotalDepreciationAmount.Shift(2).Round(0).IntPart(), tenant)
		m.lastRunAssets.Record(ctx, int64(e.TotalAssetsProcessed), tenant)

	case *depreciation.ExecutionFailedEvent:
		m.runsInFlight.Add(ctx, -1, metric.WithAttributes(tenant))
		attrs := []attribute.KeyValue{
			tenant,
			AttrTriggerType.String(string(e.TriggerType)),
			AttrStatus.String(depreciation.ExecutionStatusFailed.String()),
		}
		m.runsTotal.Inc(ctx, attrs...)
		m.runDuration.RecordDuration(ctx, time.Duration(e.DurationMs)*time.Millisecond, attrs...)

	default:
		m.logger.Debug("Ignoring unexpected event", zap.String("event_type", event.EventType()))
	}
	return nil
}
