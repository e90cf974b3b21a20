package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleRunner executes one schedule synchronously
type ScheduleRunner interface {
	RunSchedule(ctx context.Context, tenantID, scheduleID uuid.UUID, runDate time.Time) (*depreciation.Execution, error)
}

// ScheduleSource lists the schedules the trigger considers
type ScheduleSource interface {
	FindActive(ctx context.Context) ([]depreciation.Schedule, error)
}

// CheckResult summarizes one due check
type CheckResult struct {
	Due     int
	Started int
	Busy    int
	Failed  int
}

// DueScheduleTrigger runs every active schedule whose cadence falls on the
// check date and that has not already run that day
type DueScheduleTrigger struct {
	schedules ScheduleSource
	runner    ScheduleRunner
	logger    *zap.Logger
}

// NewDueScheduleTrigger creates a new DueScheduleTrigger
func NewDueScheduleTrigger(schedules ScheduleSource, runner ScheduleRunner, logger *zap.Logger) *DueScheduleTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DueScheduleTrigger{
		schedules: schedules,
		runner:    runner,
		logger:    logger,
	}
}

// CheckAndRun runs the schedules due on now's calendar day, one after another
func (t *DueScheduleTrigger) CheckAndRun(ctx context.Context, now time.Time) CheckResult {
	var result CheckResult

	schedules, err := t.schedules.FindActive(ctx)
	if err != nil {
		t.logger.Error("Failed to load active depreciation schedules", zap.Error(err))
		return result
	}

	runDate := depreciation.DateOnly(now)
	for i := range schedules {
		schedule := &schedules[i]
		if !schedule.IsDueOn(now) || schedule.RanOn(now) {
			continue
		}
		result.Due++

		if err := ctx.Err(); err != nil {
			t.logger.Warn("Due check interrupted", zap.Error(err))
			return result
		}

		log := t.logger.With(
			zap.String("tenant_id", schedule.TenantID.String()),
			zap.String("schedule_id", schedule.ID.String()),
			zap.String("schedule_name", schedule.Name),
		)

		var execution *depreciation.Execution
		telemetry.WithProfilingLabels(ctx, map[string]string{
			telemetry.ProfilingLabelOperation: "depreciation_run",
			telemetry.ProfilingLabelTrigger:   string(depreciation.TriggerScheduled),
			telemetry.ProfilingLabelTenantID:  schedule.TenantID.String(),
		}, func(ctx context.Context) {
			execution, err = t.runner.RunSchedule(ctx, schedule.TenantID, schedule.ID, runDate)
		})
		switch {
		case err == nil:
			result.Started++
			log.Info("Scheduled depreciation run finished",
				zap.String("execution_id", execution.ID.String()),
				zap.String("status", execution.Status.String()),
			)
		case errors.Is(err, depreciation.ErrScheduleBusy):
			result.Busy++
			log.Info("Schedule already running, skipped")
		default:
			result.Failed++
			log.Error("Scheduled depreciation run could not start", zap.Error(err))
		}
	}

	if result.Due > 0 {
		t.logger.Info("Depreciation due check completed",
			zap.Time("run_date", runDate),
			zap.Int("due", result.Due),
			zap.Int("started", result.Started),
			zap.Int("busy", result.Busy),
			zap.Int("failed", result.Failed),
		)
	}
	return result
}
