package event

import (
	"context"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/erp/depreciation/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per schedule change and
// per execution outcome.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit handler logging under the "audit" name
func NewAuditLogHandler(log *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: log.Named("audit")}
}

// EventTypes implements shared.EventHandler
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		depreciation.EventTypeScheduleCreated,
		depreciation.EventTypeScheduleUpdated,
		depreciation.EventTypeScheduleDeleted,
		depreciation.EventTypeExecutionCompleted,
		depreciation.EventTypeExecutionFailed,
	}
}

// Handle implements shared.EventHandler
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := append(logger.Fields(ctx),
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)

	switch e := event.(type) {
	case *depreciation.ScheduleCreatedEvent:
		h.logger.Info("Depreciation schedule created", append(fields,
			zap.String("name", e.Name),
			zap.String("schedule_type", string(e.ScheduleType)),
		)...)
	case *depreciation.ScheduleUpdatedEvent:
		h.logger.Info("Depreciation schedule updated", append(fields,
			zap.String("name", e.Name),
			zap.Bool("is_active", e.IsActive),
		)...)
	case *depreciation.ScheduleDeletedEvent:
		h.logger.Info("Depreciation schedule deleted", append(fields, zap.String("name", e.Name))...)
	case *depreciation.ExecutionCompletedEvent:
		h.logger.Info("Depreciation run finished", append(fields,
			zap.String("status", e.Status.String()),
			zap.Int("assets_processed", e.TotalAssetsProcessed),
			zap.Int("assets_failed", e.FailedCalculations),
			zap.String("amount", e.TotalDepreciationAmount.StringFixed(2)),
		)...)
	case *depreciation.ExecutionFailedEvent:
		h.logger.Warn("Depreciation run failed", append(fields, zap.String("error", e.ErrorMessage))...)
	default:
		h.logger.Debug("Unhandled audit event", fields...)
	}
	return nil
}
