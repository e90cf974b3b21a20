package depreciation

import (
	"time"

	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeScheduleCreated    = "depreciation.schedule.created"
	EventTypeScheduleUpdated    = "depreciation.schedule.updated"
	EventTypeScheduleDeleted    = "depreciation.schedule.deleted"
	EventTypeExecutionStarted   = "depreciation.execution.started"
	EventTypeExecutionCompleted = "depreciation.execution.completed"
	EventTypeExecutionFailed    = "depreciation.execution.failed"

	AggregateTypeSchedule  = "DepreciationSchedule"
	AggregateTypeExecution = "DepreciationExecution"
)

// ScheduleCreatedEvent is raised when a schedule is created
type ScheduleCreatedEvent struct {
	shared.BaseDomainEvent
	ScheduleID   uuid.UUID    `json:"schedule_id"`
	Name         string       `json:"name"`
	ScheduleType ScheduleType `json:"schedule_type"`
	ExecutionDay int          `json:"execution_day"`
}

// NewScheduleCreatedEvent creates a new ScheduleCreatedEvent
func NewScheduleCreatedEvent(s *Schedule) *ScheduleCreatedEvent {
	return &ScheduleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleCreated, AggregateTypeSchedule, s.ID, s.TenantID),
		ScheduleID:      s.ID,
		Name:            s.Name,
		ScheduleType:    s.ScheduleType,
		ExecutionDay:    s.ExecutionDay,
	}
}

// ScheduleUpdatedEvent is raised when a schedule is updated or toggled
type ScheduleUpdatedEvent struct {
	shared.BaseDomainEvent
	ScheduleID uuid.UUID `json:"schedule_id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
}

// NewScheduleUpdatedEvent creates a new ScheduleUpdatedEvent
func NewScheduleUpdatedEvent(s *Schedule) *ScheduleUpdatedEvent {
	return &ScheduleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleUpdated, AggregateTypeSchedule, s.ID, s.TenantID),
		ScheduleID:      s.ID,
		Name:            s.Name,
		IsActive:        s.IsActive,
	}
}

// ScheduleDeletedEvent is raised when a schedule and its history are deleted
type ScheduleDeletedEvent struct {
	shared.BaseDomainEvent
	ScheduleID uuid.UUID `json:"schedule_id"`
	Name       string    `json:"name"`
}

// NewScheduleDeletedEvent creates a new ScheduleDeletedEvent
func NewScheduleDeletedEvent(s *Schedule) *ScheduleDeletedEvent {
	return &ScheduleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleDeleted, AggregateTypeSchedule, s.ID, s.TenantID),
		ScheduleID:      s.ID,
		Name:            s.Name,
	}
}

// ExecutionStartedEvent is raised when a run acquires its lock and starts
type ExecutionStartedEvent struct {
	shared.BaseDomainEvent
	ExecutionID uuid.UUID   `json:"execution_id"`
	ScheduleID  *uuid.UUID  `json:"schedule_id,omitempty"`
	TriggerType TriggerType `json:"trigger_type"`
	RunDate     time.Time   `json:"run_date"`
}

// NewExecutionStartedEvent creates a new ExecutionStartedEvent
func NewExecutionStartedEvent(e *Execution) *ExecutionStartedEvent {
	return &ExecutionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExecutionStarted, AggregateTypeExecution, e.ID, e.TenantID),
		ExecutionID:     e.ID,
		ScheduleID:      e.ScheduleID,
		TriggerType:     e.TriggerType,
		RunDate:         e.RunDate,
	}
}

// ExecutionCompletedEvent is raised when a run reaches COMPLETED or
// COMPLETED_WITH_ERRORS
type ExecutionCompletedEvent struct {
	shared.BaseDomainEvent
	ExecutionID             uuid.UUID       `json:"execution_id"`
	ScheduleID              *uuid.UUID      `json:"schedule_id,omitempty"`
	TriggerType             TriggerType     `json:"trigger_type"`
	Status                  ExecutionStatus `json:"status"`
	TotalAssetsProcessed    int             `json:"total_assets_processed"`
	SuccessfulCalculations  int             `json:"successful_calculations"`
	FailedCalculations      int             `json:"failed_calculations"`
	TotalDepreciationAmount decimal.Decimal `json:"total_depreciation_amount"`
	DurationMs              int64           `json:"duration_ms"`
}

// NewExecutionCompletedEvent creates a new ExecutionCompletedEvent
func NewExecutionCompletedEvent(e *Execution) *ExecutionCompletedEvent {
	return &ExecutionCompletedEvent{
		BaseDomainEvent:         shared.NewBaseDomainEvent(EventTypeExecutionCompleted, AggregateTypeExecution, e.ID, e.TenantID),
		ExecutionID:             e.ID,
		ScheduleID:              e.ScheduleID,
		TriggerType:             e.TriggerType,
		Status:                  e.Status,
		TotalAssetsProcessed:    e.TotalAssetsProcessed,
		SuccessfulCalculations:  e.SuccessfulCalculations,
		FailedCalculations:      e.FailedCalculations,
		TotalDepreciationAmount: e.TotalDepreciationAmount,
		DurationMs:              e.ExecutionDurationMs,
	}
}

// ExecutionFailedEvent is raised when a run aborts on a batch-level fault
type ExecutionFailedEvent struct {
	shared.BaseDomainEvent
	ExecutionID  uuid.UUID   `json:"execution_id"`
	ScheduleID   *uuid.UUID  `json:"schedule_id,omitempty"`
	TriggerType  TriggerType `json:"trigger_type"`
	ErrorMessage string      `json:"error_message"`
	DurationMs   int64       `json:"duration_ms"`
}

// NewExecutionFailedEvent creates a new ExecutionFailedEvent
func NewExecutionFailedEvent(e *Execution) *ExecutionFailedEvent {
	return &ExecutionFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExecutionFailed, AggregateTypeExecution, e.ID, e.TenantID),
		ExecutionID:     e.ID,
		ScheduleID:      e.ScheduleID,
		TriggerType:     e.TriggerType,
		ErrorMessage:    e.ErrorMessage,
		DurationMs:      e.ExecutionDurationMs,
	}
}
