package depreciation

import (
	"fmt"
	"time"

	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExecutionStatus is the state of a batch run
type ExecutionStatus string

const (
	ExecutionStatusPending             ExecutionStatus = "PENDING"
	ExecutionStatusRunning             ExecutionStatus = "RUNNING"
	ExecutionStatusCompleted           ExecutionStatus = "COMPLETED"
	ExecutionStatusCompletedWithErrors ExecutionStatus = "COMPLETED_WITH_ERRORS"
	ExecutionStatusFailed              ExecutionStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s ExecutionStatus) IsValid() bool {
	switch s {
	case ExecutionStatusPending, ExecutionStatusRunning, ExecutionStatusCompleted,
		ExecutionStatusCompletedWithErrors, ExecutionStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusCompletedWithErrors || s == ExecutionStatusFailed
}

// String returns the string representation of ExecutionStatus
func (s ExecutionStatus) String() string {
	return string(s)
}

// TriggerType records what started a run
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerManual    TriggerType = "MANUAL"
)

// Execution is one batch run of the depreciation engine
type Execution struct {
	shared.BaseAggregateRoot
	TenantID                uuid.UUID
	ScheduleID              *uuid.UUID
	ExecutorID              *uuid.UUID
	TriggerType             TriggerType
	RunDate                 time.Time
	ExecutionDate           time.Time
	Status                  ExecutionStatus
	TotalAssetsProcessed    int
	SuccessfulCalculations  int
	FailedCalculations      int
	SkippedAssets           int
	TotalDepreciationAmount decimal.Decimal
	ExecutionDurationMs     int64
	ErrorMessage            string
	CompletedAt             *time.Time
}

// NewScheduledExecution creates a pending execution for a schedule
func NewScheduledExecution(tenantID, scheduleID uuid.UUID, runDate time.Time) *Execution {
	e := newExecution(tenantID, TriggerScheduled, runDate)
	e.ScheduleID = &scheduleID
	return e
}

// NewManualExecution creates a pending ad-hoc execution started by a user.
// scheduleID is set when an administrator runs a specific schedule on demand.
func NewManualExecution(tenantID, executorID uuid.UUID, scheduleID *uuid.UUID, runDate time.Time) *Execution {
	e := newExecution(tenantID, TriggerManual, runDate)
	e.ExecutorID = &executorID
	e.ScheduleID = scheduleID
	return e
}

func newExecution(tenantID uuid.UUID, trigger TriggerType, runDate time.Time) *Execution {
	return &Execution{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(),
		TenantID:                tenantID,
		TriggerType:             trigger,
		RunDate:                 runDate,
		Status:                  ExecutionStatusPending,
		TotalDepreciationAmount: decimal.Zero,
	}
}

// Start moves the execution from PENDING to RUNNING
func (e *Execution) Start() error {
	if e.Status != ExecutionStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start execution in %s status", e.Status))
	}
	now := time.Now()
	e.Status = ExecutionStatusRunning
	e.ExecutionDate = now
	e.UpdatedAt = now
	e.AddDomainEvent(NewExecutionStartedEvent(e))
	return nil
}

// RecordSuccess counts a successfully posted asset
func (e *Execution) RecordSuccess(amount decimal.Decimal) {
	e.TotalAssetsProcessed++
	e.SuccessfulCalculations++
	e.TotalDepreciationAmount = e.TotalDepreciationAmount.Add(amount)
}

// RecordSkip counts an asset that needed no posting. Skips are neither
// failures nor calculations.
func (e *Execution) RecordSkip() {
	e.TotalAssetsProcessed++
	e.SkippedAssets++
}

// RecordFailure counts an asset whose calculation or posting failed
func (e *Execution) RecordFailure() {
	e.TotalAssetsProcessed++
	e.FailedCalculations++
}

// Complete finalizes a run that reached the end of its asset list. Any
// per-asset failure yields COMPLETED_WITH_ERRORS.
func (e *Execution) Complete() error {
	if e.Status != ExecutionStatusRunning {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete execution in %s status", e.Status))
	}
	e.Status = ExecutionStatusCompleted
	if e.FailedCalculations > 0 {
		e.Status = ExecutionStatusCompletedWithErrors
		e.ErrorMessage = fmt.Sprintf("%d of %d assets failed", e.FailedCalculations, e.TotalAssetsProcessed)
	}
	e.finish()
	e.AddDomainEvent(NewExecutionCompletedEvent(e))
	return nil
}

// Fail finalizes a run that hit a batch-level fault
func (e *Execution) Fail(reason string) error {
	if e.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail execution in %s status", e.Status))
	}
	if e.ExecutionDate.IsZero() {
		e.ExecutionDate = time.Now()
	}
	e.Status = ExecutionStatusFailed
	e.ErrorMessage = reason
	e.finish()
	e.AddDomainEvent(NewExecutionFailedEvent(e))
	return nil
}

func (e *Execution) finish() {
	now := time.Now()
	e.CompletedAt = &now
	e.ExecutionDurationMs = now.Sub(e.ExecutionDate).Milliseconds()
	e.UpdatedAt = now
}

// LockKey is the key of the exclusive lock a run holds. Manual runs without a
// schedule share one key per business unit.
func (e *Execution) LockKey() string {
	return LockKeyFor(e.TenantID, e.ScheduleID)
}

// LockKeyFor builds the execution lock key for a schedule or a manual run
func LockKeyFor(tenantID uuid.UUID, scheduleID *uuid.UUID) string {
	if scheduleID != nil {
		return "schedule:" + scheduleID.String()
	}
	return "manual:" + tenantID.String()
}
