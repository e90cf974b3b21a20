package depreciation

import (
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateScheduleRequest represents a request to create a depreciation schedule
type CreateScheduleRequest struct {
	Name              string      `json:"name" binding:"required,min=1,max=100"`
	Description       string      `json:"description" binding:"max=500"`
	ScheduleType      string      `json:"schedule_type" binding:"omitempty,oneof=MONTHLY QUARTERLY ANNUALLY"`
	ExecutionDay      int         `json:"execution_day" binding:"required,min=1,max=31"`
	IncludeCategories []uuid.UUID `json:"include_categories"`
	ExcludeCategories []uuid.UUID `json:"exclude_categories"`
	IsActive          *bool       `json:"is_active"`
}

// UpdateScheduleRequest represents a request to replace a schedule's configuration
type UpdateScheduleRequest struct {
	Name              string      `json:"name" binding:"required,min=1,max=100"`
	Description       string      `json:"description" binding:"max=500"`
	ScheduleType      string      `json:"schedule_type" binding:"omitempty,oneof=MONTHLY QUARTERLY ANNUALLY"`
	ExecutionDay      int         `json:"execution_day" binding:"required,min=1,max=31"`
	IncludeCategories []uuid.UUID `json:"include_categories"`
	ExcludeCategories []uuid.UUID `json:"exclude_categories"`
	IsActive          *bool       `json:"is_active"`
}

// ScheduleListFilter represents filter options for the schedule list
type ScheduleListFilter struct {
	Search       string `form:"search"`
	ScheduleType string `form:"schedule_type" binding:"omitempty,oneof=MONTHLY QUARTERLY ANNUALLY"`
	IsActive     *bool  `form:"is_active"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size" binding:"omitempty,max=100"`
}

// ScheduleResponse represents a schedule in API responses
type ScheduleResponse struct {
	ID                uuid.UUID   `json:"id"`
	TenantID          uuid.UUID   `json:"tenant_id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	ScheduleType      string      `json:"schedule_type"`
	ExecutionDay      int         `json:"execution_day"`
	IncludeCategories []uuid.UUID `json:"include_categories"`
	ExcludeCategories []uuid.UUID `json:"exclude_categories"`
	IsActive          bool        `json:"is_active"`
	LastExecutedAt    *time.Time  `json:"last_executed_at,omitempty"`
	CreatedBy         *uuid.UUID  `json:"created_by,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	Version           int         `json:"version"`
}

// ToScheduleResponse converts a domain Schedule to ScheduleResponse
func ToScheduleResponse(s *depreciation.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:                s.ID,
		TenantID:          s.TenantID,
		Name:              s.Name,
		Description:       s.Description,
		ScheduleType:      s.ScheduleType.String(),
		ExecutionDay:      s.ExecutionDay,
		IncludeCategories: nonNilIDs(s.IncludeCategories),
		ExcludeCategories: nonNilIDs(s.ExcludeCategories),
		IsActive:          s.IsActive,
		LastExecutedAt:    s.LastExecutedAt,
		CreatedBy:         s.GetCreatedBy(),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

// ExecutionListFilter represents filter options for execution history
type ExecutionListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING RUNNING COMPLETED COMPLETED_WITH_ERRORS FAILED"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	ScheduleID string     `form:"schedule_id" binding:"omitempty,uuid"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
}

// ToDomain converts the request filter into the typed history filter
func (f ExecutionListFilter) ToDomain() depreciation.ExecutionFilter {
	filter := depreciation.ExecutionFilter{
		DateFrom: f.DateFrom,
		DateTo:   f.DateTo,
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if id, err := uuid.Parse(f.ScheduleID); err == nil {
		filter.ScheduleID = &id
	}
	if f.Status != "" {
		status := depreciation.ExecutionStatus(f.Status)
		filter.Status = &status
	}
	if filter.DateTo != nil {
		end := filter.DateTo.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.DateTo = &end
	}
	filter.Normalize()
	return filter
}

// ExecutionResponse represents an execution in API responses
type ExecutionResponse struct {
	ID                      uuid.UUID       `json:"id"`
	ScheduleID              *uuid.UUID      `json:"schedule_id,omitempty"`
	ExecutorID              *uuid.UUID      `json:"executor_id,omitempty"`
	TriggerType             string          `json:"trigger_type"`
	RunDate                 time.Time       `json:"run_date"`
	ExecutionDate           time.Time       `json:"execution_date"`
	Status                  string          `json:"status"`
	TotalAssetsProcessed    int             `json:"total_assets_processed"`
	SuccessfulCalculations  int             `json:"successful_calculations"`
	FailedCalculations      int             `json:"failed_calculations"`
	SkippedAssets           int             `json:"skipped_assets"`
	TotalDepreciationAmount decimal.Decimal `json:"total_depreciation_amount"`
	ExecutionDurationMs     int64           `json:"execution_duration_ms"`
	ErrorMessage            string          `json:"error_message,omitempty"`
	CompletedAt             *time.Time      `json:"completed_at,omitempty"`
}

// ToExecutionResponse converts a domain Execution to ExecutionResponse
func ToExecutionResponse(e *depreciation.Execution) ExecutionResponse {
	return ExecutionResponse{
		ID:                      e.ID,
		ScheduleID:              e.ScheduleID,
		ExecutorID:              e.ExecutorID,
		TriggerType:             string(e.TriggerType),
		RunDate:                 e.RunDate,
		ExecutionDate:           e.ExecutionDate,
		Status:                  e.Status.String(),
		TotalAssetsProcessed:    e.TotalAssetsProcessed,
		SuccessfulCalculations:  e.SuccessfulCalculations,
		FailedCalculations:      e.FailedCalculations,
		SkippedAssets:           e.SkippedAssets,
		TotalDepreciationAmount: e.TotalDepreciationAmount,
		ExecutionDurationMs:     e.ExecutionDurationMs,
		ErrorMessage:            e.ErrorMessage,
		CompletedAt:             e.CompletedAt,
	}
}

// DetailResponse is one asset's outcome within an execution
type DetailResponse struct {
	AssetID            uuid.UUID       `json:"asset_id"`
	ItemCode           string          `json:"item_code"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Status             string          `json:"status"`
	DepreciationAmount decimal.Decimal `json:"depreciation_amount"`
	BookValueBefore    decimal.Decimal `json:"book_value_before"`
	BookValueAfter     decimal.Decimal `json:"book_value_after"`
	PeriodsPosted      int             `json:"periods_posted"`
	ErrorMessage       *string         `json:"error_message,omitempty"`
}

// ExecutionDetailResponse is an execution with its per-asset rows
type ExecutionDetailResponse struct {
	ExecutionResponse
	Details      []DetailResponse `json:"details"`
	FailedAssets []DetailResponse `json:"failed_assets"`
}

// ToDetailResponse converts a detail view to DetailResponse
func ToDetailResponse(d depreciation.DetailView) DetailResponse {
	return DetailResponse{
		AssetID:            d.AssetID,
		ItemCode:           d.ItemCode,
		Description:        d.Description,
		Category:           d.CategoryName,
		Status:             string(d.Status),
		DepreciationAmount: d.DepreciationAmount,
		BookValueBefore:    d.BookValueBefore,
		BookValueAfter:     d.BookValueAfter,
		PeriodsPosted:      d.PeriodsPosted,
		ErrorMessage:       d.ErrorMessage,
	}
}

// SummaryResponse is the lifetime execution summary of a business unit
type SummaryResponse struct {
	TotalExecutions             int64           `json:"total_executions"`
	TotalAssetsProcessed        int64           `json:"total_assets_processed"`
	TotalSuccessfulCalculations int64           `json:"total_successful_calculations"`
	TotalDepreciationAmount     decimal.Decimal `json:"total_depreciation_amount"`
}

// TriggerResponse is returned by the asynchronous run triggers
type TriggerResponse struct {
	ExecutionID uuid.UUID  `json:"execution_id"`
	ScheduleID  *uuid.UUID `json:"schedule_id,omitempty"`
	Status      string     `json:"status"`
	RunDate     time.Time  `json:"run_date"`
}

// ManualRunRequest represents a request to start an ad-hoc run
type ManualRunRequest struct {
	RunDate *time.Time `json:"run_date"`
}

// DueAssetResponse is one asset awaiting depreciation
type DueAssetResponse struct {
	AssetID              uuid.UUID       `json:"asset_id"`
	ItemCode             string          `json:"item_code"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	NextDepreciationDate *time.Time      `json:"next_depreciation_date"`
	MonthlyDepreciation  decimal.Decimal `json:"monthly_depreciation"`
	CurrentBookValue     decimal.Decimal `json:"current_book_value"`
}

// DueWorkResponse answers how many and which assets are due
type DueWorkResponse struct {
	Count int64              `json:"count"`
	Items []DueAssetResponse `json:"items"`
}

// ToDueAssetResponse converts a domain Asset to DueAssetResponse
func ToDueAssetResponse(a *depreciation.Asset) DueAssetResponse {
	return DueAssetResponse{
		AssetID:              a.ID,
		ItemCode:             a.ItemCode,
		Description:          a.Description,
		Category:             a.CategoryName,
		NextDepreciationDate: a.NextDepreciationDate,
		MonthlyDepreciation:  a.MonthlyDepreciation,
		CurrentBookValue:     a.CurrentBookValue,
	}
}

// ProjectionResponse is the month-by-month schedule of an asset
type ProjectionResponse struct {
	AssetID                  uuid.UUID                    `json:"asset_id"`
	ItemCode                 string                       `json:"item_code"`
	Method                   string                       `json:"method"`
	UsefulLifeMonths         int                          `json:"useful_life_months"`
	UsefulLifeReviewRequired bool                         `json:"useful_life_review_required"`
	Rows                     []depreciation.ProjectionRow `json:"rows"`
}

// RecordUsageRequest represents a usage reading for units of production
type RecordUsageRequest struct {
	Year  int             `json:"year" binding:"required,min=1900,max=9999"`
	Month int             `json:"month" binding:"required,min=1,max=12"`
	Units decimal.Decimal `json:"units"`
}

// UsageReadingResponse represents a stored usage reading
type UsageReadingResponse struct {
	ID        uuid.UUID       `json:"id"`
	AssetID   uuid.UUID       `json:"asset_id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Units     decimal.Decimal `json:"units"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToUsageReadingResponse converts a domain UsageReading to UsageReadingResponse
func ToUsageReadingResponse(r *depreciation.UsageReading) UsageReadingResponse {
	return UsageReadingResponse{
		ID:        r.ID,
		AssetID:   r.AssetID,
		Year:      r.Year,
		Month:     r.Month,
		Units:     r.Units,
		UpdatedAt: r.UpdatedAt,
	}
}
