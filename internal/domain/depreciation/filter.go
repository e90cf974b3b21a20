package depreciation

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ExecutionFilter narrows execution history queries. Nil fields are not applied.
type ExecutionFilter struct {
	Status     *ExecutionStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	ScheduleID *uuid.UUID
	Page       int
	PageSize   int
}

// Normalize clamps paging to sane bounds
func (f *ExecutionFilter) Normalize() {
	f.Page, f.PageSize = normalizePaging(f.Page, f.PageSize)
}

// Offset returns the row offset of the requested page
func (f ExecutionFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// ScheduleFilter narrows schedule listings
type ScheduleFilter struct {
	IsActive     *bool
	ScheduleType *ScheduleType
	Search       string
	Page         int
	PageSize     int
}

// Normalize clamps paging to sane bounds
func (f *ScheduleFilter) Normalize() {
	f.Page, f.PageSize = normalizePaging(f.Page, f.PageSize)
}

// Offset returns the row offset of the requested page
func (f ScheduleFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
