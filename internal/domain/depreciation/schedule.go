package depreciation

import (
	"strings"
	"time"

	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
)

// ScheduleType is the cadence of a depreciation schedule
type ScheduleType string

const (
	ScheduleTypeMonthly   ScheduleType = "MONTHLY"
	ScheduleTypeQuarterly ScheduleType = "QUARTERLY"
	ScheduleTypeAnnually  ScheduleType = "ANNUALLY"
)

// IsValid checks if the schedule type is valid
func (t ScheduleType) IsValid() bool {
	switch t {
	case ScheduleTypeMonthly, ScheduleTypeQuarterly, ScheduleTypeAnnually:
		return true
	}
	return false
}

// String returns the string representation of ScheduleType
func (t ScheduleType) String() string {
	return string(t)
}

// runsInMonth reports whether the cadence fires in the given month
func (t ScheduleType) runsInMonth(m time.Month) bool {
	switch t {
	case ScheduleTypeMonthly:
		return true
	case ScheduleTypeQuarterly:
		return (m-time.January)%3 == 0
	case ScheduleTypeAnnually:
		return m == time.January
	}
	return false
}

const maxScheduleNameLength = 100

// Schedule is a named, recurring depreciation configuration for a business unit
type Schedule struct {
	shared.TenantAggregateRoot
	Name              string
	Description       string
	ScheduleType      ScheduleType
	ExecutionDay      int
	IncludeCategories []uuid.UUID
	ExcludeCategories []uuid.UUID
	IsActive          bool
	LastExecutedAt    *time.Time
}

// ScheduleSpec carries the mutable fields of a schedule
type ScheduleSpec struct {
	Name              string
	Description       string
	ScheduleType      ScheduleType
	ExecutionDay      int
	IncludeCategories []uuid.UUID
	ExcludeCategories []uuid.UUID
	IsActive          bool
}

// NewSchedule creates a new schedule for a business unit
func NewSchedule(tenantID, createdBy uuid.UUID, spec ScheduleSpec) (*Schedule, error) {
	if err := validateScheduleSpec(&spec); err != nil {
		return nil, err
	}

	s := &Schedule{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
	}
	s.apply(spec)
	s.AddDomainEvent(NewScheduleCreatedEvent(s))
	return s, nil
}

// Update replaces the schedule configuration
func (s *Schedule) Update(spec ScheduleSpec) error {
	if err := validateScheduleSpec(&spec); err != nil {
		return err
	}
	s.apply(spec)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewScheduleUpdatedEvent(s))
	return nil
}

// Toggle flips the active flag and returns the new value. Recorded
// executions are unaffected.
func (s *Schedule) Toggle() bool {
	s.IsActive = !s.IsActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewScheduleUpdatedEvent(s))
	return s.IsActive
}

// MarkExecuted records the time of the latest run
func (s *Schedule) MarkExecuted(at time.Time) {
	s.LastExecutedAt = &at
	s.UpdatedAt = time.Now()
}

// IsDueOn reports whether the schedule should fire on date. Execution days
// past the end of a short month fire on its last day.
func (s *Schedule) IsDueOn(date time.Time) bool {
	if !s.IsActive || !s.ScheduleType.runsInMonth(date.Month()) {
		return false
	}
	day := s.ExecutionDay
	if last := daysIn(date.Year(), date.Month(), date.Location()); day > last {
		day = last
	}
	return date.Day() == day
}

// RanOn reports whether the schedule already executed on the given calendar day
func (s *Schedule) RanOn(date time.Time) bool {
	if s.LastExecutedAt == nil {
		return false
	}
	y1, m1, d1 := s.LastExecutedAt.In(date.Location()).Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (s *Schedule) apply(spec ScheduleSpec) {
	s.Name = spec.Name
	s.Description = spec.Description
	s.ScheduleType = spec.ScheduleType
	s.ExecutionDay = spec.ExecutionDay
	s.IncludeCategories = spec.IncludeCategories
	s.ExcludeCategories = spec.ExcludeCategories
	s.IsActive = spec.IsActive
}

func validateScheduleSpec(spec *ScheduleSpec) error {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" || len(spec.Name) > maxScheduleNameLength {
		return ErrInvalidScheduleName
	}
	if spec.ExecutionDay < 1 || spec.ExecutionDay > 31 {
		return ErrInvalidExecutionDay
	}
	if spec.ScheduleType == "" {
		spec.ScheduleType = ScheduleTypeMonthly
	}
	if !spec.ScheduleType.IsValid() {
		return ErrInvalidScheduleType
	}
	spec.IncludeCategories = dedupe(spec.IncludeCategories)
	spec.ExcludeCategories = dedupe(spec.ExcludeCategories)
	excluded := make(map[uuid.UUID]struct{}, len(spec.ExcludeCategories))
	for _, id := range spec.ExcludeCategories {
		excluded[id] = struct{}{}
	}
	for _, id := range spec.IncludeCategories {
		if _, ok := excluded[id]; ok {
			return ErrInvalidCategoryFilter
		}
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{}
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
