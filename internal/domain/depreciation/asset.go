package depreciation

import (
	"time"

	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset is the depreciation view of a fixed asset. The asset itself is owned
// by the asset register; this engine only reads its identity and mutates the
// depreciation fields.
type Asset struct {
	shared.BaseEntity
	TenantID     uuid.UUID
	ItemCode     string
	Description  string
	CategoryID   uuid.UUID
	CategoryName string
	IsActive     bool

	PurchasePrice           *decimal.Decimal
	SalvageValue            decimal.Decimal
	CurrentBookValue        decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	MonthlyDepreciation     decimal.Decimal

	// UsefulLifeMonths is the canonical total useful life once the asset has
	// passed through NormalizeUsefulLife.
	UsefulLifeMonths int
	// UsefulLifeYears is the legacy years component. Nil once normalized.
	UsefulLifeYears          *int
	UsefulLifeReviewRequired bool

	Method                  Method
	DepreciationStartDate   *time.Time
	LastDepreciationDate    *time.Time
	NextDepreciationDate    *time.Time
	IsFullyDepreciated      bool
	PriorDepreciationMonths int
	DepreciatedPeriods      int
	TotalEstimatedUnits     *decimal.Decimal

	Version int
}

// ElapsedPeriods is the number of periods already depreciated, including
// periods booked before this engine existed
func (a *Asset) ElapsedPeriods() int {
	return a.PriorDepreciationMonths + a.DepreciatedPeriods
}

// RemainingPeriods is the number of periods left in the useful life, never negative
func (a *Asset) RemainingPeriods() int {
	remaining := a.UsefulLifeMonths - a.ElapsedPeriods()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DepreciableAmount is purchase price minus salvage value
func (a *Asset) DepreciableAmount() decimal.Decimal {
	if a.PurchasePrice == nil {
		return decimal.Zero
	}
	return a.PurchasePrice.Sub(a.SalvageValue)
}

// IsAtSalvage reports whether the book value has reached the salvage floor
func (a *Asset) IsAtSalvage() bool {
	return a.CurrentBookValue.LessThanOrEqual(a.SalvageValue)
}

// DuePeriod returns the first period the asset still needs posted. Assets
// without a next date fall back to the start date, then to asOf.
func (a *Asset) DuePeriod(asOf time.Time) Period {
	switch {
	case a.NextDepreciationDate != nil:
		return PeriodOf(*a.NextDepreciationDate)
	case a.DepreciationStartDate != nil:
		return PeriodOf(*a.DepreciationStartDate)
	default:
		return PeriodOf(asOf)
	}
}

// dueDate returns the date the next posting is scheduled for
func (a *Asset) dueDate(asOf time.Time) time.Time {
	switch {
	case a.NextDepreciationDate != nil:
		return *a.NextDepreciationDate
	case a.DepreciationStartDate != nil:
		return *a.DepreciationStartDate
	default:
		return DateOnly(asOf)
	}
}

// IsDue reports whether the asset has depreciation due on or before asOf
func (a *Asset) IsDue(asOf time.Time) bool {
	if !a.IsActive || a.IsFullyDepreciated {
		return false
	}
	if a.NextDepreciationDate == nil {
		return false
	}
	return !a.NextDepreciationDate.After(asOf)
}

// ApplyPosting moves the asset forward by one period using a calculation
// result. The posting date becomes the last depreciation date and the next
// date is one month later.
func (a *Asset) ApplyPosting(result Result, postedFor time.Time) {
	a.CurrentBookValue = result.NewBookValue
	a.AccumulatedDepreciation = result.NewAccumulated
	if !result.MonthlyDepreciation.IsZero() {
		a.MonthlyDepreciation = result.MonthlyDepreciation
	}
	a.IsFullyDepreciated = result.FullyDepreciated
	a.DepreciatedPeriods++

	last := postedFor
	next := AddMonths(postedFor, 1)
	a.LastDepreciationDate = &last
	a.NextDepreciationDate = &next
	if a.DepreciationStartDate == nil {
		start := postedFor
		a.DepreciationStartDate = &start
	}
	a.UpdatedAt = time.Now()
}

// Normalize converts the stored useful life into canonical total months,
// recording whether the legacy representation was ambiguous.
func (a *Asset) Normalize() {
	nl := NormalizeUsefulLife(a.UsefulLifeYears, a.UsefulLifeMonths)
	a.UsefulLifeMonths = nl.TotalMonths
	a.UsefulLifeReviewRequired = a.UsefulLifeReviewRequired || nl.ReviewRequired
	if !nl.ReviewRequired {
		a.UsefulLifeYears = nil
	}
}

// NormalizedLife is the result of normalizing a legacy useful life
type NormalizedLife struct {
	TotalMonths    int
	ReviewRequired bool
}

// NormalizeUsefulLife resolves the legacy years+months representation into a
// single month count.
//
//   - years unset or zero: months is the total.
//   - months > 12: months is already a total. If years is set and disagrees
//     with months/12 both readings are plausible and the asset is flagged.
//   - months <= 12: months is the leftover after whole years. A leftover of
//     exactly 12 alongside years could be either form and is flagged.
func NormalizeUsefulLife(years *int, months int) NormalizedLife {
	if years == nil || *years == 0 {
		return NormalizedLife{TotalMonths: months}
	}
	y := *years
	if y < 0 {
		return NormalizedLife{TotalMonths: months, ReviewRequired: true}
	}
	if months > 12 {
		return NormalizedLife{
			TotalMonths:    months,
			ReviewRequired: months/12 != y,
		}
	}
	return NormalizedLife{
		TotalMonths:    y*12 + months,
		ReviewRequired: months == 12,
	}
}
