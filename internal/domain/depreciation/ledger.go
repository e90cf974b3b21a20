package depreciation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is the period-keyed record of one depreciation posting. There is
// at most one entry per asset per year and month.
type LedgerEntry struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	AssetID            uuid.UUID
	ExecutionID        *uuid.UUID
	DepreciationDate   time.Time
	PeriodYear         int
	PeriodMonth        int
	DepreciationAmount decimal.Decimal
	BookValueStart     decimal.Decimal
	BookValueEnd       decimal.Decimal
	Method             Method
	CreatedAt          time.Time
}

// Period returns the period the entry covers
func (l *LedgerEntry) Period() Period {
	return Period{Year: l.PeriodYear, Month: time.Month(l.PeriodMonth)}
}

// NewLedgerEntries converts a posting plan into ledger entries
func NewLedgerEntries(tenantID uuid.UUID, executionID *uuid.UUID, asset *Asset, plan PostingPlan) []LedgerEntry {
	now := time.Now()
	entries := make([]LedgerEntry, 0, len(plan.Postings))
	for _, p := range plan.Postings {
		entries = append(entries, LedgerEntry{
			ID:                 uuid.New(),
			TenantID:           tenantID,
			AssetID:            asset.ID,
			ExecutionID:        executionID,
			DepreciationDate:   p.Date,
			PeriodYear:         p.Period.Year,
			PeriodMonth:        int(p.Period.Month),
			DepreciationAmount: p.Result.Amount,
			BookValueStart:     p.Result.BookValueBefore,
			BookValueEnd:       p.Result.NewBookValue,
			Method:             asset.Method,
			CreatedAt:          now,
		})
	}
	return entries
}

// UsageReading is the number of units an asset produced in a period, used by
// the units of production method
type UsageReading struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	AssetID   uuid.UUID
	Year      int
	Month     int
	Units     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUsageReading validates and creates a usage reading
func NewUsageReading(tenantID, assetID uuid.UUID, period Period, units decimal.Decimal) (*UsageReading, error) {
	if units.IsNegative() {
		return nil, ErrNegativeUsage
	}
	if period.Month < time.January || period.Month > time.December || period.Year < 1900 {
		return nil, ErrInvalidPeriod
	}
	now := time.Now()
	return &UsageReading{
		ID:        uuid.New(),
		TenantID:  tenantID,
		AssetID:   assetID,
		Year:      period.Year,
		Month:     int(period.Month),
		Units:     units,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
