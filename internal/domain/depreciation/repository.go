package depreciation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetRepository reads assets from the asset register
type AssetRepository interface {
	// FindByIDForTenant finds an asset within a business unit
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Asset, error)

	// FindEligible resolves the assets a run should depreciate
	FindEligible(ctx context.Context, criteria EligibilityCriteria) ([]Asset, error)

	// FindDue lists active, not fully depreciated assets with a next
	// depreciation date on or before asOf, ordered by that date
	FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Asset, error)

	// CountDue counts the assets FindDue would return
	CountDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error)
}

// ScheduleRepository persists depreciation schedules
type ScheduleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Schedule, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ScheduleFilter) ([]Schedule, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ScheduleFilter) (int64, error)

	// FindActive lists active schedules across all business units, used by
	// the time-based trigger
	FindActive(ctx context.Context) ([]Schedule, error)

	// ExistsByName checks name uniqueness within a business unit, ignoring excludeID
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	Save(ctx context.Context, schedule *Schedule) error

	// DeleteForTenant deletes a schedule together with its execution history
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// MarkExecuted stores the time of the schedule's latest run
	MarkExecuted(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error
}

// ExecutionSummary is the lifetime reduction over finished executions of a
// business unit
type ExecutionSummary struct {
	TotalExecutions             int64
	TotalAssetsProcessed        int64
	TotalSuccessfulCalculations int64
	TotalDepreciationAmount     decimal.Decimal
}

// ExecutionRepository persists executions and reads history
type ExecutionRepository interface {
	// Create inserts a new execution row
	Create(ctx context.Context, execution *Execution) error

	// Update stores the execution's status and counters
	Update(ctx context.Context, execution *Execution) error

	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Execution, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ExecutionFilter) ([]Execution, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ExecutionFilter) (int64, error)

	// FindDetails returns the execution's per-asset rows joined with asset identity
	FindDetails(ctx context.Context, executionID uuid.UUID) ([]DetailView, error)

	// Summarize reduces COMPLETED and COMPLETED_WITH_ERRORS executions
	Summarize(ctx context.Context, tenantID uuid.UUID) (ExecutionSummary, error)

	// FindRunning lists executions still RUNNING, for operator investigation
	FindRunning(ctx context.Context, tenantID uuid.UUID) ([]Execution, error)
}

// PostingRepository writes the per-asset results of a run
type PostingRepository interface {
	// ExistsForPeriod checks whether a ledger entry exists for the asset and period
	ExistsForPeriod(ctx context.Context, assetID uuid.UUID, period Period) (bool, error)

	// Post atomically inserts the ledger entries, updates the asset's
	// depreciation fields and appends the detail row. It returns
	// ErrPeriodAlreadyPosted if any entry collides with an existing period.
	Post(ctx context.Context, entries []LedgerEntry, asset *Asset, detail AssetDepreciationDetail) error

	// RecordDetail appends a detail row without touching the asset or ledger
	RecordDetail(ctx context.Context, detail AssetDepreciationDetail) error
}

// LedgerRepository reads posted ledger entries
type LedgerRepository interface {
	FindByAsset(ctx context.Context, tenantID, assetID uuid.UUID) ([]LedgerEntry, error)
}

// UsageRepository stores usage readings for units of production
type UsageRepository interface {
	Upsert(ctx context.Context, reading *UsageReading) error
	FindForAsset(ctx context.Context, tenantID, assetID uuid.UUID) ([]UsageReading, error)
	// FindForAssets returns readings keyed by asset for a set of assets
	FindForAssets(ctx context.Context, tenantID uuid.UUID, assetIDs []uuid.UUID) (map[uuid.UUID][]UsageReading, error)
}

// ExecutionLock is an exclusive, expiring lock keyed by schedule or manual scope
type ExecutionLock interface {
	// Acquire tries to take the lock without waiting. It returns a release
	// token and false if the lock is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)

	// Release frees the lock if token still owns it
	Release(ctx context.Context, key, token string) error
}

// UsageIndex builds a UsageLookup over a set of readings
func UsageIndex(readings []UsageReading) UsageLookup {
	byPeriod := make(map[Period]decimal.Decimal, len(readings))
	for _, r := range readings {
		byPeriod[Period{Year: r.Year, Month: time.Month(r.Month)}] = r.Units
	}
	return func(p Period) *decimal.Decimal {
		units, ok := byPeriod[p]
		if !ok {
			return nil
		}
		return &units
	}
}
