package depreciation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory backing store shared by the repository fakes used
// in batch executor scenarios
type memStore struct {
	mu         sync.Mutex
	assets     map[uuid.UUID]depreciation.Asset
	schedules  map[uuid.UUID]depreciation.Schedule
	executions map[uuid.UUID]depreciation.Execution
	details    []depreciation.AssetDepreciationDetail
	ledger     map[ledgerKey]depreciation.LedgerEntry
	usage      []depreciation.UsageReading

	// postHook runs before each Post; a non-nil error is returned as is
	postHook func(ctx context.Context, assetID uuid.UUID) error
	// eligibleErr is returned by FindEligible when set
	eligibleErr error
}

type ledgerKey struct {
	assetID uuid.UUID
	period  depreciation.Period
}

func newMemStore() *memStore {
	return &memStore{
		assets:     make(map[uuid.UUID]depreciation.Asset),
		schedules:  make(map[uuid.UUID]depreciation.Schedule),
		executions: make(map[uuid.UUID]depreciation.Execution),
		ledger:     make(map[ledgerKey]depreciation.LedgerEntry),
	}
}

func (s *memStore) addAsset(a depreciation.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID] = a
}

func (s *memStore) addSchedule(sc *depreciation.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sc.ID] = *sc
}

func (s *memStore) asset(id uuid.UUID) depreciation.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[id]
}

func (s *memStore) execution(id uuid.UUID) depreciation.Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executions[id]
}

func (s *memStore) detailsFor(executionID uuid.UUID) []depreciation.AssetDepreciationDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []depreciation.AssetDepreciationDetail
	for _, d := range s.details {
		if d.ExecutionID == executionID {
			out = append(out, d)
		}
	}
	return out
}

func (s *memStore) ledgerFor(assetID uuid.UUID) []depreciation.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []depreciation.LedgerEntry
	for k, e := range s.ledger {
		if k.assetID == assetID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period().Before(out[j].Period()) })
	return out
}

func (s *memStore) runningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.executions {
		if e.Status == depreciation.ExecutionStatusRunning {
			n++
		}
	}
	return n
}

// memAssetRepo implements depreciation.AssetRepository
type memAssetRepo struct{ *memStore }

func (r memAssetRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*depreciation.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok || a.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (r memAssetRepo) FindEligible(_ context.Context, criteria depreciation.EligibilityCriteria) ([]depreciation.Asset, error) {
	if r.eligibleErr != nil {
		return nil, r.eligibleErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []depreciation.Asset
	for _, a := range r.assets {
		if criteria.Matches(&a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out, nil
}

func (r memAssetRepo) FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]depreciation.Asset, error) {
	return r.FindEligible(ctx, depreciation.ManualCriteria(tenantID, asOf))
}

func (r memAssetRepo) CountDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	assets, err := r.FindDue(ctx, tenantID, asOf)
	return int64(len(assets)), err
}

// memScheduleRepo implements depreciation.ScheduleRepository
type memScheduleRepo struct{ *memStore }

func (r memScheduleRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*depreciation.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.schedules[id]
	if !ok || sc.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return &sc, nil
}

func (r memScheduleRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ depreciation.ScheduleFilter) ([]depreciation.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []depreciation.Schedule
	for _, sc := range r.schedules {
		if sc.TenantID == tenantID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (r memScheduleRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ScheduleFilter) (int64, error) {
	all, err := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(all)), err
}

func (r memScheduleRepo) FindActive(_ context.Context) ([]depreciation.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []depreciation.Schedule
	for _, sc := range r.schedules {
		if sc.IsActive {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (r memScheduleRepo) ExistsByName(_ context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sc := range r.schedules {
		if sc.TenantID == tenantID && sc.Name == name && (excludeID == nil || sc.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r memScheduleRepo) Save(_ context.Context, schedule *depreciation.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[schedule.ID] = *schedule
	return nil
}

func (r memScheduleRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.schedules[id]
	if !ok || sc.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.schedules, id)
	return nil
}

func (r memScheduleRepo) MarkExecuted(_ context.Context, tenantID, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.schedules[id]
	if !ok || sc.TenantID != tenantID {
		return shared.ErrNotFound
	}
	sc.MarkExecuted(at)
	r.schedules[id] = sc
	return nil
}

// memExecutionRepo implements depreciation.ExecutionRepository
type memExecutionRepo struct{ *memStore }

func (r memExecutionRepo) Create(_ context.Context, execution *depreciation.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions[execution.ID] = *execution
	return nil
}

func (r memExecutionRepo) Update(_ context.Context, execution *depreciation.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.executions[execution.ID]; !ok {
		return shared.ErrNotFound
	}
	r.executions[execution.ID] = *execution
	return nil
}

func (r memExecutionRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*depreciation.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[id]
	if !ok || e.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (r memExecutionRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ depreciation.ExecutionFilter) ([]depreciation.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []depreciation.Execution
	for _, e := range r.executions {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memExecutionRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ExecutionFilter) (int64, error) {
	all, err := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(all)), err
}

func (r memExecutionRepo) FindDetails(_ context.Context, executionID uuid.UUID) ([]depreciation.DetailView, error) {
	var out []depreciation.DetailView
	for _, d := range r.detailsFor(executionID) {
		out = append(out, depreciation.DetailView{AssetDepreciationDetail: d})
	}
	return out, nil
}

func (r memExecutionRepo) Summarize(_ context.Context, tenantID uuid.UUID) (depreciation.ExecutionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := depreciation.ExecutionSummary{TotalDepreciationAmount: decimal.Zero}
	for _, e := range r.executions {
		if e.TenantID != tenantID {
			continue
		}
		if e.Status != depreciation.ExecutionStatusCompleted && e.Status != depreciation.ExecutionStatusCompletedWithErrors {
			continue
		}
		summary.TotalExecutions++
		summary.TotalAssetsProcessed += int64(e.TotalAssetsProcessed)
		summary.TotalSuccessfulCalculations += int64(e.SuccessfulCalculations)
		summary.TotalDepreciationAmount = summary.TotalDepreciationAmount.Add(e.TotalDepreciationAmount)
	}
	return summary, nil
}

func (r memExecutionRepo) FindRunning(_ context.Context, tenantID uuid.UUID) ([]depreciation.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []depreciation.Execution
	for _, e := range r.executions {
		if e.TenantID == tenantID && e.Status == depreciation.ExecutionStatusRunning {
			out = append(out, e)
		}
	}
	return out, nil
}

// memPostingRepo implements depreciation.PostingRepository and LedgerRepository
type memPostingRepo struct{ *memStore }

func (r memPostingRepo) ExistsForPeriod(_ context.Context, assetID uuid.UUID, period depreciation.Period) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ledger[ledgerKey{assetID: assetID, period: period}]
	return ok, nil
}

func (r memPostingRepo) Post(ctx context.Context, entries []depreciation.LedgerEntry, asset *depreciation.Asset, detail depreciation.AssetDepreciationDetail) error {
	if r.postHook != nil {
		if err := r.postHook(ctx, asset.ID); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		if _, ok := r.ledger[ledgerKey{assetID: e.AssetID, period: e.Period()}]; ok {
			return depreciation.ErrPeriodAlreadyPosted
		}
	}
	stored, ok := r.assets[asset.ID]
	if !ok || stored.Version != asset.Version {
		return shared.ErrConcurrencyConflict
	}

	for _, e := range entries {
		r.ledger[ledgerKey{assetID: e.AssetID, period: e.Period()}] = e
	}
	updated := *asset
	updated.Version = stored.Version + 1
	r.assets[asset.ID] = updated
	r.details = append(r.details, detail)
	return nil
}

func (r memPostingRepo) RecordDetail(_ context.Context, detail depreciation.AssetDepreciationDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.details = append(r.details, detail)
	return nil
}

func (r memPostingRepo) FindByAsset(_ context.Context, _ uuid.UUID, assetID uuid.UUID) ([]depreciation.LedgerEntry, error) {
	return r.ledgerFor(assetID), nil
}

// memUsageRepo implements depreciation.UsageRepository
type memUsageRepo struct{ *memStore }

func (r memUsageRepo) Upsert(_ context.Context, reading *depreciation.UsageReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.usage {
		if u.AssetID == reading.AssetID && u.Year == reading.Year && u.Month == reading.Month {
			r.usage[i].Units = reading.Units
			return nil
		}
	}
	r.usage = append(r.usage, *reading)
	return nil
}

func (r memUsageRepo) FindForAsset(_ context.Context, tenantID, assetID uuid.UUID) ([]depreciation.UsageReading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []depreciation.UsageReading
	for _, u := range r.usage {
		if u.TenantID == tenantID && u.AssetID == assetID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUsageRepo) FindForAssets(ctx context.Context, tenantID uuid.UUID, assetIDs []uuid.UUID) (map[uuid.UUID][]depreciation.UsageReading, error) {
	out := make(map[uuid.UUID][]depreciation.UsageReading, len(assetIDs))
	for _, id := range assetIDs {
		readings, _ := r.FindForAsset(ctx, tenantID, id)
		if len(readings) > 0 {
			out[id] = readings
		}
	}
	return out, nil
}
