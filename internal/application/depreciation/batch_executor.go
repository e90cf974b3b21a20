package depreciation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/erp/depreciation/internal/infrastructure/logger"
	"github.com/erp/depreciation/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ExecutorConfig holds batch executor settings
type ExecutorConfig struct {
	Workers           int
	MaxRunDuration    time.Duration
	LockTTL           time.Duration
	MaxCatchUpPeriods int
}

// DefaultExecutorConfig returns default executor settings
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Workers:           4,
		MaxRunDuration:    30 * time.Minute,
		LockTTL:           45 * time.Minute,
		MaxCatchUpPeriods: 12,
	}
}

// BatchExecutor runs depreciation over the eligible assets of a schedule or
// of a whole business unit. Each asset is posted in its own transaction.
type BatchExecutor struct {
	assetRepo     depreciation.AssetRepository
	scheduleRepo  depreciation.ScheduleRepository
	executionRepo depreciation.ExecutionRepository
	postingRepo   depreciation.PostingRepository
	usageRepo     depreciation.UsageRepository
	lock          depreciation.ExecutionLock
	events        shared.EventPublisher
	calc          depreciation.Calculator
	config        ExecutorConfig
	logger        *zap.Logger

	background sync.WaitGroup
}

// NewBatchExecutor creates a new BatchExecutor
func NewBatchExecutor(
	assetRepo depreciation.AssetRepository,
	scheduleRepo depreciation.ScheduleRepository,
	executionRepo depreciation.ExecutionRepository,
	postingRepo depreciation.PostingRepository,
	usageRepo depreciation.UsageRepository,
	lock depreciation.ExecutionLock,
	events shared.EventPublisher,
	config ExecutorConfig,
	logger *zap.Logger,
) *BatchExecutor {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.MaxCatchUpPeriods < 1 {
		config.MaxCatchUpPeriods = 1
	}
	if config.MaxRunDuration <= 0 {
		config.MaxRunDuration = DefaultExecutorConfig().MaxRunDuration
	}
	if config.LockTTL < config.MaxRunDuration {
		config.LockTTL = config.MaxRunDuration + 15*time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchExecutor{
		assetRepo:     assetRepo,
		scheduleRepo:  scheduleRepo,
		executionRepo: executionRepo,
		postingRepo:   postingRepo,
		usageRepo:     usageRepo,
		lock:          lock,
		events:        events,
		calc:          depreciation.NewCalculator(),
		config:        config,
		logger:        logger,
	}
}

// batchRun is one execution between lock acquisition and release
type batchRun struct {
	execution *depreciation.Execution
	criteria  depreciation.EligibilityCriteria
	lockKey   string
	lockToken string

	mu sync.Mutex
}

// assetOutcome is the result of processing one asset
type assetOutcome int

const (
	outcomeSuccess assetOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// RunSchedule runs a schedule synchronously. It is the entry point of the
// time-based trigger.
func (e *BatchExecutor) RunSchedule(ctx context.Context, tenantID, scheduleID uuid.UUID, runDate time.Time) (*depreciation.Execution, error) {
	schedule, err := e.scheduleRepo.FindByIDForTenant(ctx, tenantID, scheduleID)
	if err != nil {
		return nil, err
	}

	execution := depreciation.NewScheduledExecution(tenantID, scheduleID, runDate)
	run, err := e.begin(ctx, execution, depreciation.CriteriaForSchedule(schedule, runDate))
	if err != nil {
		return nil, err
	}

	e.execute(ctx, run)
	return execution, nil
}

// TriggerSchedule runs a schedule on demand. The run holds the same lock as
// the time-based trigger and continues in the background once the execution
// is RUNNING.
func (e *BatchExecutor) TriggerSchedule(ctx context.Context, actor Actor, scheduleID uuid.UUID, runDate time.Time) (*TriggerResponse, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, err
	}

	schedule, err := e.scheduleRepo.FindByIDForTenant(ctx, actor.TenantID, scheduleID)
	if err != nil {
		return nil, err
	}

	execution := depreciation.NewManualExecution(actor.TenantID, actor.UserID, &scheduleID, runDate)
	return e.startAsync(ctx, execution, depreciation.CriteriaForSchedule(schedule, runDate))
}

// TriggerManual starts an ad-hoc run over every category of the actor's
// business unit and returns once the execution is RUNNING
func (e *BatchExecutor) TriggerManual(ctx context.Context, actor Actor, runDate time.Time) (*TriggerResponse, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, err
	}

	execution := depreciation.NewManualExecution(actor.TenantID, actor.UserID, nil, runDate)
	return e.startAsync(ctx, execution, depreciation.ManualCriteria(actor.TenantID, runDate))
}

// Wait blocks until background runs have finished or ctx is done
func (e *BatchExecutor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *BatchExecutor) startAsync(ctx context.Context, execution *depreciation.Execution, criteria depreciation.EligibilityCriteria) (*TriggerResponse, error) {
	run, err := e.begin(ctx, execution, criteria)
	if err != nil {
		return nil, err
	}

	resp := &TriggerResponse{
		ExecutionID: execution.ID,
		ScheduleID:  execution.ScheduleID,
		Status:      execution.Status.String(),
		RunDate:     execution.RunDate,
	}

	e.background.Add(1)
	go func() {
		defer e.background.Done()
		e.execute(context.WithoutCancel(ctx), run)
	}()

	return resp, nil
}

// begin takes the execution lock and persists the execution as RUNNING.
// A held lock returns ErrScheduleBusy without writing anything.
func (e *BatchExecutor) begin(ctx context.Context, execution *depreciation.Execution, criteria depreciation.EligibilityCriteria) (*batchRun, error) {
	key := execution.LockKey()
	token, acquired, err := e.lock.Acquire(ctx, key, e.config.LockTTL)
	if err != nil {
		e.logger.Error("failed to acquire depreciation lock",
			zap.String("lock_key", key),
			zap.Error(err),
		)
		e.recordLockFault(ctx, execution, err)
		return nil, fmt.Errorf("%w: acquire execution lock: %v", depreciation.ErrPersistenceFault, err)
	}
	if !acquired {
		e.logger.Info("depreciation run rejected, lock held",
			zap.String("tenant_id", execution.TenantID.String()),
			zap.String("lock_key", key),
		)
		return nil, depreciation.ErrScheduleBusy
	}

	run := &batchRun{
		execution: execution,
		criteria:  criteria,
		lockKey:   key,
		lockToken: token,
	}

	if err := execution.Start(); err != nil {
		e.release(ctx, run)
		return nil, err
	}
	if err := e.executionRepo.Create(ctx, execution); err != nil {
		e.release(ctx, run)
		return nil, fmt.Errorf("%w: create execution: %v", depreciation.ErrPersistenceFault, err)
	}
	e.publish(ctx, execution)

	return run, nil
}

// recordLockFault persists a FAILED execution for a lock backend outage, best effort
func (e *BatchExecutor) recordLockFault(ctx context.Context, execution *depreciation.Execution, cause error) {
	_ = execution.Fail(fmt.Sprintf("execution lock unavailable: %v", cause))
	if err := e.executionRepo.Create(ctx, execution); err != nil {
		e.logger.Error("failed to record lock fault",
			zap.String("execution_id", execution.ID.String()),
			zap.Error(err),
		)
		return
	}
	e.publish(ctx, execution)
}

// execute processes a RUNNING execution to a terminal state and releases the lock
func (e *BatchExecutor) execute(ctx context.Context, run *batchRun) {
	execution := run.execution
	ctx = logger.WithTenantID(ctx, execution.TenantID.String())
	ctx = logger.WithExecutionID(ctx, execution.ID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "depreciation", "run",
		telemetry.WithAttribute(telemetry.SpanAttrExecutionID, execution.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, execution.TenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrTriggerType, string(execution.TriggerType)),
		telemetry.WithAttribute(telemetry.SpanAttrExecutionDate, execution.RunDate.Format(time.DateOnly)),
	)
	defer span.End()
	defer e.release(ctx, run)

	log := e.logger.With(
		zap.String("execution_id", execution.ID.String()),
		zap.String("tenant_id", execution.TenantID.String()),
		zap.String("trigger_type", string(execution.TriggerType)),
		zap.Time("run_date", execution.RunDate),
	)
	if execution.ScheduleID != nil {
		log = log.With(zap.String("schedule_id", execution.ScheduleID.String()))
		telemetry.SetAttribute(span, telemetry.SpanAttrScheduleID, execution.ScheduleID.String())
	}
	log.Info("depreciation run started")

	assets, err := e.assetRepo.FindEligible(ctx, run.criteria)
	if err != nil {
		telemetry.RecordError(span, err)
		e.fail(ctx, run, log, fmt.Sprintf("eligibility query failed: %v", err))
		return
	}

	usage, err := e.loadUsage(ctx, execution.TenantID, assets)
	if err != nil {
		telemetry.RecordError(span, err)
		e.fail(ctx, run, log, fmt.Sprintf("usage readings unavailable: %v", err))
		return
	}

	if fault := e.process(ctx, run, assets, usage, log); fault != nil {
		telemetry.RecordError(span, fault)
		e.fail(ctx, run, log, fault.Error())
		return
	}

	e.complete(ctx, run, log)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrExecutionState, execution.Status.String(),
		telemetry.SpanAttrAssetCount, execution.TotalAssetsProcessed,
		"assets_failed", execution.FailedCalculations,
	)
	telemetry.SetOK(span)
}

// process fans the assets out to the worker pool. It returns the first
// persistence fault; every asset not reached before the run deadline is
// recorded as a Timeout failure.
func (e *BatchExecutor) process(
	ctx context.Context,
	run *batchRun,
	assets []depreciation.Asset,
	usage map[uuid.UUID][]depreciation.UsageReading,
	log *zap.Logger,
) error {
	runCtx, cancel := context.WithTimeout(ctx, e.config.MaxRunDuration)
	defer cancel()

	var (
		faultOnce sync.Once
		fault     error
		done      = make([]bool, len(assets))
		jobs      = make(chan int)
		wg        sync.WaitGroup
	)

	for w := 0; w < e.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				asset := assets[i]
				var lookup depreciation.UsageLookup
				if readings, ok := usage[asset.ID]; ok {
					lookup = depreciation.UsageIndex(readings)
				}

				outcome, amount, err := e.processAsset(runCtx, run, &asset, lookup, log)
				if err != nil {
					if runCtx.Err() != nil {
						continue
					}
					faultOnce.Do(func() {
						fault = fmt.Errorf("%w: asset %s: %v", depreciation.ErrPersistenceFault, asset.ID, err)
						cancel()
					})
					continue
				}

				run.record(outcome, amount)
				done[i] = true
			}
		}()
	}

dispatch:
	for i := range assets {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if fault != nil {
		return fault
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: run cancelled: %v", depreciation.ErrPersistenceFault, ctx.Err())
	}

	if runCtx.Err() != nil {
		writeCtx := context.WithoutCancel(ctx)
		timedOut := 0
		for i := range assets {
			if done[i] {
				continue
			}
			detail := depreciation.NewFailedDetail(run.execution.ID, &assets[i], depreciation.ErrExecutionTimeout.Message)
			if err := e.postingRepo.RecordDetail(writeCtx, detail); err != nil {
				return fmt.Errorf("%w: record timeout detail: %v", depreciation.ErrPersistenceFault, err)
			}
			run.record(outcomeFailed, detail.DepreciationAmount)
			timedOut++
		}
		if timedOut > 0 {
			log.Warn("depreciation run deadline exceeded",
				zap.Duration("max_run_duration", e.config.MaxRunDuration),
				zap.Int("timed_out_assets", timedOut),
			)
		}
	}
	return nil
}

// processAsset posts every due period of one asset. A returned error is a
// persistence fault; calculation failures and duplicate periods are outcomes.
func (e *BatchExecutor) processAsset(
	ctx context.Context,
	run *batchRun,
	asset *depreciation.Asset,
	usage depreciation.UsageLookup,
	log *zap.Logger,
) (assetOutcome, decimal.Decimal, error) {
	execution := run.execution
	runDate := execution.RunDate

	first := asset.DuePeriod(runDate)
	posted, err := e.postingRepo.ExistsForPeriod(ctx, asset.ID, first)
	if err != nil {
		return 0, decimal.Zero, err
	}
	if posted {
		return e.skip(ctx, execution, asset, fmt.Sprintf("Period %s already posted", first))
	}

	if asset.UsefulLifeReviewRequired {
		log.Warn("asset useful life requires review",
			zap.String("asset_id", asset.ID.String()),
			zap.String("item_code", asset.ItemCode),
			zap.Int("useful_life_months", asset.UsefulLifeMonths),
		)
	}

	plan, err := depreciation.PlanPostings(e.calc, *asset, runDate, e.config.MaxCatchUpPeriods, usage)
	if err != nil {
		log.Warn("depreciation calculation failed",
			zap.String("asset_id", asset.ID.String()),
			zap.String("item_code", asset.ItemCode),
			zap.Error(err),
		)
		telemetry.AddEvent(trace.SpanFromContext(ctx), "calculation_failed",
			telemetry.SpanAttrAssetID, asset.ID.String(),
			"error", err.Error(),
		)
		detail := depreciation.NewFailedDetail(execution.ID, asset, err.Error())
		if err := e.postingRepo.RecordDetail(ctx, detail); err != nil {
			return 0, decimal.Zero, err
		}
		return outcomeFailed, decimal.Zero, nil
	}

	if len(plan.Postings) == 0 {
		if !plan.Asset.IsFullyDepreciated {
			return e.skip(ctx, execution, asset, "No period due")
		}
		// Already at salvage value; the posting only sets the fully depreciated flag.
		detail := depreciation.NewSkippedDetail(execution.ID, asset, "Asset is already at salvage value")
		return e.post(ctx, execution, asset, nil, &plan.Asset, detail, outcomeSkipped)
	}

	entries := depreciation.NewLedgerEntries(execution.TenantID, &execution.ID, asset, plan)
	detail := depreciation.NewSuccessDetail(execution.ID, asset.ID, plan)
	return e.post(ctx, execution, asset, entries, &plan.Asset, detail, outcomeSuccess)
}

func (e *BatchExecutor) post(
	ctx context.Context,
	execution *depreciation.Execution,
	original *depreciation.Asset,
	entries []depreciation.LedgerEntry,
	updated *depreciation.Asset,
	detail depreciation.AssetDepreciationDetail,
	outcome assetOutcome,
) (assetOutcome, decimal.Decimal, error) {
	err := e.postingRepo.Post(ctx, entries, updated, detail)
	switch {
	case err == nil:
		return outcome, detail.DepreciationAmount, nil
	case errors.Is(err, depreciation.ErrPeriodAlreadyPosted):
		return e.skip(ctx, execution, original, depreciation.ErrPeriodAlreadyPosted.Message)
	case errors.Is(err, shared.ErrConcurrencyConflict):
		failed := depreciation.NewFailedDetail(execution.ID, original, shared.ErrConcurrencyConflict.Message)
		if err := e.postingRepo.RecordDetail(ctx, failed); err != nil {
			return 0, decimal.Zero, err
		}
		return outcomeFailed, decimal.Zero, nil
	default:
		return 0, decimal.Zero, err
	}
}

func (e *BatchExecutor) skip(ctx context.Context, execution *depreciation.Execution, asset *depreciation.Asset, reason string) (assetOutcome, decimal.Decimal, error) {
	detail := depreciation.NewSkippedDetail(execution.ID, asset, reason)
	if err := e.postingRepo.RecordDetail(ctx, detail); err != nil {
		return 0, decimal.Zero, err
	}
	return outcomeSkipped, decimal.Zero, nil
}

// loadUsage reads usage readings for the units of production assets in the run
func (e *BatchExecutor) loadUsage(ctx context.Context, tenantID uuid.UUID, assets []depreciation.Asset) (map[uuid.UUID][]depreciation.UsageReading, error) {
	if e.usageRepo == nil {
		return nil, nil
	}
	var ids []uuid.UUID
	for i := range assets {
		if assets[i].Method == depreciation.MethodUnitsOfProduction {
			ids = append(ids, assets[i].ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return e.usageRepo.FindForAssets(ctx, tenantID, ids)
}

func (e *BatchExecutor) complete(ctx context.Context, run *batchRun, log *zap.Logger) {
	execution := run.execution
	writeCtx := context.WithoutCancel(ctx)

	if err := execution.Complete(); err != nil {
		log.Error("failed to complete depreciation run", zap.Error(err))
		return
	}
	if err := e.executionRepo.Update(writeCtx, execution); err != nil {
		log.Error("failed to store depreciation run result", zap.Error(err))
	}

	if execution.ScheduleID != nil && execution.CompletedAt != nil {
		if err := e.scheduleRepo.MarkExecuted(writeCtx, execution.TenantID, *execution.ScheduleID, *execution.CompletedAt); err != nil {
			log.Warn("failed to mark schedule executed", zap.Error(err))
		}
	}
	e.publish(writeCtx, execution)

	log.Info("depreciation run finished",
		zap.String("status", execution.Status.String()),
		zap.Int("assets_processed", execution.TotalAssetsProcessed),
		zap.Int("assets_succeeded", execution.SuccessfulCalculations),
		zap.Int("assets_failed", execution.FailedCalculations),
		zap.Int("assets_skipped", execution.SkippedAssets),
		zap.String("total_amount", execution.TotalDepreciationAmount.StringFixed(2)),
		zap.Int64("duration_ms", execution.ExecutionDurationMs),
	)
}

func (e *BatchExecutor) fail(ctx context.Context, run *batchRun, log *zap.Logger, reason string) {
	execution := run.execution
	writeCtx := context.WithoutCancel(ctx)

	if err := execution.Fail(reason); err != nil {
		log.Error("failed to mark depreciation run failed", zap.Error(err))
		return
	}
	if err := e.executionRepo.Update(writeCtx, execution); err != nil {
		log.Error("failed to store depreciation run failure", zap.Error(err))
	}
	e.publish(writeCtx, execution)

	log.Error("depreciation run failed",
		zap.String("reason", reason),
		zap.Int("assets_processed", execution.TotalAssetsProcessed),
		zap.Int64("duration_ms", execution.ExecutionDurationMs),
	)
}

func (e *BatchExecutor) release(ctx context.Context, run *batchRun) {
	if err := e.lock.Release(context.WithoutCancel(ctx), run.lockKey, run.lockToken); err != nil {
		e.logger.Warn("failed to release depreciation lock",
			zap.String("lock_key", run.lockKey),
			zap.Error(err),
		)
	}
}

func (e *BatchExecutor) publish(ctx context.Context, execution *depreciation.Execution) {
	events := execution.GetDomainEvents()
	execution.ClearDomainEvents()
	if e.events == nil || len(events) == 0 {
		return
	}
	if err := e.events.Publish(ctx, events...); err != nil {
		e.logger.Warn("failed to publish execution events",
			zap.String("execution_id", execution.ID.String()),
			zap.Error(err),
		)
	}
}

func (r *batchRun) record(outcome assetOutcome, amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch outcome {
	case outcomeSuccess:
		r.execution.RecordSuccess(amount)
	case outcomeSkipped:
		r.execution.RecordSkip()
	case outcomeFailed:
		r.execution.RecordFailure()
	}
}
