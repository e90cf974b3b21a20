package depreciation

import (
	"context"
	"testing"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func finishedExecution(tenantID uuid.UUID, failures int) *depreciation.Execution {
	e := depreciation.NewManualExecution(tenantID, uuid.New(), nil, jan2025)
	_ = e.Start()
	e.RecordSuccess(decimal.NewFromInt(100))
	for i := 0; i < failures; i++ {
		e.RecordFailure()
	}
	_ = e.Complete()
	e.ClearDomainEvents()
	return e
}

func TestHistoryService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	viewer := NewActor(tenantID, uuid.New(), []string{PermissionView})

	t.Run("applies typed filter", func(t *testing.T) {
		repo := new(MockExecutionRepository)
		svc := NewHistoryService(repo)
		from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

		repo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f depreciation.ExecutionFilter) bool {
			return f.Status != nil && *f.Status == depreciation.ExecutionStatusFailed &&
				f.DateFrom.Equal(from) &&
				f.DateTo.Equal(to.AddDate(0, 0, 1).Add(-time.Nanosecond)) &&
				f.Page == 1 && f.PageSize == depreciation.DefaultPageSize
		})).Return([]depreciation.Execution{*finishedExecution(tenantID, 0)}, nil)
		repo.On("CountForTenant", ctx, tenantID, mock.Anything).Return(int64(1), nil)

		resp, total, err := svc.List(ctx, viewer, ExecutionListFilter{
			Status:   "FAILED",
			DateFrom: &from,
			DateTo:   &to,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, resp, 1)
		assert.Equal(t, "COMPLETED", resp[0].Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		repo := new(MockExecutionRepository)
		svc := NewHistoryService(repo)

		_, _, err := svc.List(ctx, viewer, ExecutionListFilter{Status: "DONE"})

		assert.ErrorIs(t, err, depreciation.ErrInvalidExecutionStatus)
		repo.AssertNotCalled(t, "FindAllForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requires view permission", func(t *testing.T) {
		svc := NewHistoryService(new(MockExecutionRepository))
		nobody := NewActor(tenantID, uuid.New(), nil)

		_, _, err := svc.List(ctx, nobody, ExecutionListFilter{})

		assert.ErrorIs(t, err, shared.ErrPermissionDenied)
	})
}

func TestHistoryService_Get(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	viewer := NewActor(tenantID, uuid.New(), []string{PermissionView})

	t.Run("splits out failed assets", func(t *testing.T) {
		repo := new(MockExecutionRepository)
		svc := NewHistoryService(repo)
		execution := finishedExecution(tenantID, 1)

		asset := &depreciation.Asset{BaseEntity: shared.NewBaseEntity(), CurrentBookValue: decimal.NewFromInt(900)}
		failed := depreciation.NewFailedDetail(execution.ID, asset, depreciation.ErrMethodNotSet.Message)
		skipped := depreciation.NewSkippedDetail(execution.ID, asset, "Period 2025-01 already posted")
		views := []depreciation.DetailView{
			{AssetDepreciationDetail: failed, ItemCode: "FA-002", CategoryName: "Vehicles"},
			{AssetDepreciationDetail: skipped, ItemCode: "FA-003"},
		}

		repo.On("FindByIDForTenant", ctx, tenantID, execution.ID).Return(execution, nil)
		repo.On("FindDetails", ctx, execution.ID).Return(views, nil)

		resp, err := svc.Get(ctx, viewer, execution.ID)

		require.NoError(t, err)
		assert.Equal(t, execution.ID, resp.ID)
		assert.Equal(t, "COMPLETED_WITH_ERRORS", resp.Status)
		assert.Len(t, resp.Details, 2)
		require.Len(t, resp.FailedAssets, 1)
		assert.Equal(t, "FA-002", resp.FailedAssets[0].ItemCode)
		assert.Equal(t, "Vehicles", resp.FailedAssets[0].Category)
		assert.Equal(t, depreciation.ErrMethodNotSet.Message, *resp.FailedAssets[0].ErrorMessage)
	})

	t.Run("execution of another business unit", func(t *testing.T) {
		repo := new(MockExecutionRepository)
		svc := NewHistoryService(repo)
		id := uuid.New()
		repo.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Get(ctx, viewer, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		repo.AssertNotCalled(t, "FindDetails", mock.Anything, mock.Anything)
	})
}

func TestHistoryService_SummaryAndRunning(t *testing.T) {
	ctx := context.Background()
	f := newExecutorFixture(t, DefaultExecutorConfig())
	f.addAsset("FA-001", uuid.New(), "1200", 12, depreciation.MethodStraightLine)
	f.addAsset("FA-002", uuid.New(), "2400", 12, depreciation.MethodNone)
	schedule := f.addSchedule(t, nil)

	_, err := f.executor.RunSchedule(ctx, f.tenantID, schedule.ID, jan2025)
	require.NoError(t, err)
	_, err = f.executor.RunSchedule(ctx, f.tenantID, schedule.ID, jan2025.AddDate(0, 1, 0))
	require.NoError(t, err)

	svc := NewHistoryService(memExecutionRepo{f.store})
	viewer := NewActor(f.tenantID, uuid.New(), []string{PermissionView})

	summary, err := svc.Summary(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalExecutions)
	assert.Equal(t, int64(4), summary.TotalAssetsProcessed)
	assert.Equal(t, int64(2), summary.TotalSuccessfulCalculations)
	assert.True(t, summary.TotalDepreciationAmount.Equal(decimal.NewFromInt(200)))

	running, err := svc.Running(ctx, viewer)
	require.NoError(t, err)
	assert.Empty(t, running)

	other := NewActor(uuid.New(), uuid.New(), []string{PermissionView})
	summary, err = svc.Summary(ctx, other)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalExecutions)
}
