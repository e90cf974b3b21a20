package depreciation

import (
	"context"
	"testing"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionService_Project(t *testing.T) {
	ctx := context.Background()
	f := newExecutorFixture(t, DefaultExecutorConfig())
	asset := f.addAsset("FA-001", uuid.New(), "1200", 12, depreciation.MethodStraightLine)
	schedule := f.addSchedule(t, nil)

	for i := 0; i < 3; i++ {
		_, err := f.executor.RunSchedule(ctx, f.tenantID, schedule.ID, jan2025.AddDate(0, i, 0))
		require.NoError(t, err)
	}
	before := f.store.asset(asset.ID)

	svc := NewProjectionService(memAssetRepo{f.store}, memPostingRepo{f.store}, memUsageRepo{f.store})
	resp, err := svc.Project(ctx, f.tenantID, asset.ID, jan2025.AddDate(0, 3, 0))
	require.NoError(t, err)

	assert.Equal(t, "FA-001", resp.ItemCode)
	assert.Equal(t, "STRAIGHT_LINE", resp.Method)
	require.Len(t, resp.Rows, 12)

	completed := 0
	total := decimal.Zero
	for _, row := range resp.Rows {
		if row.IsCompleted {
			completed++
		}
		total = total.Add(row.DepreciationAmount)
	}
	assert.Equal(t, 3, completed)
	assert.True(t, total.Equal(decimal.NewFromInt(1200)), total.String())
	assert.True(t, resp.Rows[11].BookValue.IsZero())

	// projection never writes
	assert.Equal(t, before, f.store.asset(asset.ID))
	assert.Len(t, f.store.ledgerFor(asset.ID), 3)

	t.Run("unknown asset", func(t *testing.T) {
		_, err := svc.Project(ctx, f.tenantID, uuid.New(), jan2025)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("calculation failure surfaces", func(t *testing.T) {
		broken := f.addAsset("FA-002", uuid.New(), "1200", 12, depreciation.MethodNone)
		_, err := svc.Project(ctx, f.tenantID, broken.ID, jan2025)
		assert.ErrorIs(t, err, depreciation.ErrMethodNotSet)
	})
}
