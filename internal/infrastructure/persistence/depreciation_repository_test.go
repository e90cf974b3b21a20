package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/erp/depreciation/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDepreciationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.AssetCategoryModel{},
		&models.AssetModel{},
		&models.ScheduleModel{},
		&models.ExecutionModel{},
		&models.AssetDepreciationDetailModel{},
		&models.AssetDepreciationModel{},
		&models.AssetUsageReadingModel{},
	)
	require.NoError(t, err)

	return db
}

var testRunDate = time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

func createTestCategory(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) uuid.UUID {
	category := &models.AssetCategoryModel{ID: uuid.New(), TenantID: tenantID, Name: name}
	require.NoError(t, db.Create(category).Error)
	return category.ID
}

func createTestAsset(t *testing.T, db *gorm.DB, tenantID uuid.UUID, itemCode string, categoryID uuid.UUID, mutate func(a *depreciation.Asset)) *depreciation.Asset {
	price := decimal.NewFromInt(120000)
	next := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	a := &depreciation.Asset{
		BaseEntity:           shared.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:             tenantID,
		ItemCode:             itemCode,
		Description:          "Asset " + itemCode,
		CategoryID:           categoryID,
		IsActive:             true,
		PurchasePrice:        &price,
		SalvageValue:         decimal.Zero,
		CurrentBookValue:     price,
		UsefulLifeMonths:     24,
		Method:               depreciation.MethodStraightLine,
		NextDepreciationDate: &next,
		Version:              1,
	}
	if mutate != nil {
		mutate(a)
	}
	require.NoError(t, db.Create(models.AssetModelFromDomain(a)).Error)
	return a
}

func createTestSchedule(t *testing.T, repo *GormDepreciationScheduleRepository, tenantID uuid.UUID, name string) *depreciation.Schedule {
	s, err := depreciation.NewSchedule(tenantID, uuid.New(), depreciation.ScheduleSpec{
		Name:         name,
		ScheduleType: depreciation.ScheduleTypeMonthly,
		ExecutionDay: 1,
		IsActive:     true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), s))
	return s
}

func planFor(t *testing.T, asset *depreciation.Asset) depreciation.PostingPlan {
	plan, err := depreciation.PlanPostings(depreciation.NewCalculator(), *asset, testRunDate, 12, nil)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Postings)
	return plan
}

// ==================== Asset repository ====================

func TestGormDepreciationAssetRepository_FindEligible(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationAssetRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	vehicles := createTestCategory(t, db, tenantID, "Vehicles")
	furniture := createTestCategory(t, db, tenantID, "Furniture")

	truck := createTestAsset(t, db, tenantID, "A-001", vehicles, nil)
	desk := createTestAsset(t, db, tenantID, "A-002", furniture, nil)
	uncategorized := createTestAsset(t, db, tenantID, "A-003", uuid.Nil, nil)
	// without a method the asset stays eligible and the run records its failure
	createTestAsset(t, db, tenantID, "A-004", vehicles, func(a *depreciation.Asset) {
		a.Method = depreciation.MethodNone
	})
	createTestAsset(t, db, tenantID, "A-005", vehicles, func(a *depreciation.Asset) {
		a.IsFullyDepreciated = true
	})
	createTestAsset(t, db, tenantID, "A-006", vehicles, func(a *depreciation.Asset) {
		next := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		a.NextDepreciationDate = &next
	})
	createTestAsset(t, db, tenantID, "A-007", vehicles, func(a *depreciation.Asset) {
		a.IsActive = false
	})
	createTestAsset(t, db, uuid.New(), "B-001", uuid.Nil, nil)

	t.Run("returns due assets of the tenant only", func(t *testing.T) {
		assets, err := repo.FindEligible(ctx, depreciation.ManualCriteria(tenantID, testRunDate))
		require.NoError(t, err)

		codes := make([]string, len(assets))
		for i, a := range assets {
			codes[i] = a.ItemCode
		}
		assert.Equal(t, []string{"A-001", "A-002", "A-003", "A-004"}, codes)
	})

	t.Run("joins the category name", func(t *testing.T) {
		assets, err := repo.FindEligible(ctx, depreciation.ManualCriteria(tenantID, testRunDate))
		require.NoError(t, err)
		require.Len(t, assets, 4)
		assert.Equal(t, "Vehicles", assets[0].CategoryName)
		assert.Equal(t, truck.ID, assets[0].ID)
		assert.Equal(t, "", assets[2].CategoryName)
	})

	t.Run("include categories", func(t *testing.T) {
		assets, err := repo.FindEligible(ctx, depreciation.EligibilityCriteria{
			TenantID:          tenantID,
			RunDate:           testRunDate,
			IncludeCategories: []uuid.UUID{furniture},
		})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, desk.ID, assets[0].ID)
	})

	t.Run("exclude categories keeps uncategorized assets", func(t *testing.T) {
		assets, err := repo.FindEligible(ctx, depreciation.EligibilityCriteria{
			TenantID:          tenantID,
			RunDate:           testRunDate,
			ExcludeCategories: []uuid.UUID{vehicles},
		})
		require.NoError(t, err)
		require.Len(t, assets, 2)
		assert.Equal(t, desk.ID, assets[0].ID)
		assert.Equal(t, uncategorized.ID, assets[1].ID)
	})

	t.Run("count due matches", func(t *testing.T) {
		count, err := repo.CountDue(ctx, tenantID, testRunDate)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)

		count, err = repo.CountDue(ctx, tenantID, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})
}

func TestGormDepreciationAssetRepository_FindByIDForTenant(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationAssetRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	asset := createTestAsset(t, db, tenantID, "A-001", uuid.Nil, func(a *depreciation.Asset) {
		years := 2
		a.UsefulLifeYears = &years
		a.UsefulLifeMonths = 6
	})

	t.Run("normalizes useful life on read", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, 30, found.UsefulLifeMonths)
		assert.Nil(t, found.UsefulLifeYears)
		assert.True(t, found.PurchasePrice.Equal(decimal.NewFromInt(120000)))
	})

	t.Run("other tenant gets not found", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), asset.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// ==================== Schedule repository ====================

func TestGormDepreciationScheduleRepository_SaveAndFind(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationScheduleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	excluded := uuid.New()
	s, err := depreciation.NewSchedule(tenantID, uuid.New(), depreciation.ScheduleSpec{
		Name:              "Monthly close",
		ScheduleType:      depreciation.ScheduleTypeQuarterly,
		ExecutionDay:      31,
		ExcludeCategories: []uuid.UUID{excluded},
		IsActive:          true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	t.Run("round trips categories", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "Monthly close", found.Name)
		assert.Equal(t, depreciation.ScheduleTypeQuarterly, found.ScheduleType)
		assert.Equal(t, 31, found.ExecutionDay)
		assert.Equal(t, []uuid.UUID{excluded}, found.ExcludeCategories)
		assert.Empty(t, found.IncludeCategories)
	})

	t.Run("cross tenant is not found", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), s.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exists by name", func(t *testing.T) {
		exists, err := repo.ExistsByName(ctx, tenantID, " Monthly close ", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByName(ctx, tenantID, "Monthly close", &s.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByName(ctx, uuid.New(), "Monthly close", nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("update persists", func(t *testing.T) {
		require.NoError(t, s.Update(depreciation.ScheduleSpec{
			Name:         "Quarter end",
			ScheduleType: depreciation.ScheduleTypeQuarterly,
			ExecutionDay: 28,
			IsActive:     false,
		}))
		require.NoError(t, repo.Save(ctx, s))

		found, err := repo.FindByIDForTenant(ctx, tenantID, s.ID)
		require.NoError(t, err)
		assert.Equal(t, "Quarter end", found.Name)
		assert.False(t, found.IsActive)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("mark executed", func(t *testing.T) {
		at := time.Date(2025, time.April, 28, 0, 5, 0, 0, time.UTC)
		require.NoError(t, repo.MarkExecuted(ctx, tenantID, s.ID, at))

		found, err := repo.FindByIDForTenant(ctx, tenantID, s.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LastExecutedAt)
		assert.True(t, at.Equal(*found.LastExecutedAt))
	})
}

func TestGormDepreciationScheduleRepository_SaveInactive(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationScheduleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	s, err := depreciation.NewSchedule(tenantID, uuid.New(), depreciation.ScheduleSpec{
		Name:         "Paused",
		ScheduleType: depreciation.ScheduleTypeMonthly,
		ExecutionDay: 1,
		IsActive:     false,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindByIDForTenant(ctx, tenantID, s.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGormDepreciationScheduleRepository_SaveKeepsLastExecutedAt(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationScheduleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	s := createTestSchedule(t, repo, tenantID, "Month end")
	stale, err := repo.FindByIDForTenant(ctx, tenantID, s.ID)
	require.NoError(t, err)
	require.Nil(t, stale.LastExecutedAt)

	at := time.Date(2025, time.February, 1, 0, 5, 0, 0, time.UTC)
	require.NoError(t, repo.MarkExecuted(ctx, tenantID, s.ID, at))

	// A toggle loaded before the run finished saves its stale copy
	stale.Toggle()
	require.NoError(t, repo.Save(ctx, stale))

	found, err := repo.FindByIDForTenant(ctx, tenantID, s.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
	require.NotNil(t, found.LastExecutedAt)
	assert.True(t, at.Equal(*found.LastExecutedAt))
}

func TestGormDepreciationScheduleRepository_List(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationScheduleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	createTestSchedule(t, repo, tenantID, "Vehicles monthly")
	createTestSchedule(t, repo, tenantID, "Buildings monthly")
	paused := createTestSchedule(t, repo, tenantID, "Furniture yearly")
	paused.Toggle()
	require.NoError(t, repo.Save(ctx, paused))
	createTestSchedule(t, repo, uuid.New(), "Other tenant")

	t.Run("lists by name", func(t *testing.T) {
		schedules, err := repo.FindAllForTenant(ctx, tenantID, depreciation.ScheduleFilter{})
		require.NoError(t, err)
		require.Len(t, schedules, 3)
		assert.Equal(t, "Buildings monthly", schedules[0].Name)
	})

	t.Run("filters by active and search", func(t *testing.T) {
		active := true
		filter := depreciation.ScheduleFilter{IsActive: &active, Search: "MONTHLY"}
		schedules, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, schedules, 2)

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("paginates", func(t *testing.T) {
		schedules, err := repo.FindAllForTenant(ctx, tenantID, depreciation.ScheduleFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, schedules, 1)
		assert.Equal(t, "Vehicles monthly", schedules[0].Name)
	})

	t.Run("find active spans tenants", func(t *testing.T) {
		schedules, err := repo.FindActive(ctx)
		require.NoError(t, err)
		assert.Len(t, schedules, 3)
	})
}

func TestGormDepreciationScheduleRepository_DeleteForTenant(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationScheduleRepository(db)
	execRepo := NewGormDepreciationExecutionRepository(db)
	postingRepo := NewGormDepreciationPostingRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	s := createTestSchedule(t, repo, tenantID, "To delete")
	keep := createTestSchedule(t, repo, tenantID, "To keep")
	asset := createTestAsset(t, db, tenantID, "A-001", uuid.Nil, nil)

	exec := depreciation.NewScheduledExecution(tenantID, s.ID, testRunDate)
	require.NoError(t, exec.Start())
	require.NoError(t, execRepo.Create(ctx, exec))
	require.NoError(t, postingRepo.RecordDetail(ctx, depreciation.NewFailedDetail(exec.ID, asset, "boom")))

	kept := depreciation.NewScheduledExecution(tenantID, keep.ID, testRunDate)
	require.NoError(t, kept.Start())
	require.NoError(t, execRepo.Create(ctx, kept))

	t.Run("other tenant cannot delete", func(t *testing.T) {
		err := repo.DeleteForTenant(ctx, uuid.New(), s.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("cascades executions and details", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantID, s.ID))

		_, err := repo.FindByIDForTenant(ctx, tenantID, s.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = execRepo.FindByIDForTenant(ctx, tenantID, exec.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var details int64
		require.NoError(t, db.Model(&models.AssetDepreciationDetailModel{}).Count(&details).Error)
		assert.Equal(t, int64(0), details)

		_, err = execRepo.FindByIDForTenant(ctx, tenantID, kept.ID)
		assert.NoError(t, err)
	})

	t.Run("deleting again is not found", func(t *testing.T) {
		err := repo.DeleteForTenant(ctx, tenantID, s.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// ==================== Execution repository ====================

func TestGormDepreciationExecutionRepository_History(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationExecutionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	scheduleID := uuid.New()

	completed := depreciation.NewScheduledExecution(tenantID, scheduleID, testRunDate)
	require.NoError(t, completed.Start())
	require.NoError(t, repo.Create(ctx, completed))
	completed.RecordSuccess(decimal.NewFromInt(5000))
	completed.RecordSuccess(decimal.NewFromFloat(2500.50))
	require.NoError(t, completed.Complete())
	require.NoError(t, repo.Update(ctx, completed))

	partial := depreciation.NewManualExecution(tenantID, uuid.New(), nil, testRunDate)
	require.NoError(t, partial.Start())
	require.NoError(t, repo.Create(ctx, partial))
	partial.RecordSuccess(decimal.NewFromInt(100))
	partial.RecordFailure()
	require.NoError(t, partial.Complete())
	require.NoError(t, repo.Update(ctx, partial))

	failed := depreciation.NewManualExecution(tenantID, uuid.New(), nil, testRunDate)
	require.NoError(t, failed.Start())
	require.NoError(t, repo.Create(ctx, failed))
	failed.RecordSuccess(decimal.NewFromInt(999))
	require.NoError(t, failed.Fail("persistence fault"))
	require.NoError(t, repo.Update(ctx, failed))

	running := depreciation.NewManualExecution(tenantID, uuid.New(), nil, testRunDate)
	require.NoError(t, running.Start())
	require.NoError(t, repo.Create(ctx, running))

	t.Run("update stores counters", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, partial.ID)
		require.NoError(t, err)
		assert.Equal(t, depreciation.ExecutionStatusCompletedWithErrors, found.Status)
		assert.Equal(t, 2, found.TotalAssetsProcessed)
		assert.Equal(t, 1, found.SuccessfulCalculations)
		assert.Equal(t, 1, found.FailedCalculations)
		assert.Equal(t, "1 of 2 assets failed", found.ErrorMessage)
		assert.NotNil(t, found.CompletedAt)
	})

	t.Run("update of unknown execution is not found", func(t *testing.T) {
		ghost := depreciation.NewManualExecution(tenantID, uuid.New(), nil, testRunDate)
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := depreciation.ExecutionStatusFailed
		rows, err := repo.FindAllForTenant(ctx, tenantID, depreciation.ExecutionFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, failed.ID, rows[0].ID)
	})

	t.Run("filters by schedule", func(t *testing.T) {
		filter := depreciation.ExecutionFilter{ScheduleID: &scheduleID}
		rows, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, completed.ID, rows[0].ID)

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("filters by date range", func(t *testing.T) {
		past := time.Now().Add(-48 * time.Hour)
		yesterday := time.Now().Add(-24 * time.Hour)
		rows, err := repo.FindAllForTenant(ctx, tenantID, depreciation.ExecutionFilter{DateFrom: &past, DateTo: &yesterday})
		require.NoError(t, err)
		assert.Empty(t, rows)

		rows, err = repo.FindAllForTenant(ctx, tenantID, depreciation.ExecutionFilter{DateFrom: &past})
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		rows, err := repo.FindAllForTenant(ctx, uuid.New(), depreciation.ExecutionFilter{})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("summary counts finished runs only", func(t *testing.T) {
		summary, err := repo.Summarize(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), summary.TotalExecutions)
		assert.Equal(t, int64(4), summary.TotalAssetsProcessed)
		assert.Equal(t, int64(3), summary.TotalSuccessfulCalculations)
		assert.True(t, summary.TotalDepreciationAmount.Equal(decimal.RequireFromString("7600.50")))
	})

	t.Run("summary of empty tenant is zero", func(t *testing.T) {
		summary, err := repo.Summarize(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(0), summary.TotalExecutions)
		assert.True(t, summary.TotalDepreciationAmount.IsZero())
	})

	t.Run("find running", func(t *testing.T) {
		rows, err := repo.FindRunning(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, running.ID, rows[0].ID)
	})
}

func TestGormDepreciationExecutionRepository_FindDetails(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationExecutionRepository(db)
	postingRepo := NewGormDepreciationPostingRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	category := createTestCategory(t, db, tenantID, "Machinery")

	good := createTestAsset(t, db, tenantID, "M-001", category, nil)
	bad := createTestAsset(t, db, tenantID, "M-002", category, func(a *depreciation.Asset) {
		a.Method = depreciation.MethodNone
	})

	exec := depreciation.NewManualExecution(tenantID, uuid.New(), nil, testRunDate)
	require.NoError(t, exec.Start())
	require.NoError(t, repo.Create(ctx, exec))

	plan := planFor(t, good)
	require.NoError(t, postingRepo.Post(ctx,
		depreciation.NewLedgerEntries(tenantID, &exec.ID, good, plan),
		&plan.Asset,
		depreciation.NewSuccessDetail(exec.ID, good.ID, plan)))
	require.NoError(t, postingRepo.RecordDetail(ctx,
		depreciation.NewFailedDetail(exec.ID, bad, depreciation.ErrMethodNotSet.Error())))

	views, err := repo.FindDetails(ctx, exec.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, depreciation.DetailStatusFailed, views[0].Status)
	assert.Equal(t, "M-002", views[0].ItemCode)
	require.NotNil(t, views[0].ErrorMessage)

	assert.Equal(t, depreciation.DetailStatusSuccess, views[1].Status)
	assert.Equal(t, "M-001", views[1].ItemCode)
	assert.Equal(t, "Machinery", views[1].CategoryName)
	assert.Equal(t, "Asset M-001", views[1].Description)
	assert.True(t, views[1].DepreciationAmount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, views[1].BookValueAfter.Equal(decimal.NewFromInt(115000)))
}

// ==================== Posting repository ====================

func TestGormDepreciationPostingRepository_Post(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationPostingRepository(db)
	assets := NewGormDepreciationAssetRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	execID := uuid.New()

	asset := createTestAsset(t, db, tenantID, "A-001", uuid.Nil, nil)
	plan := planFor(t, asset)

	t.Run("writes ledger asset and detail together", func(t *testing.T) {
		err := repo.Post(ctx,
			depreciation.NewLedgerEntries(tenantID, &execID, asset, plan),
			&plan.Asset,
			depreciation.NewSuccessDetail(execID, asset.ID, plan))
		require.NoError(t, err)

		updated, err := assets.FindByIDForTenant(ctx, tenantID, asset.ID)
		require.NoError(t, err)
		assert.True(t, updated.CurrentBookValue.Equal(decimal.NewFromInt(115000)))
		assert.True(t, updated.AccumulatedDepreciation.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, 1, updated.DepreciatedPeriods)
		assert.Equal(t, 2, updated.Version)
		require.NotNil(t, updated.NextDepreciationDate)
		assert.Equal(t, time.February, updated.NextDepreciationDate.Month())

		posted, err := repo.ExistsForPeriod(ctx, asset.ID, depreciation.Period{Year: 2025, Month: time.January})
		require.NoError(t, err)
		assert.True(t, posted)

		entries, err := repo.FindByAsset(ctx, tenantID, asset.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].BookValueEnd.Equal(decimal.NewFromInt(115000)))
	})

	t.Run("second post of the same period is rejected and rolled back", func(t *testing.T) {
		// Build a plan from a stale copy so the version check alone would pass
		stale := *asset
		stale.Version = 2
		stalePlan := planFor(t, &stale)

		err := repo.Post(ctx,
			depreciation.NewLedgerEntries(tenantID, &execID, &stale, stalePlan),
			&stalePlan.Asset,
			depreciation.NewSuccessDetail(execID, asset.ID, stalePlan))
		assert.ErrorIs(t, err, depreciation.ErrPeriodAlreadyPosted)

		updated, err := assets.FindByIDForTenant(ctx, tenantID, asset.ID)
		require.NoError(t, err)
		assert.True(t, updated.CurrentBookValue.Equal(decimal.NewFromInt(115000)))
		assert.Equal(t, 2, updated.Version)

		var details int64
		require.NoError(t, db.Model(&models.AssetDepreciationDetailModel{}).Count(&details).Error)
		assert.Equal(t, int64(1), details)
	})
}

func TestGormDepreciationPostingRepository_VersionConflict(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormDepreciationPostingRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	asset := createTestAsset(t, db, tenantID, "A-001", uuid.Nil, nil)
	stale := *asset
	stale.Version = 7
	plan := planFor(t, &stale)

	err := repo.Post(ctx,
		depreciation.NewLedgerEntries(tenantID, nil, &stale, plan),
		&plan.Asset,
		depreciation.NewSuccessDetail(uuid.New(), asset.ID, plan))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	posted, err := repo.ExistsForPeriod(ctx, asset.ID, depreciation.Period{Year: 2025, Month: time.January})
	require.NoError(t, err)
	assert.False(t, posted)
}

// ==================== Usage repository ====================

func TestGormAssetUsageRepository_Upsert(t *testing.T) {
	db := setupDepreciationTestDB(t)
	repo := NewGormAssetUsageRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	assetID := uuid.New()
	otherAsset := uuid.New()
	jan := depreciation.Period{Year: 2025, Month: time.January}
	feb := depreciation.Period{Year: 2025, Month: time.February}

	record := func(asset uuid.UUID, p depreciation.Period, units int64) {
		reading, err := depreciation.NewUsageReading(tenantID, asset, p, decimal.NewFromInt(units))
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(ctx, reading))
	}

	record(assetID, feb, 300)
	record(assetID, jan, 100)
	record(assetID, jan, 150)
	record(otherAsset, jan, 42)

	t.Run("replaces units of the same period", func(t *testing.T) {
		readings, err := repo.FindForAsset(ctx, tenantID, assetID)
		require.NoError(t, err)
		require.Len(t, readings, 2)
		assert.Equal(t, 1, readings[0].Month)
		assert.True(t, readings[0].Units.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, 2, readings[1].Month)
	})

	t.Run("groups by asset", func(t *testing.T) {
		byAsset, err := repo.FindForAssets(ctx, tenantID, []uuid.UUID{assetID, otherAsset})
		require.NoError(t, err)
		assert.Len(t, byAsset[assetID], 2)
		assert.Len(t, byAsset[otherAsset], 1)
	})

	t.Run("empty id list", func(t *testing.T) {
		byAsset, err := repo.FindForAssets(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Empty(t, byAsset)
	})
}
