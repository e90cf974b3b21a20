package persistence

import (
	"context"
	"errors"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/erp/depreciation/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDepreciationExecutionRepository implements depreciation.ExecutionRepository using GORM
type GormDepreciationExecutionRepository struct {
	db *gorm.DB
}

// NewGormDepreciationExecutionRepository creates a new GormDepreciationExecutionRepository
func NewGormDepreciationExecutionRepository(db *gorm.DB) *GormDepreciationExecutionRepository {
	return &GormDepreciationExecutionRepository{db: db}
}

// Create inserts a new execution row
func (r *GormDepreciationExecutionRepository) Create(ctx context.Context, execution *depreciation.Execution) error {
	return r.db.WithContext(ctx).Create(models.ExecutionModelFromDomain(execution)).Error
}

// Update stores the execution's status and counters
func (r *GormDepreciationExecutionRepository) Update(ctx context.Context, execution *depreciation.Execution) error {
	model := models.ExecutionModelFromDomain(execution)
	result := r.db.WithContext(ctx).Model(&models.ExecutionModel{}).
		Where("id = ? AND tenant_id = ?", execution.ID, execution.TenantID).
		Updates(map[string]any{
			"status":                    model.Status,
			"execution_date":            model.ExecutionDate,
			"total_assets_processed":    model.TotalAssetsProcessed,
			"successful_calculations":   model.SuccessfulCalculations,
			"failed_calculations":       model.FailedCalculations,
			"skipped_assets":            model.SkippedAssets,
			"total_depreciation_amount": model.TotalDepreciationAmount,
			"execution_duration_ms":     model.ExecutionDurationMs,
			"error_message":             model.ErrorMessage,
			"completed_at":              model.CompletedAt,
			"updated_at":                model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByIDForTenant finds an execution within a business unit
func (r *GormDepreciationExecutionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*depreciation.Execution, error) {
	var model models.ExecutionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists executions of a business unit, newest first
func (r *GormDepreciationExecutionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ExecutionFilter) ([]depreciation.Execution, error) {
	filter.Normalize()
	var rows []models.ExecutionModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExecutionModel{}), tenantID, filter).
		Order("execution_date DESC").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainExecutions(rows), nil
}

// CountForTenant counts executions of a business unit matching the filter
func (r *GormDepreciationExecutionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ExecutionFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExecutionModel{}), tenantID, filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

const detailViewColumns = "asset_depreciation_details.*, assets.item_code AS item_code, " +
	"assets.description AS asset_description, asset_categories.name AS category_name"

// FindDetails returns the per-asset rows of an execution joined with asset identity
func (r *GormDepreciationExecutionRepository) FindDetails(ctx context.Context, executionID uuid.UUID) ([]depreciation.DetailView, error) {
	var rows []models.AssetDepreciationDetailModel
	if err := r.db.WithContext(ctx).
		Model(&models.AssetDepreciationDetailModel{}).
		Select(detailViewColumns).
		Joins("LEFT JOIN assets ON assets.id = asset_depreciation_details.asset_id").
		Joins("LEFT JOIN asset_categories ON asset_categories.id = assets.category_id").
		Where("asset_depreciation_details.execution_id = ?", executionID).
		Order("asset_depreciation_details.status ASC").
		Order("assets.item_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]depreciation.DetailView, len(rows))
	for i := range rows {
		views[i] = rows[i].ToView()
	}
	return views, nil
}

type executionSummaryRow struct {
	TotalExecutions             int64
	TotalAssetsProcessed        int64
	TotalSuccessfulCalculations int64
	TotalDepreciationAmount     decimal.NullDecimal
}

// Summarize reduces the finished executions of a business unit. FAILED and
// RUNNING executions are not counted.
func (r *GormDepreciationExecutionRepository) Summarize(ctx context.Context, tenantID uuid.UUID) (depreciation.ExecutionSummary, error) {
	var row executionSummaryRow
	if err := r.db.WithContext(ctx).Model(&models.ExecutionModel{}).
		Select("COUNT(*) AS total_executions, "+
			"COALESCE(SUM(total_assets_processed), 0) AS total_assets_processed, "+
			"COALESCE(SUM(successful_calculations), 0) AS total_successful_calculations, "+
			"SUM(total_depreciation_amount) AS total_depreciation_amount").
		Where("tenant_id = ?", tenantID).
		Where("status IN ?", []depreciation.ExecutionStatus{
			depreciation.ExecutionStatusCompleted,
			depreciation.ExecutionStatusCompletedWithErrors,
		}).
		Scan(&row).Error; err != nil {
		return depreciation.ExecutionSummary{}, err
	}

	amount := decimal.Zero
	if row.TotalDepreciationAmount.Valid {
		amount = row.TotalDepreciationAmount.Decimal.Round(depreciation.MoneyScale)
	}
	return depreciation.ExecutionSummary{
		TotalExecutions:             row.TotalExecutions,
		TotalAssetsProcessed:        row.TotalAssetsProcessed,
		TotalSuccessfulCalculations: row.TotalSuccessfulCalculations,
		TotalDepreciationAmount:     amount,
	}, nil
}

// FindRunning lists executions still in RUNNING state
func (r *GormDepreciationExecutionRepository) FindRunning(ctx context.Context, tenantID uuid.UUID) ([]depreciation.Execution, error) {
	var rows []models.ExecutionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, depreciation.ExecutionStatusRunning).
		Order("execution_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainExecutions(rows), nil
}

func (r *GormDepreciationExecutionRepository) applyFilter(query *gorm.DB, tenantID uuid.UUID, filter depreciation.ExecutionFilter) *gorm.DB {
	query = query.Where("tenant_id = ?", tenantID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("execution_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("execution_date <= ?", *filter.DateTo)
	}
	if filter.ScheduleID != nil {
		query = query.Where("schedule_id = ?", *filter.ScheduleID)
	}
	return query
}

func toDomainExecutions(rows []models.ExecutionModel) []depreciation.Execution {
	executions := make([]depreciation.Execution, len(rows))
	for i := range rows {
		executions[i] = *rows[i].ToDomain()
	}
	return executions
}
