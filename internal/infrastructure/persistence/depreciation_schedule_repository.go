package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/erp/depreciation/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDepreciationScheduleRepository implements depreciation.ScheduleRepository using GORM
type GormDepreciationScheduleRepository struct {
	db *gorm.DB
}

// NewGormDepreciationScheduleRepository creates a new GormDepreciationScheduleRepository
func NewGormDepreciationScheduleRepository(db *gorm.DB) *GormDepreciationScheduleRepository {
	return &GormDepreciationScheduleRepository{db: db}
}

// FindByIDForTenant finds a schedule within a business unit. Schedules of
// other business units are reported as not found.
func (r *GormDepreciationScheduleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*depreciation.Schedule, error) {
	var model models.ScheduleModel
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

// FindAllForTenant lists schedules of a business unit
func (r *GormDepreciationScheduleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ScheduleFilter) ([]depreciation.Schedule, error) {
	filter.Normalize()
	var rows []models.ScheduleModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ScheduleModel{}), tenantID, filter).
		Order("name ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	schedules := make([]depreciation.Schedule, len(rows))
	for i := range rows {
		schedules[i] = *rows[i].ToDomain()
	}
	return schedules, nil
}

// CountForTenant counts schedules of a business unit matching the filter
func (r *GormDepreciationScheduleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ScheduleFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ScheduleModel{}), tenantID, filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindActive lists active schedules across all business units
func (r *GormDepreciationScheduleRepository) FindActive(ctx context.Context) ([]depreciation.Schedule, error) {
	var rows []models.ScheduleModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("tenant_id ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	schedules := make([]depreciation.Schedule, len(rows))
	for i := range rows {
		schedules[i] = *rows[i].ToDomain()
	}
	return schedules, nil
}

// ExistsByName checks if a schedule name is taken within a business unit
func (r *GormDepreciationScheduleRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ScheduleModel{}).
		Where("tenant_id = ? AND name = ?", tenantID, strings.TrimSpace(name))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a schedule. Updates never touch last_executed_at,
// which only MarkExecuted writes.
func (r *GormDepreciationScheduleRepository) Save(ctx context.Context, schedule *depreciation.Schedule) error {
	model := models.ScheduleModelFromDomain(schedule)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.ScheduleModel{}).
		Where("tenant_id = ? AND id = ?", model.TenantID, model.ID).
		Updates(map[string]any{
			"name":               model.Name,
			"description":        model.Description,
			"schedule_type":      model.ScheduleType,
			"execution_day":      model.ExecutionDay,
			"include_categories": model.IncludeCategories,
			"exclude_categories": model.ExcludeCategories,
			"is_active":          model.IsActive,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})
	err := result.Error
	if err == nil && result.RowsAffected == 0 {
		err = db.Create(model).Error
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return depreciation.ErrScheduleNameTaken
		}
		return err
	}
	return nil
}

// DeleteForTenant deletes a schedule, its executions and their detail rows
// in one transaction
func (r *GormDepreciationScheduleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ScheduleModel{}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}

		executions := tx.Model(&models.ExecutionModel{}).
			Select("id").
			Where("tenant_id = ? AND schedule_id = ?", tenantID, id)
		if err := tx.Where("execution_id IN (?)", executions).
			Delete(&models.AssetDepreciationDetailModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND schedule_id = ?", tenantID, id).
			Delete(&models.ExecutionModel{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&models.ScheduleModel{}).Error
	})
}

// MarkExecuted stores the time of the schedule's latest run
func (r *GormDepreciationScheduleRepository) MarkExecuted(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ScheduleModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{"last_executed_at": at, "updated_at": time.Now()}).Error
}

func (r *GormDepreciationScheduleRepository) applyFilter(query *gorm.DB, tenantID uuid.UUID, filter depreciation.ScheduleFilter) *gorm.DB {
	query = query.Where("tenant_id = ?", tenantID)
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ScheduleType != nil {
		query = query.Where("schedule_type = ?", *filter.ScheduleType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query
}
