package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/erp/depreciation/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDepreciationAssetRepository implements depreciation.AssetRepository using GORM
type GormDepreciationAssetRepository struct {
	db *gorm.DB
}

// NewGormDepreciationAssetRepository creates a new GormDepreciationAssetRepository
func NewGormDepreciationAssetRepository(db *gorm.DB) *GormDepreciationAssetRepository {
	return &GormDepreciationAssetRepository{db: db}
}

// withCategory selects assets joined with their category name
func (r *GormDepreciationAssetRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.AssetModel{}).
		Select("assets.*, asset_categories.name AS category_name").
		Joins("LEFT JOIN asset_categories ON asset_categories.id = assets.category_id")
}

// dueScope restricts to active, not fully depreciated assets with a next
// depreciation date on or before asOf. Assets without a method are kept so
// the run reports them.
func dueScope(db *gorm.DB, tenantID uuid.UUID, asOf time.Time) *gorm.DB {
	return db.
		Where("assets.tenant_id = ?", tenantID).
		Where("assets.is_active = ?", true).
		Where("assets.is_fully_depreciated = ?", false).
		Where("assets.next_depreciation_date IS NOT NULL AND assets.next_depreciation_date <= ?", asOf)
}

// FindByIDForTenant finds an asset within a business unit
func (r *GormDepreciationAssetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*depreciation.Asset, error) {
	var model models.AssetModel
	if err := r.withCategory(ctx).
		Where("assets.tenant_id = ? AND assets.id = ?", tenantID, id).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindEligible resolves the assets a run should depreciate
func (r *GormDepreciationAssetRepository) FindEligible(ctx context.Context, criteria depreciation.EligibilityCriteria) ([]depreciation.Asset, error) {
	query := dueScope(r.withCategory(ctx), criteria.TenantID, criteria.RunDate)
	if len(criteria.IncludeCategories) > 0 {
		query = query.Where("assets.category_id IN ?", criteria.IncludeCategories)
	}
	if len(criteria.ExcludeCategories) > 0 {
		query = query.Where("(assets.category_id IS NULL OR assets.category_id NOT IN ?)", criteria.ExcludeCategories)
	}

	var rows []models.AssetModel
	if err := query.
		Order("assets.next_depreciation_date ASC").
		Order("assets.item_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAssets(rows), nil
}

// FindDue lists assets with depreciation due on or before asOf
func (r *GormDepreciationAssetRepository) FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]depreciation.Asset, error) {
	var rows []models.AssetModel
	if err := dueScope(r.withCategory(ctx), tenantID, asOf).
		Order("assets.next_depreciation_date ASC").
		Order("assets.item_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAssets(rows), nil
}

// CountDue counts assets with depreciation due on or before asOf
func (r *GormDepreciationAssetRepository) CountDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	if err := dueScope(r.db.WithContext(ctx).Model(&models.AssetModel{}), tenantID, asOf).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toDomainAssets(rows []models.AssetModel) []depreciation.Asset {
	assets := make([]depreciation.Asset, len(rows))
	for i := range rows {
		assets[i] = *rows[i].ToDomain()
	}
	return assets
}
