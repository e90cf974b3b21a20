package persistence

import (
	"context"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssetUsageRepository implements depreciation.UsageRepository using GORM
type GormAssetUsageRepository struct {
	db *gorm.DB
}

// NewGormAssetUsageRepository creates a new GormAssetUsageRepository
func NewGormAssetUsageRepository(db *gorm.DB) *GormAssetUsageRepository {
	return &GormAssetUsageRepository{db: db}
}

// Upsert inserts a reading or replaces the units of an existing one for the same period
func (r *GormAssetUsageRepository) Upsert(ctx context.Context, reading *depreciation.UsageReading) error {
	model := models.AssetUsageReadingModelFromDomain(reading)
	model.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset_id"}, {Name: "year"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"units", "updated_at"}),
		}).
		Create(model).Error
}

// FindForAsset returns the readings of one asset in period order
func (r *GormAssetUsageRepository) FindForAsset(ctx context.Context, tenantID, assetID uuid.UUID) ([]depreciation.UsageReading, error) {
	var rows []models.AssetUsageReadingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND asset_id = ?", tenantID, assetID).
		Order("year ASC").
		Order("month ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	readings := make([]depreciation.UsageReading, len(rows))
	for i := range rows {
		readings[i] = rows[i].ToDomain()
	}
	return readings, nil
}

// FindForAssets returns readings grouped by asset
func (r *GormAssetUsageRepository) FindForAssets(ctx context.Context, tenantID uuid.UUID, assetIDs []uuid.UUID) (map[uuid.UUID][]depreciation.UsageReading, error) {
	result := make(map[uuid.UUID][]depreciation.UsageReading, len(assetIDs))
	if len(assetIDs) == 0 {
		return result, nil
	}
	var rows []models.AssetUsageReadingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND asset_id IN ?", tenantID, assetIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		reading := rows[i].ToDomain()
		result[reading.AssetID] = append(result[reading.AssetID], reading)
	}
	return result, nil
}
