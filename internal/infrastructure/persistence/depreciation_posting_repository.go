package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/erp/depreciation/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDepreciationPostingRepository writes ledger entries, asset depreciation
// fields and execution detail rows. It also serves ledger reads.
type GormDepreciationPostingRepository struct {
	db *gorm.DB
}

// NewGormDepreciationPostingRepository creates a new GormDepreciationPostingRepository
func NewGormDepreciationPostingRepository(db *gorm.DB) *GormDepreciationPostingRepository {
	return &GormDepreciationPostingRepository{db: db}
}

// ExistsForPeriod checks whether a ledger entry exists for the asset and period
func (r *GormDepreciationPostingRepository) ExistsForPeriod(ctx context.Context, assetID uuid.UUID, period depreciation.Period) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssetDepreciationModel{}).
		Where("asset_id = ? AND period_year = ? AND period_month = ?", assetID, period.Year, int(period.Month)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Post writes the ledger entries, the asset update and the detail row in one
// transaction. A unique violation on the ledger maps to ErrPeriodAlreadyPosted
// and a stale asset version to ErrConcurrencyConflict; in both cases nothing
// is written.
func (r *GormDepreciationPostingRepository) Post(ctx context.Context, entries []depreciation.LedgerEntry, asset *depreciation.Asset, detail depreciation.AssetDepreciationDetail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := tx.Create(models.AssetDepreciationModelFromDomain(entry)).Error; err != nil {
				if isDuplicateKeyError(err) {
					return depreciation.ErrPeriodAlreadyPosted
				}
				return err
			}
		}

		model := models.AssetModelFromDomain(asset)
		result := tx.Model(&models.AssetModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", asset.ID, asset.TenantID, asset.Version).
			Updates(model.DepreciationColumns())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return tx.Create(models.AssetDepreciationDetailModelFromDomain(detail)).Error
	})
}

// RecordDetail appends a detail row without touching the asset or ledger
func (r *GormDepreciationPostingRepository) RecordDetail(ctx context.Context, detail depreciation.AssetDepreciationDetail) error {
	return r.db.WithContext(ctx).Create(models.AssetDepreciationDetailModelFromDomain(detail)).Error
}

// FindByAsset returns an asset's ledger entries in period order
func (r *GormDepreciationPostingRepository) FindByAsset(ctx context.Context, tenantID, assetID uuid.UUID) ([]depreciation.LedgerEntry, error) {
	var rows []models.AssetDepreciationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND asset_id = ?", tenantID, assetID).
		Order("period_year ASC").
		Order("period_month ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]depreciation.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// isDuplicateKeyError reports unique constraint violations from either the
// translated GORM error or the raw postgres and sqlite messages
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
