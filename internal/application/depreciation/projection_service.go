package depreciation

import (
	"context"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/google/uuid"
)

// ProjectionService previews an asset's depreciation schedule without
// writing anything
type ProjectionService struct {
	assetRepo  depreciation.AssetRepository
	ledgerRepo depreciation.LedgerRepository
	usageRepo  depreciation.UsageRepository
	calc       depreciation.Calculator
}

// NewProjectionService creates a new ProjectionService
func NewProjectionService(
	assetRepo depreciation.AssetRepository,
	ledgerRepo depreciation.LedgerRepository,
	usageRepo depreciation.UsageRepository,
) *ProjectionService {
	return &ProjectionService{
		assetRepo:  assetRepo,
		ledgerRepo: ledgerRepo,
		usageRepo:  usageRepo,
		calc:       depreciation.NewCalculator(),
	}
}

// Project returns the posted and remaining periods of an asset
func (s *ProjectionService) Project(ctx context.Context, tenantID, assetID uuid.UUID, asOf time.Time) (*ProjectionResponse, error) {
	asset, err := s.assetRepo.FindByIDForTenant(ctx, tenantID, assetID)
	if err != nil {
		return nil, err
	}

	posted, err := s.ledgerRepo.FindByAsset(ctx, tenantID, assetID)
	if err != nil {
		return nil, err
	}

	var usage depreciation.UsageLookup
	if asset.Method == depreciation.MethodUnitsOfProduction && s.usageRepo != nil {
		readings, err := s.usageRepo.FindForAsset(ctx, tenantID, assetID)
		if err != nil {
			return nil, err
		}
		usage = depreciation.UsageIndex(readings)
	}

	rows, err := depreciation.Project(s.calc, *asset, posted, usage, asOf)
	if err != nil {
		return nil, err
	}

	return &ProjectionResponse{
		AssetID:                  asset.ID,
		ItemCode:                 asset.ItemCode,
		Method:                   asset.Method.String(),
		UsefulLifeMonths:         asset.UsefulLifeMonths,
		UsefulLifeReviewRequired: asset.UsefulLifeReviewRequired,
		Rows:                     rows,
	}, nil
}
