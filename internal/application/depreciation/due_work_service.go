package depreciation

import (
	"context"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/google/uuid"
)

// DueWorkService answers how many and which assets are due for depreciation.
// It holds no state; display frequency is up to the caller.
type DueWorkService struct {
	assetRepo depreciation.AssetRepository
}

// NewDueWorkService creates a new DueWorkService
func NewDueWorkService(assetRepo depreciation.AssetRepository) *DueWorkService {
	return &DueWorkService{assetRepo: assetRepo}
}

// Count returns the number of assets due on or before asOf
func (s *DueWorkService) Count(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	return s.assetRepo.CountDue(ctx, tenantID, asOf)
}

// List returns the due assets ordered by next depreciation date
func (s *DueWorkService) List(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*DueWorkResponse, error) {
	assets, err := s.assetRepo.FindDue(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	items := make([]DueAssetResponse, len(assets))
	for i := range assets {
		items[i] = ToDueAssetResponse(&assets[i])
	}
	return &DueWorkResponse{
		Count: int64(len(items)),
		Items: items,
	}, nil
}
