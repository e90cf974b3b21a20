package depreciation

import (
	"context"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/google/uuid"
)

// UsageService records usage readings for units of production assets
type UsageService struct {
	assetRepo depreciation.AssetRepository
	usageRepo depreciation.UsageRepository
}

// NewUsageService creates a new UsageService
func NewUsageService(assetRepo depreciation.AssetRepository, usageRepo depreciation.UsageRepository) *UsageService {
	return &UsageService{assetRepo: assetRepo, usageRepo: usageRepo}
}

// Record stores the units an asset produced in a period, replacing any
// earlier reading for the same period
func (s *UsageService) Record(ctx context.Context, actor Actor, assetID uuid.UUID, req RecordUsageRequest) (*UsageReadingResponse, error) {
	if err := actor.require(PermissionUsage); err != nil {
		return nil, err
	}

	if _, err := s.assetRepo.FindByIDForTenant(ctx, actor.TenantID, assetID); err != nil {
		return nil, err
	}

	period := depreciation.Period{Year: req.Year, Month: time.Month(req.Month)}
	reading, err := depreciation.NewUsageReading(actor.TenantID, assetID, period, req.Units)
	if err != nil {
		return nil, err
	}

	if err := s.usageRepo.Upsert(ctx, reading); err != nil {
		return nil, err
	}

	resp := ToUsageReadingResponse(reading)
	return &resp, nil
}

// List returns an asset's usage readings in period order
func (s *UsageService) List(ctx context.Context, actor Actor, assetID uuid.UUID) ([]UsageReadingResponse, error) {
	if err := actor.require(PermissionView); err != nil {
		return nil, err
	}

	if _, err := s.assetRepo.FindByIDForTenant(ctx, actor.TenantID, assetID); err != nil {
		return nil, err
	}

	readings, err := s.usageRepo.FindForAsset(ctx, actor.TenantID, assetID)
	if err != nil {
		return nil, err
	}

	responses := make([]UsageReadingResponse, len(readings))
	for i := range readings {
		responses[i] = ToUsageReadingResponse(&readings[i])
	}
	return responses, nil
}
