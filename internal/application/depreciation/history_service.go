package depreciation

import (
	"context"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/google/uuid"
)

// HistoryService reads execution history
type HistoryService struct {
	executionRepo depreciation.ExecutionRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(executionRepo depreciation.ExecutionRepository) *HistoryService {
	return &HistoryService{executionRepo: executionRepo}
}

// List retrieves a page of executions, newest first
func (s *HistoryService) List(ctx context.Context, actor Actor, filter ExecutionListFilter) ([]ExecutionResponse, int64, error) {
	if err := actor.require(PermissionView); err != nil {
		return nil, 0, err
	}

	domainFilter := filter.ToDomain()
	if domainFilter.Status != nil && !domainFilter.Status.IsValid() {
		return nil, 0, depreciation.ErrInvalidExecutionStatus
	}

	executions, err := s.executionRepo.FindAllForTenant(ctx, actor.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.executionRepo.CountForTenant(ctx, actor.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExecutionResponse, len(executions))
	for i := range executions {
		responses[i] = ToExecutionResponse(&executions[i])
	}
	return responses, total, nil
}

// Get retrieves an execution with its per-asset rows
func (s *HistoryService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*ExecutionDetailResponse, error) {
	if err := actor.require(PermissionView); err != nil {
		return nil, err
	}

	execution, err := s.executionRepo.FindByIDForTenant(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	views, err := s.executionRepo.FindDetails(ctx, execution.ID)
	if err != nil {
		return nil, err
	}

	resp := &ExecutionDetailResponse{
		ExecutionResponse: ToExecutionResponse(execution),
		Details:           make([]DetailResponse, 0, len(views)),
		FailedAssets:      make([]DetailResponse, 0),
	}
	for _, view := range views {
		detail := ToDetailResponse(view)
		resp.Details = append(resp.Details, detail)
		if view.IsFailure() {
			resp.FailedAssets = append(resp.FailedAssets, detail)
		}
	}
	return resp, nil
}

// Summary reduces every finished execution of the business unit
func (s *HistoryService) Summary(ctx context.Context, actor Actor) (*SummaryResponse, error) {
	if err := actor.require(PermissionView); err != nil {
		return nil, err
	}

	summary, err := s.executionRepo.Summarize(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	return &SummaryResponse{
		TotalExecutions:             summary.TotalExecutions,
		TotalAssetsProcessed:        summary.TotalAssetsProcessed,
		TotalSuccessfulCalculations: summary.TotalSuccessfulCalculations,
		TotalDepreciationAmount:     summary.TotalDepreciationAmount,
	}, nil
}

// Running lists executions still RUNNING
func (s *HistoryService) Running(ctx context.Context, actor Actor) ([]ExecutionResponse, error) {
	if err := actor.require(PermissionView); err != nil {
		return nil, err
	}

	executions, err := s.executionRepo.FindRunning(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	responses := make([]ExecutionResponse, len(executions))
	for i := range executions {
		responses[i] = ToExecutionResponse(&executions[i])
	}
	return responses, nil
}
