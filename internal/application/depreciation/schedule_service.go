package depreciation

import (
	"context"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleService manages depreciation schedules of a business unit
type ScheduleService struct {
	scheduleRepo depreciation.ScheduleRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(
	scheduleRepo depreciation.ScheduleRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new schedule
func (s *ScheduleService) Create(ctx context.Context, actor Actor, req CreateScheduleRequest) (*ScheduleResponse, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, err
	}

	spec := scheduleSpec(req.Name, req.Description, req.ScheduleType, req.ExecutionDay,
		req.IncludeCategories, req.ExcludeCategories, req.IsActive)
	schedule, err := depreciation.NewSchedule(actor.TenantID, actor.UserID, spec)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(ctx, actor.TenantID, schedule.Name, nil); err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		return nil, err
	}
	s.publish(ctx, schedule)

	s.logger.Info("depreciation schedule created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("schedule_id", schedule.ID.String()),
		zap.String("name", schedule.Name),
	)

	resp := ToScheduleResponse(schedule)
	return &resp, nil
}

// Update replaces a schedule's configuration
func (s *ScheduleService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateScheduleRequest) (*ScheduleResponse, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.FindByIDForTenant(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	active := schedule.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	spec := scheduleSpec(req.Name, req.Description, req.ScheduleType, req.ExecutionDay,
		req.IncludeCategories, req.ExcludeCategories, &active)
	if err := schedule.Update(spec); err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(ctx, actor.TenantID, schedule.Name, &schedule.ID); err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		return nil, err
	}
	s.publish(ctx, schedule)

	resp := ToScheduleResponse(schedule)
	return &resp, nil
}

// Delete removes a schedule together with its execution history
func (s *ScheduleService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(PermissionManage); err != nil {
		return err
	}

	schedule, err := s.scheduleRepo.FindByIDForTenant(ctx, actor.TenantID, id)
	if err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteForTenant(ctx, actor.TenantID, id); err != nil {
		return err
	}

	schedule.AddDomainEvent(depreciation.NewScheduleDeletedEvent(schedule))
	s.publish(ctx, schedule)

	s.logger.Info("depreciation schedule deleted",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("schedule_id", id.String()),
	)
	return nil
}

// Toggle flips a schedule's active flag
func (s *ScheduleService) Toggle(ctx context.Context, actor Actor, id uuid.UUID) (*ScheduleResponse, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.FindByIDForTenant(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	schedule.Toggle()
	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		return nil, err
	}
	s.publish(ctx, schedule)

	resp := ToScheduleResponse(schedule)
	return &resp, nil
}

// SetActive sets a schedule's active flag, doing nothing when it already matches
func (s *ScheduleService) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) (*ScheduleResponse, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.FindByIDForTenant(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if schedule.IsActive == active {
		resp := ToScheduleResponse(schedule)
		return &resp, nil
	}

	schedule.Toggle()
	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		return nil, err
	}
	s.publish(ctx, schedule)

	resp := ToScheduleResponse(schedule)
	return &resp, nil
}

// Get retrieves a schedule by ID
func (s *ScheduleService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*ScheduleResponse, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.FindByIDForTenant(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	resp := ToScheduleResponse(schedule)
	return &resp, nil
}

// List retrieves a page of schedules ordered by name
func (s *ScheduleService) List(ctx context.Context, actor Actor, filter ScheduleListFilter) ([]ScheduleResponse, int64, error) {
	if err := actor.require(PermissionManage); err != nil {
		return nil, 0, err
	}

	domainFilter := depreciation.ScheduleFilter{
		IsActive: filter.IsActive,
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.ScheduleType != "" {
		scheduleType := depreciation.ScheduleType(filter.ScheduleType)
		domainFilter.ScheduleType = &scheduleType
	}
	domainFilter.Normalize()

	schedules, err := s.scheduleRepo.FindAllForTenant(ctx, actor.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.scheduleRepo.CountForTenant(ctx, actor.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = ToScheduleResponse(&schedules[i])
	}
	return responses, total, nil
}

func (s *ScheduleService) ensureNameAvailable(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.scheduleRepo.ExistsByName(ctx, tenantID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return depreciation.ErrScheduleNameTaken
	}
	return nil
}

func (s *ScheduleService) publish(ctx context.Context, schedule *depreciation.Schedule) {
	events := schedule.GetDomainEvents()
	schedule.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish schedule events",
			zap.String("schedule_id", schedule.ID.String()),
			zap.Error(err),
		)
	}
}

func scheduleSpec(name, description, scheduleType string, executionDay int, include, exclude []uuid.UUID, active *bool) depreciation.ScheduleSpec {
	isActive := true
	if active != nil {
		isActive = *active
	}
	return depreciation.ScheduleSpec{
		Name:              name,
		Description:       description,
		ScheduleType:      depreciation.ScheduleType(scheduleType),
		ExecutionDay:      executionDay,
		IncludeCategories: include,
		ExcludeCategories: exclude,
		IsActive:          isActive,
	}
}
