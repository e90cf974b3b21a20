package depreciation

import (
	"context"
	"sync"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockScheduleRepository is a mock implementation of ScheduleRepository
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*depreciation.Schedule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciation.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ScheduleFilter) ([]depreciation.Schedule, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]depreciation.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ScheduleFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScheduleRepository) FindActive(ctx context.Context) ([]depreciation.Schedule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]depreciation.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduleRepository) Save(ctx context.Context, schedule *depreciation.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockScheduleRepository) MarkExecuted(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, tenantID, id, at)
	return args.Error(0)
}

// MockExecutionRepository is a mock implementation of ExecutionRepository
type MockExecutionRepository struct {
	mock.Mock
}

func (m *MockExecutionRepository) Create(ctx context.Context, execution *depreciation.Execution) error {
	args := m.Called(ctx, execution)
	return args.Error(0)
}

func (m *MockExecutionRepository) Update(ctx context.Context, execution *depreciation.Execution) error {
	args := m.Called(ctx, execution)
	return args.Error(0)
}

func (m *MockExecutionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*depreciation.Execution, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciation.Execution), args.Error(1)
}

func (m *MockExecutionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ExecutionFilter) ([]depreciation.Execution, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]depreciation.Execution), args.Error(1)
}

func (m *MockExecutionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter depreciation.ExecutionFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExecutionRepository) FindDetails(ctx context.Context, executionID uuid.UUID) ([]depreciation.DetailView, error) {
	args := m.Called(ctx, executionID)
	return args.Get(0).([]depreciation.DetailView), args.Error(1)
}

func (m *MockExecutionRepository) Summarize(ctx context.Context, tenantID uuid.UUID) (depreciation.ExecutionSummary, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(depreciation.ExecutionSummary), args.Error(1)
}

func (m *MockExecutionRepository) FindRunning(ctx context.Context, tenantID uuid.UUID) ([]depreciation.Execution, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]depreciation.Execution), args.Error(1)
}

// MockAssetRepository is a mock implementation of AssetRepository
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*depreciation.Asset, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciation.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindEligible(ctx context.Context, criteria depreciation.EligibilityCriteria) ([]depreciation.Asset, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).([]depreciation.Asset), args.Error(1)
}

func (m *MockAssetRepository) FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]depreciation.Asset, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).([]depreciation.Asset), args.Error(1)
}

func (m *MockAssetRepository) CountDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).(int64), args.Error(1)
}

// MockExecutionLock is a mock implementation of ExecutionLock
type MockExecutionLock struct {
	mock.Mock
}

func (m *MockExecutionLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockExecutionLock) Release(ctx context.Context, key, token string) error {
	args := m.Called(ctx, key, token)
	return args.Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
