package handler

import (
	"context"
	"time"

	depreciationapp "github.com/erp/depreciation/internal/application/depreciation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockScheduleService struct {
	mock.Mock
}

func (m *mockScheduleService) Create(ctx context.Context, actor depreciationapp.Actor, req depreciationapp.CreateScheduleRequest) (*depreciationapp.ScheduleResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) Update(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID, req depreciationapp.UpdateScheduleRequest) (*depreciationapp.ScheduleResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) Delete(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *mockScheduleService) Toggle(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) (*depreciationapp.ScheduleResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) SetActive(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID, active bool) (*depreciationapp.ScheduleResponse, error) {
	args := m.Called(ctx, actor, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) Get(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) (*depreciationapp.ScheduleResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.ScheduleResponse), args.Error(1)
}

func (m *mockScheduleService) List(ctx context.Context, actor depreciationapp.Actor, filter depreciationapp.ScheduleListFilter) ([]depreciationapp.ScheduleResponse, int64, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]depreciationapp.ScheduleResponse), args.Get(1).(int64), args.Error(2)
}

type mockRunTrigger struct {
	mock.Mock
}

func (m *mockRunTrigger) TriggerSchedule(ctx context.Context, actor depreciationapp.Actor, scheduleID uuid.UUID, runDate time.Time) (*depreciationapp.TriggerResponse, error) {
	args := m.Called(ctx, actor, scheduleID, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.TriggerResponse), args.Error(1)
}

func (m *mockRunTrigger) TriggerManual(ctx context.Context, actor depreciationapp.Actor, runDate time.Time) (*depreciationapp.TriggerResponse, error) {
	args := m.Called(ctx, actor, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.TriggerResponse), args.Error(1)
}

type mockHistoryService struct {
	mock.Mock
}

func (m *mockHistoryService) List(ctx context.Context, actor depreciationapp.Actor, filter depreciationapp.ExecutionListFilter) ([]depreciationapp.ExecutionResponse, int64, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]depreciationapp.ExecutionResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockHistoryService) Get(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) (*depreciationapp.ExecutionDetailResponse, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.ExecutionDetailResponse), args.Error(1)
}

func (m *mockHistoryService) Summary(ctx context.Context, actor depreciationapp.Actor) (*depreciationapp.SummaryResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.SummaryResponse), args.Error(1)
}

func (m *mockHistoryService) Running(ctx context.Context, actor depreciationapp.Actor) ([]depreciationapp.ExecutionResponse, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]depreciationapp.ExecutionResponse), args.Error(1)
}

type mockDueWorkService struct {
	mock.Mock
}

func (m *mockDueWorkService) Count(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDueWorkService) List(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*depreciationapp.DueWorkResponse, error) {
	args := m.Called(ctx, tenantID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.DueWorkResponse), args.Error(1)
}

type mockProjectionService struct {
	mock.Mock
}

func (m *mockProjectionService) Project(ctx context.Context, tenantID, assetID uuid.UUID, asOf time.Time) (*depreciationapp.ProjectionResponse, error) {
	args := m.Called(ctx, tenantID, assetID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.ProjectionResponse), args.Error(1)
}

type mockUsageService struct {
	mock.Mock
}

func (m *mockUsageService) Record(ctx context.Context, actor depreciationapp.Actor, assetID uuid.UUID, req depreciationapp.RecordUsageRequest) (*depreciationapp.UsageReadingResponse, error) {
	args := m.Called(ctx, actor, assetID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*depreciationapp.UsageReadingResponse), args.Error(1)
}

func (m *mockUsageService) List(ctx context.Context, actor depreciationapp.Actor, assetID uuid.UUID) ([]depreciationapp.UsageReadingResponse, error) {
	args := m.Called(ctx, actor, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]depreciationapp.UsageReadingResponse), args.Error(1)
}

type stubChecker struct {
	err error
}

func (s stubChecker) Ping() error { return s.err }
