package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Config holds scheduler configuration
type Config struct {
	Enabled bool
	// CronSpec is a standard five field cron expression for the due check
	CronSpec string
	// Location is the calendar run dates are computed in
	Location *time.Location
}

// DefaultConfig returns default scheduler configuration.
// The due check fires daily at 00:05.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		CronSpec: "5 0 * * *",
		Location: time.Local,
	}
}

// Scheduler fires the due-schedule check on a cron cadence
type Scheduler struct {
	config  Config
	trigger *DueScheduleTrigger
	logger  *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
}

// New creates a new scheduler
func New(config Config, trigger *DueScheduleTrigger, logger *zap.Logger) (*Scheduler, error) {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.CronSpec == "" {
		config.CronSpec = DefaultConfig().CronSpec
	}
	if _, err := cron.ParseStandard(config.CronSpec); err != nil {
		return nil, fmt.Errorf("%w: cron spec %q: %v", ErrInvalidConfig, config.CronSpec, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		config:  config,
		trigger: trigger,
		logger:  logger.With(zap.String("component", "depreciation_scheduler")),
		cron:    cron.New(cron.WithLocation(config.Location)),
	}, nil
}

// Start registers the due check and starts the cron loop. It does nothing
// when the scheduler is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning || !s.config.Enabled {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	id, err := s.cron.AddFunc(s.config.CronSpec, s.tick)
	if err != nil {
		s.cancel()
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.entryID = id
	s.cron.Start()
	s.isRunning = true

	s.logger.Info("Depreciation scheduler started",
		zap.String("cron_spec", s.config.CronSpec),
		zap.String("timezone", s.config.Location.String()),
		zap.Time("next_run_at", s.cron.Entry(id).Next),
	)
	return nil
}

// Stop stops the cron loop and waits for a running check to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		s.logger.Info("Depreciation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Depreciation scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) tick() {
	now := time.Now().In(s.config.Location)
	s.mu.Lock()
	s.lastRunAt = &now
	ctx := s.ctx
	s.mu.Unlock()

	s.trigger.CheckAndRun(ctx, now)
}

// Status describes the scheduler state
type Status struct {
	Enabled   bool       `json:"enabled"`
	IsRunning bool       `json:"is_running"`
	CronSpec  string     `json:"cron_spec"`
	Timezone  string     `json:"timezone"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// GetStatus returns the current status of the scheduler
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Enabled:   s.config.Enabled,
		IsRunning: s.isRunning,
		CronSpec:  s.config.CronSpec,
		Timezone:  s.config.Location.String(),
		LastRunAt: s.lastRunAt,
	}
	if s.isRunning {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			status.NextRunAt = &next
		}
	}
	return status
}
