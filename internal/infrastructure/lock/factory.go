package lock

import (
	"fmt"
	"io"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Store is an execution lock that owns resources to release on shutdown
type Store interface {
	depreciation.ExecutionLock
	io.Closer
}

// Factory creates execution lock stores based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory lock
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new lock factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLock creates a Redis-backed lock
func (f *Factory) CreateRedisLock() (Store, error) {
	l, err := NewRedisExecutionLock(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis execution lock: %w", err)
	}
	return l, nil
}

// CreateInMemoryLock creates a process-local lock. Separate instances do not
// see each other's runs.
func (f *Factory) CreateInMemoryLock() Store {
	return NewInMemoryExecutionLock()
}

// Create builds the lock for the configured backend. The redis backend falls
// back to memory when Redis is unreachable and fallback is allowed.
func (f *Factory) Create(backend string) (Store, error) {
	if backend == config.LockBackendMemory {
		f.logger.Info("using in-memory execution lock")
		return f.CreateInMemoryLock(), nil
	}

	store, err := f.CreateRedisLock()
	if err == nil {
		f.logger.Info("using Redis execution lock")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for execution lock but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory execution lock. "+
		"Concurrent instances may run the same schedule.",
		zap.Error(err),
	)
	return f.CreateInMemoryLock(), nil
}
