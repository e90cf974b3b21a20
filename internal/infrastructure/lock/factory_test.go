package lock

import (
	"testing"

	"github.com/erp/depreciation/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func unreachableRedis() config.RedisConfig {
	return config.RedisConfig{Host: "127.0.0.1", Port: 1}
}

func TestFactory_Create(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		f := NewFactory(unreachableRedis(), WithLogger(zap.NewNop()))

		store, err := f.Create(config.LockBackendMemory)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryExecutionLock{}, store)
	})

	t.Run("redis backend falls back to memory", func(t *testing.T) {
		f := NewFactory(unreachableRedis())

		store, err := f.Create(config.LockBackendRedis)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryExecutionLock{}, store)
	})

	t.Run("redis backend without fallback fails", func(t *testing.T) {
		f := NewFactory(unreachableRedis(), WithInMemoryFallback(false))

		store, err := f.Create(config.LockBackendRedis)
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "Redis required")
	})
}
