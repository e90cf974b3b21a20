package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryExecutionLock_Acquire(t *testing.T) {
	l := NewInMemoryExecutionLock()
	defer l.Close()

	ctx := context.Background()

	t.Run("acquires a free key", func(t *testing.T) {
		token, ok, err := l.Acquire(ctx, "schedule:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, token)
		assert.True(t, l.IsHeld("schedule:a"))
	})

	t.Run("second acquire of a held key fails", func(t *testing.T) {
		_, ok, err := l.Acquire(ctx, "schedule:b", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = l.Acquire(ctx, "schedule:b", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		_, ok, err := l.Acquire(ctx, "schedule:c", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = l.Acquire(ctx, "manual:c", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired holder can be replaced", func(t *testing.T) {
		_, ok, err := l.Acquire(ctx, "schedule:d", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		_, ok, err = l.Acquire(ctx, "schedule:d", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, ok, err := l.Acquire(cancelled, "schedule:e", time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)
	})
}

func TestInMemoryExecutionLock_Release(t *testing.T) {
	l := NewInMemoryExecutionLock()
	defer l.Close()

	ctx := context.Background()

	t.Run("release frees the key", func(t *testing.T) {
		token, _, err := l.Acquire(ctx, "schedule:a", time.Hour)
		require.NoError(t, err)

		require.NoError(t, l.Release(ctx, "schedule:a", token))
		assert.False(t, l.IsHeld("schedule:a"))

		_, ok, err := l.Acquire(ctx, "schedule:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale token does not release the new holder", func(t *testing.T) {
		stale, _, err := l.Acquire(ctx, "schedule:b", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		_, ok, err := l.Acquire(ctx, "schedule:b", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, l.Release(ctx, "schedule:b", stale))
		assert.True(t, l.IsHeld("schedule:b"))
	})

	t.Run("release of unknown key is a no-op", func(t *testing.T) {
		assert.NoError(t, l.Release(ctx, "schedule:none", "token"))
	})
}

func TestInMemoryExecutionLock_Concurrent(t *testing.T) {
	l := NewInMemoryExecutionLock()
	defer l.Close()

	ctx := context.Background()
	var acquired atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := l.Acquire(ctx, "schedule:race", time.Hour)
			if err == nil && ok {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load())
}

func TestInMemoryExecutionLock_Cleanup(t *testing.T) {
	l := NewInMemoryExecutionLock()
	defer l.Close()

	ctx := context.Background()
	_, _, err := l.Acquire(ctx, "schedule:old", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	l.cleanup()

	l.mu.Lock()
	_, exists := l.holders["schedule:old"]
	l.mu.Unlock()
	assert.False(t, exists)
}

func TestInMemoryExecutionLock_CloseTwice(t *testing.T) {
	l := NewInMemoryExecutionLock()
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
