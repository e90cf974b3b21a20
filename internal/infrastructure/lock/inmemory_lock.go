package lock

import (
	"context"
	"sync"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/google/uuid"
)

type holder struct {
	token     string
	expiresAt time.Time
}

// InMemoryExecutionLock implements depreciation.ExecutionLock with a map.
// It only excludes runs within a single process.
type InMemoryExecutionLock struct {
	mu        sync.Mutex
	holders   map[string]holder
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryExecutionLock creates an in-memory lock store and starts a
// background goroutine that drops expired holders
func NewInMemoryExecutionLock() *InMemoryExecutionLock {
	l := &InMemoryExecutionLock{
		holders:  make(map[string]holder),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire takes the key unless an unexpired holder owns it
func (l *InMemoryExecutionLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if h, exists := l.holders[key]; exists && now.Before(h.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.holders[key] = holder{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees the key if token still owns it
func (l *InMemoryExecutionLock) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, exists := l.holders[key]; exists && h.token == token {
		delete(l.holders, key)
	}
	return nil
}

// IsHeld reports whether an unexpired holder owns key
func (l *InMemoryExecutionLock) IsHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, exists := l.holders[key]
	return exists && time.Now().Before(h.expiresAt)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *InMemoryExecutionLock) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryExecutionLock) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryExecutionLock) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, h := range l.holders {
		if now.After(h.expiresAt) {
			delete(l.holders, key)
		}
	}
}

var _ depreciation.ExecutionLock = (*InMemoryExecutionLock)(nil)
