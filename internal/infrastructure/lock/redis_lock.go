package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "depreciation:lock:"

// releaseScript deletes the key only while it still holds the caller's token,
// so an expired lock re-acquired by another process is never released by the
// previous owner
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisExecutionLock implements depreciation.ExecutionLock using Redis.
// This is suitable for deployments where several instances may trigger the
// same schedule.
type RedisExecutionLock struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisExecutionLock connects to Redis and creates a lock store
func NewRedisExecutionLock(cfg RedisConfig) (*RedisExecutionLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisExecutionLock{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}, nil
}

// NewRedisExecutionLockWithClient creates a lock store with an existing Redis client
func NewRedisExecutionLockWithClient(client *redis.Client, keyPrefix string) *RedisExecutionLock {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisExecutionLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire sets the key to a fresh token with SET NX PX. It returns false
// without error when another holder owns the key.
func (l *RedisExecutionLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	err := l.client.SetArgs(ctx, l.keyPrefix+key, token, redis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire execution lock %s: %w", key, err)
	}
	return token, true, nil
}

// Release deletes the key if token still owns it
func (l *RedisExecutionLock) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release execution lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisExecutionLock) Close() error {
	return l.client.Close()
}

var _ depreciation.ExecutionLock = (*RedisExecutionLock)(nil)
