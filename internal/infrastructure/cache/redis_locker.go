package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/consistency/internal/application/ledger"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "consistency:lock:"

// RedisLocker implements ledger.Locker with redislock, so replicas never
// run two corrections on the same target at once
type RedisLocker struct {
	locker *redislock.Client
	prefix string
}

// NewRedisLocker creates a locker over an existing client
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = defaultLockPrefix
	}
	return &RedisLocker{locker: redislock.New(client), prefix: prefix}
}

// Obtain takes key without retrying. A held key gives ledger.ErrLockHeld.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.locker.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ledger.ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func() {
		// Release after expiry reports ErrLockNotHeld, which is harmless here
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}

var _ ledger.Locker = (*RedisLocker)(nil)
