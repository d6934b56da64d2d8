package cache

import (
	"context"
	"fmt"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore opens the Redis store described by cfg. When Redis is
// unreachable it falls back to the in-memory store only if the idempotency
// config allows it; production config validation forbids that.
func NewIdempotencyStore(ctx context.Context, redisCfg config.RedisConfig, idemCfg config.IdempotencyConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := NewRedisIdempotencyStore(ctx, redisCfg.Addr(), redisCfg.Password, redisCfg.DB)
	if err == nil {
		logger.Info("using Redis idempotency store", zap.String("addr", redisCfg.Addr()))
		return store, nil
	}
	if !idemCfg.AllowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"replays will not be shared across instances", zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}
