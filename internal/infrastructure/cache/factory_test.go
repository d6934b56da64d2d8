package cache

import (
	"context"
	"testing"

	"github.com/erp/consistency/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// port 1 is never a redis server, so the ping fails fast
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestNewIdempotencyStore_Fallback(t *testing.T) {
	store, err := NewIdempotencyStore(context.Background(), unreachableRedis,
		config.IdempotencyConfig{AllowInMemoryFallback: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, isMemory := store.(*InMemoryIdempotencyStore)
	assert.True(t, isMemory)
}

func TestNewIdempotencyStore_RedisRequired(t *testing.T) {
	_, err := NewIdempotencyStore(context.Background(), unreachableRedis,
		config.IdempotencyConfig{AllowInMemoryFallback: false}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis required")
}
