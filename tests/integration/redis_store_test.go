//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/erp/consistency/internal/application/ledger"
	"github.com/erp/consistency/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewRedisIdempotencyStore(ctx, StartRedis(t), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ok, err := store.Reserve(ctx, "u-1:POST:/consistency:k-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "u-1:POST:/consistency:k-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation must fail while the first is in flight")

	_, found, err := store.Lookup(ctx, "u-1:POST:/consistency:k-1")
	require.NoError(t, err)
	assert.False(t, found, "pending reservations are not replayable")

	require.NoError(t, store.Complete(ctx, "u-1:POST:/consistency:k-1", []byte(`{"ok":true}`), time.Minute))
	body, found, err := store.Lookup(ctx, "u-1:POST:/consistency:k-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	require.NoError(t, store.Release(ctx, "u-1:POST:/consistency:k-1"))
	ok, err = store.Reserve(ctx, "u-1:POST:/consistency:k-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewRedisIdempotencyStore(ctx, StartRedis(t), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	locker := cache.NewRedisLocker(store.Client(), "")

	release, err := locker.Obtain(ctx, "correction:k", time.Minute)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, "correction:k", time.Minute)
	assert.ErrorIs(t, err, ledger.ErrLockHeld)

	release()
	release, err = locker.Obtain(ctx, "correction:k", time.Minute)
	require.NoError(t, err)
	release()
}
