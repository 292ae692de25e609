package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemoryCache_RoundTripsStructs(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", sample{Name: "x", Score: 0.5}, 0))
	var got sample
	require.NoError(t, mc.Get(ctx, "a", &got))
	assert.Equal(t, sample{Name: "x", Score: 0.5}, got)

	var s string
	require.NoError(t, mc.Set(ctx, "b", "plain", 0))
	require.NoError(t, mc.Get(ctx, "b", &s))
	assert.Equal(t, "plain", s)

	assert.ErrorIs(t, mc.Get(ctx, "missing", &s), ErrCacheMiss)

	typed, err := MGetTyped[sample](ctx, mc, "a", "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string]sample{"a": {Name: "x", Score: 0.5}}, typed)
}

func TestMemoryCache_ExpiryAndEviction(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryCleanup(0))
	defer mc.Close()
	now := time.Now()
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "old", 1, time.Second))
	now = now.Add(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "new", 2, time.Hour))
	now = now.Add(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "third", 3, time.Hour))
	assert.Equal(t, 2, mc.Len())
	ok, _ := mc.Exists(ctx, "old")
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	ok, _ = mc.Exists(ctx, "new", "third")
	assert.False(t, ok)
}

func TestMemoryCache_IncrementLockPattern(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	n, err := mc.Increment(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, _ = mc.Increment(ctx, "hits")
	assert.Equal(t, int64(2), n)

	ok, _ := mc.TryLock(ctx, "job", time.Minute)
	assert.True(t, ok)
	ok, _ = mc.TryLock(ctx, "job", time.Minute)
	assert.False(t, ok)
	require.NoError(t, mc.Unlock(ctx, "job"))
	ok, _ = mc.TryLock(ctx, "job", time.Minute)
	assert.True(t, ok)

	require.NoError(t, mc.MSet(ctx, map[string]interface{}{"model:a": 1, "model:b": 2}, 0))
	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("model:")))
	ok, _ = mc.Exists(ctx, "model:a", "model:b")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "hits")
	assert.True(t, ok)
}

func TestLayeredCache_FillsL1FromRemote(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote)
	defer lc.Close()

	require.NoError(t, remote.Set(ctx, "k", sample{Name: "r"}, 0))
	var got sample
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "r", got.Name)

	require.NoError(t, remote.Delete(ctx, "k"))
	got = sample{}
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "r", got.Name)

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)

	require.NoError(t, lc.Set(ctx, "w", sample{Name: "both"}, time.Hour))
	var fromRemote sample
	require.NoError(t, remote.Get(ctx, "w", &fromRemote))
	assert.Equal(t, "both", fromRemote.Name)
}
