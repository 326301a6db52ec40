//go:build integration

package window

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/testutil/containers"
)

func TestRedisStore_FixedWindow(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	now := time.Date(2024, 6, 15, 10, 0, 30, 0, time.UTC)
	store := New(rc.Client, WithPrefix("test"))
	store.now = func() time.Time { return now }

	for i := range 2 {
		res, err := store.Allow(ctx, "profile:private:a", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 1-i, res.Remaining)
		assert.Equal(t, time.Date(2024, 6, 15, 10, 1, 0, 0, time.UTC), res.ResetAt)
	}

	res, err := store.Allow(ctx, "profile:private:a", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30, res.RetryAfter)

	ttl, err := rc.Client.TTL(ctx, "test:profile:private:a:"+strconv.FormatInt(now.Truncate(time.Minute).Unix(), 10)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	t.Run("next window starts fresh", func(t *testing.T) {
		now = now.Add(time.Minute)
		res, err := store.Allow(ctx, "profile:private:a", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}

func TestRedisStore_Unreachable(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	store := New(rc.Client)
	require.NoError(t, rc.Client.Close())

	_, err := store.Allow(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}
