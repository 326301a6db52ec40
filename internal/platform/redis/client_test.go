package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/config"
)

func TestNew(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		client, err := New(context.Background(), config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := New(context.Background(), config.RedisConfig{URL: "http://not-redis"})
		assert.ErrorContains(t, err, "parse redis URL")
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := New(context.Background(), config.RedisConfig{
			URL:         "redis://127.0.0.1:1/0",
			DialTimeout: 100 * time.Millisecond,
		})
		assert.ErrorContains(t, err, "redis ping failed")
	})
}
