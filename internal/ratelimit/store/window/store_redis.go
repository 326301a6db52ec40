// Package window implements a fixed-window request counter in Redis, shared
// by every instance of the service.
package window

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/models"
)

const defaultPrefix = "decosjoin:ratelimit"

// RedisStore counts requests per key and window with INCR and EXPIRE in one
// transaction.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

type Option func(*RedisStore)

// WithPrefix namespaces the keys.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

func New(client redis.UniversalClient, opts ...Option) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow counts one request for key in the current window.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	now := s.now()
	start := now.Truncate(window)
	resetAt := start.Add(window)
	redisKey := fmt.Sprintf("%s:%s:%d", s.prefix, key, start.Unix())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.Expire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count request in redis: %w", err)
	}

	count := int(incr.Val())
	result := &models.Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = int(math.Ceil(resetAt.Sub(now).Seconds()))
	}
	return result, nil
}
