// Package bucket implements a process-local token bucket limiter. It serves
// traffic while the shared Redis store is unavailable, so limits are per
// instance in that mode.
package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/models"
)

type entry struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

// InMemoryBucketStore keeps one token bucket per key and forgets buckets that
// have been idle for longer than their window.
type InMemoryBucketStore struct {
	mu        sync.Mutex
	buckets   map[string]*entry
	now       func() time.Time
	lastSweep time.Time
}

func New() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow takes one token from the bucket of key. The bucket holds limit tokens
// and refills at limit per window.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now, window)

	e, ok := s.buckets[key]
	if !ok || e.limiter.Burst() != limit || e.window != window {
		e = &entry{
			limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			window:  window,
		}
		s.buckets[key] = e
	}
	e.lastSeen = now

	result := &models.Result{Limit: limit, ResetAt: now.Add(window)}
	if e.limiter.AllowN(now, 1) {
		result.Allowed = true
		result.Remaining = int(e.limiter.TokensAt(now))
		return result, nil
	}

	r := e.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	result.RetryAfter = max(int(math.Ceil(delay.Seconds())), 1)
	return result, nil
}

func (s *InMemoryBucketStore) sweep(now time.Time, window time.Duration) {
	if now.Sub(s.lastSweep) < window {
		return
	}
	s.lastSweep = now
	for key, e := range s.buckets {
		if now.Sub(e.lastSeen) > e.window {
			delete(s.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (s *InMemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
