package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/metrics"
	"github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/models"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/circuit"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/httputil"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

const (
	HeaderStatus    = "X-RateLimit-Status"
	StatusDegraded  = "degraded"
	defaultLimit    = 120
	defaultInterval = time.Minute
)

// Limiter counts one request against a key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Middleware limits requests per requester. The primary (shared) limiter is
// guarded by a circuit breaker; while it is open, or when a check fails, the
// in-memory fallback decides and responses carry X-RateLimit-Status: degraded.
type Middleware struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithLimit sets the number of requests allowed per window.
func WithLimit(limit int, window time.Duration) Option {
	return func(m *Middleware) {
		if limit > 0 {
			m.limit = limit
		}
		if window > 0 {
			m.window = window
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.breaker = b
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// WithDisabled disables rate limiting entirely (local development).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// New creates the middleware. primary may be nil when no shared store is
// configured; every check then goes to fallback.
func New(primary, fallback Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary:  primary,
		fallback: fallback,
		limit:    defaultLimit,
		window:   defaultInterval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.breaker == nil {
		m.breaker = circuit.New("ratelimit")
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimitProfile limits authenticated requests per profile and anonymous
// requests per client IP. Apply after the auth middleware.
func (m *Middleware) RateLimitProfile() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := models.IPKey(requestcontext.ClientIP(ctx))
			if p := requestcontext.Profile(ctx); !p.IsZero() {
				key = models.ProfileKey(p)
			}

			result, degraded := m.check(ctx, key)
			if result == nil {
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set(HeaderStatus, StatusDegraded)
			}
			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check returns nil when neither limiter can answer; the request is then let
// through. degraded is only reported when a configured primary was bypassed.
func (m *Middleware) check(ctx context.Context, key string) (*models.Result, bool) {
	if m.primary != nil && m.breaker.Allow() {
		result, err := m.primary.Allow(ctx, key, m.limit, m.window)
		if err == nil {
			if _, change := m.breaker.RecordSuccess(); change.Closed {
				m.logger.InfoContext(ctx, "rate limit store recovered, circuit closed")
				m.metrics.SetCircuitOpen(false)
			}
			m.metrics.ObserveCheck(metrics.ModePrimary, result.Allowed)
			return result, false
		}

		m.metrics.IncStoreErrors()
		m.logger.ErrorContext(ctx, "failed to check rate limit store",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if _, change := m.breaker.RecordFailure(); change.Opened {
			m.logger.WarnContext(ctx, "rate limit store unhealthy, circuit opened")
			m.metrics.SetCircuitOpen(true)
		}
	}

	if m.fallback == nil {
		return nil, true
	}
	result, err := m.fallback.Allow(ctx, key, m.limit, m.window)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to check fallback rate limit", "error", err)
		return nil, true
	}
	m.metrics.ObserveCheck(metrics.ModeFallback, result.Allowed)
	return result, m.primary != nil
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
