package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Amsterdam/mijn-decos-join-api/internal/audit"
	caseshandler "github.com/Amsterdam/mijn-decos-join-api/internal/cases/handler"
	casesservice "github.com/Amsterdam/mijn-decos-join-api/internal/cases/service"
	"github.com/Amsterdam/mijn-decos-join-api/internal/decos"
	decosmetrics "github.com/Amsterdam/mijn-decos-join-api/internal/decos/metrics"
	"github.com/Amsterdam/mijn-decos-join-api/internal/identity"
	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/config"
	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/httpserver"
	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/logger"
	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/metrics"
	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/redis"
	ratelimitmetrics "github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/metrics"
	ratelimitmw "github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/middleware"
	"github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/store/bucket"
	"github.com/Amsterdam/mijn-decos-join-api/internal/ratelimit/store/window"
	httptransport "github.com/Amsterdam/mijn-decos-join-api/internal/transport/http"
	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken"
	"github.com/Amsterdam/mijn-decos-join-api/internal/zaken/casetypes"
	zakenmetrics "github.com/Amsterdam/mijn-decos-join-api/internal/zaken/metrics"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/circuit"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/resourcetoken"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = -1
	shutdownTimeout       = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()

	tokens, err := buildTokenCodec(cfg.Token)
	if err != nil {
		return err
	}

	source, err := buildDecosClient(cfg, tokens, log, reg)
	if err != nil {
		return err
	}

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	publisher, closeSink, err := buildAuditPublisher(ctx, cfg.Audit, log, reg)
	if err != nil {
		return err
	}
	defer closeSink()
	defer publisher.Close()

	limiter, closeRedis, err := buildRateLimiter(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer closeRedis()

	service := casesservice.New(source, tokens,
		casesservice.WithLogger(log),
		casesservice.WithAuditor(publisher),
	)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger: log,
		Build: httptransport.BuildInfo{
			GitSHA:  cfg.GitSHA,
			BuildID: cfg.BuildID,
			OTAPEnv: string(cfg.Env),
		},
		Verifier:  verifier,
		Cases:     caseshandler.New(service, log),
		RateLimit: limiter.RateLimitProfile(),
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
	})

	srv := httpserver.New(cfg.HTTPAddr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting decos join api", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildTokenCodec(cfg config.TokenConfig) (*resourcetoken.Codec, error) {
	key, err := resourcetoken.ParseKey(cfg.Key)
	if err != nil {
		return nil, err
	}
	return resourcetoken.New(key, resourcetoken.WithTTL(cfg.TTL))
}

func buildDecosClient(cfg config.Config, tokens *resourcetoken.Codec, log *slog.Logger, reg prometheus.Registerer) (*decos.Client, error) {
	registry, err := casetypes.NewRegistry(cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	transformer := zaken.NewTransformer(registry, tokens,
		zaken.WithLogger(log),
		zaken.WithMetrics(zakenmetrics.New(reg)),
		zaken.WithFanout(cfg.Decos.Fanout),
	)
	return decos.New(decos.Config{
		Host:     cfg.Decos.Host,
		Username: cfg.Decos.Username,
		Password: cfg.Decos.Password,
		AddressBooks: map[domain.ProfileType][]string{
			domain.ProfilePrivate:    cfg.Decos.BSNBooks,
			domain.ProfileCommercial: cfg.Decos.KVKBooks,
		},
		Timeout:  cfg.Decos.Timeout,
		PageSize: cfg.Decos.PageSize,
		Fanout:   cfg.Decos.Fanout,
	}, transformer, tokens,
		decos.WithLogger(log),
		decos.WithMetrics(decosmetrics.New(reg)),
		decos.WithBreaker(circuit.New("decos")),
	)
}

func buildVerifier(ctx context.Context, cfg config.Config) (*identity.Verifier, error) {
	var keys jwt.Keyfunc
	if cfg.VerifySignature() {
		k, err := identity.NewJWKSKeyfunc(ctx, cfg.OIDC.JWKSURL)
		if err != nil {
			return nil, err
		}
		keys = k
	}
	return identity.New(identity.Config{
		ClientIDDigiD:       cfg.OIDC.ClientIDDigiD,
		ClientIDEHerkenning: cfg.OIDC.ClientIDEHerkenning,
		ClientIDYivi:        cfg.OIDC.ClientIDYivi,
		VerifySignature:     cfg.VerifySignature(),
	}, keys)
}

// buildAuditPublisher produces to Kafka when brokers are configured and to the
// log otherwise. The returned func closes the sink after the publisher drained.
func buildAuditPublisher(ctx context.Context, cfg config.AuditConfig, log *slog.Logger, reg prometheus.Registerer) (*audit.Publisher, func(), error) {
	var sink audit.Sink = audit.NewLogSink(log)
	closeSink := func() {}

	if len(cfg.Brokers) > 0 {
		kafka, err := audit.NewKafkaSink(cfg.Brokers, cfg.Topic)
		if err != nil {
			return nil, nil, err
		}
		if err := kafka.EnsureTopic(ctx, auditTopicPartitions, auditTopicReplication); err != nil {
			kafka.Close()
			return nil, nil, err
		}
		sink = kafka
		closeSink = kafka.Close
	} else {
		log.Warn("no kafka brokers configured, audit events go to the log")
	}

	publisher := audit.NewPublisher(sink,
		audit.WithAsyncBuffer(cfg.BufferSize),
		audit.WithLogger(log),
		audit.WithMetrics(audit.NewMetrics(reg)),
	)
	return publisher, closeSink, nil
}

// buildRateLimiter uses Redis as the shared store when configured. The
// in-memory bucket store always backs it.
func buildRateLimiter(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*ratelimitmw.Middleware, func(), error) {
	closeRedis := func() {}
	var primary ratelimitmw.Limiter

	client, err := redis.New(ctx, cfg.Redis)
	switch {
	case err != nil && cfg.IsProduction():
		return nil, nil, err
	case err != nil:
		log.Warn("redis unavailable, rate limiting is per instance", "error", err)
	case client != nil:
		primary = window.New(client.Client)
		closeRedis = func() { _ = client.Close() }
	}

	limiter := ratelimitmw.New(primary, bucket.New(), log,
		ratelimitmw.WithLimit(cfg.RateLimit.PerMinute, time.Minute),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)),
		ratelimitmw.WithDisabled(cfg.RateLimit.Disabled),
	)
	return limiter, closeRedis, nil
}
