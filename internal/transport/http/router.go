package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/metrics"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/httputil"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/accesslog"
	authmw "github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/auth"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/metadata"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/request"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/requesttime"
)

// BuildInfo is reported by the health endpoint.
type BuildInfo struct {
	GitSHA  string `json:"gitSha"`
	BuildID string `json:"buildId"`
	OTAPEnv string `json:"otapEnv"`
}

// RouteRegistrar mounts a feature's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Dependencies are the collaborators the router wires together. Metrics,
// Gatherer and RateLimit are optional.
type Dependencies struct {
	Logger    *slog.Logger
	Build     BuildInfo
	Verifier  authmw.ProfileVerifier
	Cases     RouteRegistrar
	RateLimit func(http.Handler) http.Handler
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// NewRouter wires the public endpoints. Everything except the health and
// metrics endpoints requires a bearer token.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(accesslog.Middleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.Envelope{
			Status:  httputil.StatusError,
			Error:   "method_not_allowed",
			Message: "method not allowed",
		})
	})

	r.Get("/status/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteContent(w, deps.Build)
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.Verifier, deps.Logger))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit)
		}
		deps.Cases.Register(r)
	})

	return r
}
