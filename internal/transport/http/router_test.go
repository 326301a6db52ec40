package httptransport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Amsterdam/mijn-decos-join-api/internal/platform/metrics"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/httputil"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/request"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/testutil"
)

type staticVerifier struct{}

func (staticVerifier) Verify(token string) (domain.Profile, error) {
	if token != "good" {
		return domain.Profile{}, errors.New("bad token")
	}
	return domain.Profile{Type: domain.ProfilePrivate, ID: "999999990"}, nil
}

type echoCases struct{}

func (echoCases) Register(r chi.Router) {
	r.Get("/cases", func(w http.ResponseWriter, r *http.Request) {
		p := requestcontext.Profile(r.Context())
		httputil.WriteContent(w, map[string]string{"type": p.Type.String()})
	})
}

// RouterSuite covers middleware ordering and the public surface. Feature
// behavior is tested in the feature packages.
type RouterSuite struct {
	suite.Suite
	router  http.Handler
	limited int
}

func (s *RouterSuite) SetupTest() {
	s.limited = 0
	reg := prometheus.NewRegistry()
	s.router = NewRouter(Dependencies{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Build:    BuildInfo{GitSHA: "abc123", BuildID: "42", OTAPEnv: "test"},
		Verifier: staticVerifier{},
		Cases:    echoCases{},
		RateLimit: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				s.limited++
				next.ServeHTTP(w, r)
			})
		},
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/status/health"))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.JSONEq(`{"status":"OK","content":{"gitSha":"abc123","buildId":"42","otapEnv":"test"}}`, rr.Body.String())
	s.NotEmpty(rr.Header().Get(request.HeaderRequestID))
	s.Zero(s.limited, "health is not rate limited")
}

func (s *RouterSuite) TestCasesRequireBearerToken() {
	s.Run("missing token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/cases"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("rejected token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewBearerRequest(s.T(), "/cases", "bad"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Zero(s.limited, "unauthenticated requests are rejected before rate limiting")
}

func (s *RouterSuite) TestCasesAuthenticated() {
	req := testutil.NewBearerRequest(s.T(), "/cases", "good")
	req.Header.Set(request.HeaderRequestID, "trace-1")

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("trace-1", rr.Header().Get(request.HeaderRequestID))
	env, content := testutil.UnmarshalEnvelope(s.T(), rr)
	s.Equal(httputil.StatusOK, env.Status)
	s.JSONEq(`{"type":"private"}`, string(content))
	s.Equal(1, s.limited)
}

func (s *RouterSuite) TestUnknownRoute() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/nope"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *RouterSuite) TestMetricsEndpoint() {
	testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/status/health"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Contains(rr.Body.String(), `decosjoin_http_requests_total{method="GET",route="/status/health",status="200"} 1`)
}

func TestNewRouter_WithoutOptionalDependencies(t *testing.T) {
	router := NewRouter(Dependencies{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Verifier: staticVerifier{},
		Cases:    echoCases{},
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = testutil.DoRequest(router, testutil.NewBearerRequest(t, "/cases", "good"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json"))
}
