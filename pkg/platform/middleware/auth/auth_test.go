package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

type verifierFunc func(token string) (domain.Profile, error)

func (f verifierFunc) Verify(token string) (domain.Profile, error) { return f(token) }

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := verifierFunc(func(token string) (domain.Profile, error) {
		switch token {
		case "good":
			return domain.Profile{ID: "111222333", Type: domain.ProfilePrivate}, nil
		case "broken":
			return domain.Profile{}, errors.New("jwks unavailable")
		default:
			return domain.Profile{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
	})

	var seen domain.Profile
	h := RequireAuth(verifier, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Profile(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/cases", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("valid token stores profile", func(t *testing.T) {
		rr := serve("Bearer good")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, domain.Profile{ID: "111222333", Type: domain.ProfilePrivate}, seen)
	})

	for name, header := range map[string]string{
		"missing header":   "",
		"basic scheme":     "Basic dXNlcjpwYXNz",
		"expired token":    "Bearer expired",
		"verifier failure": "Bearer broken",
	} {
		t.Run(name, func(t *testing.T) {
			rr := serve(header)
			require.Equal(t, http.StatusUnauthorized, rr.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, "ERROR", body["status"])
			assert.Equal(t, string(dErrors.CodeUnauthorized), body["error"])
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	token, ok = BearerToken("bearer  xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	_, ok = BearerToken("Basic dXNlcjpwYXNz")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer")
	assert.False(t, ok)
}
