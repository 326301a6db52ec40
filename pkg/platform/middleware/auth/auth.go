package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	dErrors "github.com/Amsterdam/mijn-decos-join-api/pkg/domain-errors"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/httputil"
	request "github.com/Amsterdam/mijn-decos-join-api/pkg/platform/middleware/request"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

// ProfileVerifier validates an ID token and resolves the requester it identifies.
type ProfileVerifier interface {
	Verify(token string) (domain.Profile, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved profile in the request context.
func RequireAuth(verifier ProfileVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			profile, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					err = dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
				}
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithProfile(ctx, profile)))
		})
	}
}
