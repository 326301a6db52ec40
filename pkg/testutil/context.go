package testutil

import (
	"net/http"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/domain"
	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

// WithProfile adds a requester profile to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithProfile(req *http.Request, profileType domain.ProfileType, id string) *http.Request {
	ctx := requestcontext.WithProfile(req.Context(), domain.Profile{Type: profileType, ID: id})
	return req.WithContext(ctx)
}
