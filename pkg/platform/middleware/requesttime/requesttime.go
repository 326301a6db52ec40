// Package requesttime captures one "now" per request so every date-relative
// decision in a request (token expiry, rental titles) agrees.
package requesttime

import (
	"net/http"
	"time"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
