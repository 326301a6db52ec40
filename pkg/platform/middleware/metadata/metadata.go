package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

// ClientMetadata stores the client IP and User-Agent in the request context.
// The rate limiter keys anonymous traffic on the IP and the access log
// summarizes the User-Agent. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest returns the first parseable address from
// X-Forwarded-For, then X-Real-IP, then the connection's remote address.
// Unparseable header values are ignored.
func ClientIPFromRequest(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); first != "" {
		if ip, ok := parseIP(first); ok {
			return ip
		}
	}
	if ip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip, ok := parseIP(host); ok {
		return ip
	}
	return "unknown"
}

func parseIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
