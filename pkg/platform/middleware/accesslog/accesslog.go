// Package accesslog writes one structured log line per request.
package accesslog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

// Client summarizes a User-Agent header.
type Client struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// ParseUserAgent reduces a raw User-Agent to browser name and OS. The raw
// header is not logged.
func ParseUserAgent(raw string) Client {
	if raw == "" {
		return Client{}
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	return Client{
		Browser: name,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// Middleware logs method, route, status and latency. Health checks are logged
// at debug level. Apply after the metadata middleware.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			ctx := r.Context()
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			client := ParseUserAgent(requestcontext.UserAgent(ctx))

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case r.URL.Path == "/status/health":
				level = slog.LevelDebug
			}

			logger.LogAttrs(ctx, level, "request completed",
				slog.String("request_id", requestcontext.RequestID(ctx)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("client_ip", requestcontext.ClientIP(ctx)),
				slog.String("browser", client.Browser),
				slog.String("os", client.OS),
				slog.Bool("bot", client.Bot),
			)
		})
	}
}
