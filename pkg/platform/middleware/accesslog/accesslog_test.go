package accesslog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

const firefox = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/cases", nil)
	ctx := requestcontext.WithRequestID(req.Context(), "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", firefox)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "/cases", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.EqualValues(t, 5, line["bytes"])
	assert.Equal(t, "10.0.0.1", line["client_ip"])
	assert.Equal(t, "Firefox", line["browser"])
	assert.Equal(t, "Linux x86_64", line["os"])
	assert.NotContains(t, buf.String(), "Gecko/20100101")
}

func TestMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		level  string
	}{
		{"server error", "/cases", http.StatusBadGateway, "ERROR"},
		{"health check", "/status/health", http.StatusOK, "DEBUG"},
		{"implicit ok", "/cases", 0, "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
		})
	}
}

func TestParseUserAgent(t *testing.T) {
	assert.Equal(t, Client{}, ParseUserAgent(""))

	bot := ParseUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.True(t, bot.Bot)
}
