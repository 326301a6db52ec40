package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults for this service. The write timeout
// leaves room for a full case listing including workflow lookups.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
