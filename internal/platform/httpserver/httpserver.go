package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults suited to governance traffic:
// header reads are bounded so a slow client cannot hold a connection open
// while approval or consent state is pending.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}
