package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. WriteTimeout sits above the router's request
// timeout so handlers can still write their timeout response.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
