package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server for the validation service. The write timeout
// leaves headroom over the 30s handler timeout so slow adjudications are
// cancelled by the middleware, not cut off mid-response.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
