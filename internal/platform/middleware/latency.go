// Package middleware holds HTTP middleware that depends on process-level
// plumbing such as metrics. Generic middleware lives in pkg/platform/middleware.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carelink/internal/platform/metrics"
)

// LatencyMiddleware observes request duration labelled by the chi route
// pattern, so ids in paths do not explode label cardinality.
func LatencyMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.ObserveHTTP(r.Method, route, time.Since(start))
		})
	}
}
