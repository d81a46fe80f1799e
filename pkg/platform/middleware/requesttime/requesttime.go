// Package requesttime pins one "now" per request so created_at and
// responded_at stamps and audit timestamps agree.
package requesttime

import (
	"net/http"
	"time"

	"carelink/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
