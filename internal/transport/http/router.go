package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carelink/internal/platform/metrics"
	platformmw "carelink/internal/platform/middleware"
	"carelink/pkg/platform/httputil"
	authmw "carelink/pkg/platform/middleware/auth"
	"carelink/pkg/platform/middleware/metadata"
	"carelink/pkg/platform/middleware/request"
	"carelink/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Validator authmw.ActorValidator
	// Revocations is optional; nil skips the denylist check.
	Revocations authmw.TokenRevocationChecker
	Timeout     time.Duration
	Health      map[string]HealthCheck
}

// NewRouter mounts the public probes and the actor-authenticated /v1 API.
// Handlers stay thin and delegate to the engine services.
func NewRouter(deps Deps, handlers ...Registrar) http.Handler {
	if deps.Timeout == 0 {
		deps.Timeout = 15 * time.Second
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(deps.Logger))
	r.Use(platformmw.LatencyMiddleware(deps.Metrics))

	r.Get("/health", healthHandler(deps.Health))
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(api chi.Router) {
		api.Use(request.Timeout(deps.Timeout))
		api.Use(request.ContentTypeJSON)
		api.Use(authmw.RequireActor(deps.Validator, deps.Revocations, deps.Logger))
		for _, h := range handlers {
			h.Register(api)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "up"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
