// Package httpapi assembles the HTTP surface: middleware, feature handlers,
// health, and metrics.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventhandler "tekfest/internal/event/handler"
	judginghandler "tekfest/internal/judging/handler"
	registrationhandler "tekfest/internal/registration/handler"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/httputil"
	"tekfest/pkg/requestcontext"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts. Nil health checkers are skipped,
// matching the optional Redis/Kafka configuration.
type Deps struct {
	Events       *eventhandler.Handler
	Registration *registrationhandler.Handler
	Judging      *judginghandler.Handler
	Logger       *httplog.Logger
	Health       map[string]HealthChecker
	// ValidationMiddleware wraps the wizard's validation endpoints only;
	// main uses it for the round-trip timeout and rate limiting.
	ValidationMiddleware []func(http.Handler) http.Handler
}

// NewRouter wires middleware and mounts every feature under /api/v1.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(requestContextMiddleware)

	r.Route("/api/v1", func(api chi.Router) {
		deps.Events.Register(api)
		deps.Registration.Register(api, deps.ValidationMiddleware...)
		deps.Judging.Register(api)
	})

	r.Get("/healthz", handleHealth(deps.Health))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// requestContextMiddleware copies transport-level identifiers into the
// service-facing context accessors.
func requestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, middleware.GetReqID(ctx))
		if raw := r.Header.Get("X-Actor-ID"); raw != "" {
			if actorID, err := id.ParseAccountID(raw); err == nil {
				ctx = requestcontext.WithActorID(ctx, actorID)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
