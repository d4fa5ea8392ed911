package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	v1 "github.com/gosuda/adminpanel/internal/api/v1"
	"github.com/gosuda/adminpanel/internal/config"
	"github.com/gosuda/adminpanel/internal/observability/metrics"
	"github.com/gosuda/adminpanel/internal/server/middleware"
)

const healthTimeout = 2 * time.Second

// Pinger is a backing store checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Accounts v1.AccountService
	Auth     v1.AuthService
	Verifier middleware.AdminVerifier
	Health   map[string]Pinger
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server with all routes wired. ctx bounds the rate limiter
// cleanup goroutines.
func New(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(metrics.HTTPMetricsMiddleware)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "X-Request-ID",
			middleware.HeaderIDToken, v1.HeaderIdempotencyKey, v1.HeaderAdminSecret,
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      otelhttp.NewHandler(router, "adminpanel"),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for auth endpoints.
	// 2. Admin-only group for everything else.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst))

			authConfig := huma.DefaultConfig("Admin Panel Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, deps.Auth, cfg.Admin.BootstrapSecret)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Verifier))
			r.Use(middleware.RateLimit(ctx, cfg.RateLimit.APIRPS, cfg.RateLimit.APIBurst))

			apiConfig := huma.DefaultConfig("Admin Panel API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, deps.Accounts)
		})
	})

	// Health check (unauthenticated).
	router.Get("/healthz", healthHandler(deps.Health))

	if cfg.Telemetry.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				log.Error().Err(err).Str("dependency", name).Msg("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprintf(w, `{"status":"unavailable","dependency":%q}`, name)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
