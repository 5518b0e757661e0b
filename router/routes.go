package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mstgnz/gopaysafe/handler"
	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/middle"
	"github.com/mstgnz/gopaysafe/infra/response"
	v1 "github.com/mstgnz/gopaysafe/router/v1"
)

// Dependencies wires the HTTP surface
type Dependencies struct {
	Config      *config.AppConfig
	Services    v1.Services
	Health      *handler.HealthHandler
	RateLimiter *middle.RateLimiter
}

// New builds the root router. /health is served without authentication.
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.TrustedProxyMiddleware(middle.ParseNetworks(deps.Config.TrustedProxies)))
	r.Use(middle.RequestLoggingMiddleware())
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware(middle.ParseNetworks(deps.Config.IPWhitelist)))
	r.Use(middle.StoreMiddleware())
	if deps.RateLimiter != nil {
		r.Use(middle.RateLimitMiddleware(deps.RateLimiter))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middle.StoreIDHeader, middle.RequestIDHeader},
		ExposedHeaders:   []string{middle.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Preflight cache time (second)
	}))

	if deps.Health != nil {
		r.Get("/health", deps.Health.CheckHealth)
	}

	// API routes with authentication
	r.Route("/v1", func(r chi.Router) {
		r.Use(middle.AuthMiddleware(deps.Config.APIKey))
		r.Use(middle.RequestValidationMiddleware())

		v1.Routes(r, deps.Services)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
	})

	return r
}
