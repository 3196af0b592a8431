package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lusodesk/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/lusodesk/helpdesk-backend/internal/auth"
	"github.com/lusodesk/helpdesk-backend/internal/config"
	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
)

// RouterDeps collects everything the HTTP surface needs. The WebSocket
// handler is injected as a plain http.Handler so this package does not
// depend on the transport implementation.
type RouterDeps struct {
	Config       *config.Config
	TokenManager *auth.TokenManager

	HealthHandler       *HealthHandler
	AuthHandler         *AuthHandler
	MeHandler           *MeHandler
	TicketHandler       *TicketHandler
	NotificationHandler *NotificationHandler
	CategoryHandler     *CategoryHandler
	AdminHandler        *AdminHandler
	WebSocketHandler    http.Handler

	RequestLogger  func(http.Handler) http.Handler
	RecoveryLogger func(http.Handler) http.Handler
}

// NewRouter assembles the full route tree.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(deps.RequestLogger)
	r.Use(deps.RecoveryLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.WebSocket.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", deps.HealthHandler.HandleHealth)

	// The handshake carries its own token; JWT middleware cannot see a
	// query parameter, so /ws sits outside the protected group.
	r.Get("/ws", deps.WebSocketHandler.ServeHTTP)

	r.Route("/auth", func(r chi.Router) {
		if deps.Config.RateLimit.Enabled {
			authLimiter := mw.NewRateLimiter(mw.RateLimiterConfig{
				RequestsPerSecond: deps.Config.RateLimit.AuthRPS,
				BurstSize:         deps.Config.RateLimit.AuthBurst,
				CleanupInterval:   mw.AuthRateLimiterConfig().CleanupInterval,
				TTL:               mw.AuthRateLimiterConfig().TTL,
			})
			r.Use(authLimiter.Middleware)
		}
		deps.AuthHandler.RegisterRoutes(r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Config.RateLimit.Enabled {
			apiLimiter := mw.NewRateLimiter(mw.RateLimiterConfig{
				RequestsPerSecond: deps.Config.RateLimit.RequestsPerSecond,
				BurstSize:         deps.Config.RateLimit.BurstSize,
				CleanupInterval:   mw.DefaultRateLimiterConfig().CleanupInterval,
				TTL:               mw.DefaultRateLimiterConfig().TTL,
			})
			r.Use(apiLimiter.Middleware)
		}
		r.Use(mw.JWTMiddleware(deps.TokenManager))

		r.Get("/me", deps.MeHandler.HandleGetMe)

		r.Route("/tickets", deps.TicketHandler.RegisterRoutes)
		r.Route("/notifications", deps.NotificationHandler.RegisterRoutes)
		r.Route("/categories", deps.CategoryHandler.RegisterRoutes)
		r.Route("/users", func(r chi.Router) {
			r.Use(mw.RequireRoles(domain.RoleAdmin, domain.RoleAgent))
			deps.AdminHandler.RegisterRoutes(r)
		})
	})

	return r
}
