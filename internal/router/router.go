package router

import (
	"net/http"

	"omezka-shop-api/internal/handler"
	"omezka-shop-api/internal/middleware"
	"omezka-shop-api/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	ShopHandler    *handler.ShopHandler
	AuthHandler    *handler.AuthHandler
	AuctionHandler *handler.AuctionHandler
	AdminHandler   *handler.AdminHandler
	Hub            *ws.Hub
	SessionAuth    func(http.Handler) http.Handler
	AdminAuth      func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Token", "X-Login-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}
	if cfg.AuthHandler != nil {
		r.Post("/api/v1/auth/login", cfg.AuthHandler.Login)
	}
	if cfg.Hub != nil {
		r.Get("/ws/shop", cfg.Hub.Handler)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.SessionAuth != nil {
			r.Use(cfg.SessionAuth)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.AuthHandler != nil {
				r.Post("/auth/logout", cfg.AuthHandler.Logout)
			}
			if cfg.ShopHandler != nil {
				r.Get("/shop", cfg.ShopHandler.GetShop)
				r.Post("/shop/buy/{item_id}", cfg.ShopHandler.BuyItem)
			}
			if cfg.AuctionHandler != nil {
				r.Get("/auction", cfg.AuctionHandler.ListLots)
			}
		})
	})

	// ADMIN routes (login-key guarded, separate from player sessions)
	if cfg.AdminHandler != nil {
		r.Group(func(r chi.Router) {
			if cfg.AdminAuth != nil {
				r.Use(cfg.AdminAuth)
			}
			r.Route("/api/v1/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Post("/rotate", cfg.AdminHandler.ForceRotation)
			})
		})
	}

	return r
}
