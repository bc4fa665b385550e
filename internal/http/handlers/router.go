package handlers

import (
	"context"
	"net/http"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	authmw "github.com/diagnosis/visitor-hosts/internal/http/middleware"
	mw "github.com/diagnosis/visitor-hosts/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	// Ready backs /healthz; nil means always healthy.
	Ready          func(context.Context) error
}

// NewRouter builds the ops API: health plus sync status and manual trigger
// for admin console tokens.
func NewRouter(h *SyncHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("hostsync"))
	r.Use(mw.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health(cfg.Ready))

	r.Route("/v1/sync", func(r chi.Router) {
		r.Use(authmw.RequireRole(cfg.JWTSecret, domain.RoleAdmin))
		r.Get("/status", h.Status)
		r.Get("/history", h.History)
		r.Post("/run", h.Run)
	})

	return r
}
