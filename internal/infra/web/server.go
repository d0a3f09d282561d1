package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/infra/logging"
	"telegram-menu-builder/internal/usecase"
)

// Server is the operator-facing admin API under /api/v1.
type Server struct {
	tenants usecase.TenantUseCase
	hooks   usecase.WebhookUseCase
	auth    *AuthManager
	log     *zerolog.Logger
}

func NewServer(tenants usecase.TenantUseCase, hooks usecase.WebhookUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{
		tenants: tenants,
		hooks:   hooks,
		auth:    auth,
		log:     logger,
	}
}

// Routes attaches the admin API to r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/login", s.handleLogin)
		api.Post("/logout", s.handleLogout)

		api.Group(func(p chi.Router) {
			p.Use(s.authMiddleware)
			p.Get("/tenants", s.handleTenantList)
			p.Post("/tenants", s.handleTenantCreate)
			p.Get("/tenants/{id}/menus", s.handleTenantMenus)
			p.Get("/tenants/{id}/actions", s.handleTenantActions)
			p.Post("/webhooks", s.handleWebhooks)
		})
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			logging.With(r.Context(), s.log).Warn().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
