package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/infra/logging"
)

type loginRequest struct {
	Key string `json:"key"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// tenantView never carries the full credential.
type tenantView struct {
	ID        int64     `json:"id"`
	AdminID   int64     `json:"admin_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

type tenantCreateRequest struct {
	Token   string `json:"token"`
	AdminID int64  `json:"admin_id"`
}

type menuView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type actionView struct {
	Name  string `json:"name"`
	Steps int    `json:"steps"`
}

func toTenantView(t *model.Tenant) tenantView {
	return tenantView{
		ID:        t.ID,
		AdminID:   t.AdminUserID,
		Token:     logging.Redact(t.Token, false),
		CreatedAt: t.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !s.auth.CheckKey(req.Key) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, exp, err := s.auth.Mint(w)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("mint admin token")
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		s.auth.Clear(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTenantList(w http.ResponseWriter, r *http.Request) {
	list, err := s.tenants.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list tenants", http.StatusInternalServerError)
		return
	}
	out := make([]tenantView, 0, len(list))
	for _, t := range list {
		out = append(out, toTenantView(t))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []tenantView `json:"data"`
	}{Data: out})
}

func (s *Server) handleTenantCreate(w http.ResponseWriter, r *http.Request) {
	var req tenantCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	t, err := s.tenants.Register(r.Context(), req.Token, req.AdminID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toTenantView(t))
	case errors.Is(err, domain.ErrAlreadyRegistered):
		http.Error(w, "Bot is already controlled", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid bot token", http.StatusUnprocessableEntity)
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("register tenant")
		http.Error(w, "Failed to register tenant", http.StatusInternalServerError)
	}
}

func (s *Server) handleTenantMenus(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	menus, err := s.tenants.Menus(r.Context(), id)
	if err != nil {
		s.lookupError(w, r, err)
		return
	}
	out := make([]menuView, 0, len(menus))
	for _, m := range menus {
		out = append(out, menuView{Name: m.Name, Description: m.Description})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []menuView `json:"data"`
	}{Data: out})
}

func (s *Server) handleTenantActions(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	actions, err := s.tenants.Actions(r.Context(), id)
	if err != nil {
		s.lookupError(w, r, err)
		return
	}
	out := make([]actionView, 0, len(actions))
	for _, a := range actions {
		out = append(out, actionView{Name: a.Name, Steps: a.Steps})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []actionView `json:"data"`
	}{Data: out})
}

func (s *Server) handleWebhooks(w http.ResponseWriter, r *http.Request) {
	failed, err := s.hooks.RegisterAll(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("register webhooks")
		http.Error(w, "Failed to register webhooks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Failed int `json:"failed"`
	}{Failed: failed})
}

func tenantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Tenant ID must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) lookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	logging.With(r.Context(), s.log).Error().Err(err).Msg("tenant lookup")
	http.Error(w, "Failed to load tenant", http.StatusInternalServerError)
}
