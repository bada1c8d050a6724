package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/internal/handler"
	"github.com/stephenstephen/review/pkg/httputil"
	"github.com/stephenstephen/review/pkg/middleware"
	"github.com/stephenstephen/review/pkg/pagination"
)

// UserHandler serves the auth endpoints and the admin user listing.
type UserHandler struct {
	service handler.UserService
	logger  *slog.Logger
}

func NewUserHandler(svc handler.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// SetActiveRequest is the body of PATCH /api/v1/users/{id}/status.
type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// Register handles POST /api/v1/auth/register
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/auth/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterInput
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicUserRegistered)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// Login handles POST /api/v1/auth/login
// @Summary Exchange credentials for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginInput
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetProfile handles GET /api/v1/auth/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// UpdateProfile handles PATCH /api/v1/auth/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileInput
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicUserUpdated)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	page, err := h.service.ListUsers(r.Context(), domain.UserFilter{
		Search: r.URL.Query().Get("search"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// SetActive handles PATCH /api/v1/users/{id}/status
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req SetActiveRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.SetUserActive(r.Context(), id.String(), *req.IsActive)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicUserStatusChanged)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}
