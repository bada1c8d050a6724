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
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service handler.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc handler.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// ListReviews handles GET /api/v1/reviews
// @Summary List reviews
// @Description Returns a filtered, sorted page of reviews
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param productId query string false "Product UUID"
// @Param searchText query string false "Case-insensitive comment substring"
// @Param sortBy query string false "Sort field" Enums(createdAt,rating)
// @Param sortOrder query string false "Sort direction" Enums(ASC,DESC)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	filter, err := reviewFilterFromQuery(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	page, err := h.service.ListReviews(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// ListMyReviews handles GET /api/v1/users/me/reviews
func (h *ReviewHandler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	filter, err := reviewFilterFromQuery(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	page, err := h.service.ListUserReviews(r.Context(), middleware.UserIDFromContext(r.Context()), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// CreateReview handles POST /api/v1/reviews. The author is the caller.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReviewInput
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicReviewCreated)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// UpdateReview handles PATCH /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req domain.UpdateReviewInput
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicReviewUpdated)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicReviewDeleted)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: deleted(id.String())})
}
