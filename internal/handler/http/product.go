package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/internal/handler"
	"github.com/stephenstephen/review/pkg/httputil"
	"github.com/stephenstephen/review/pkg/pagination"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	products handler.ProductService
	reviews  handler.ReviewService
	logger   *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(products handler.ProductService, reviews handler.ReviewService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Description Returns a page of products with rating aggregates
// @Tags products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Case-insensitive name substring"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	p, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	page, err := h.products.ListProducts(r.Context(), domain.ProductFilter{
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

// GetProduct handles GET /api/v1/products/{id}
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.products.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// ListProductReviews handles GET /api/v1/products/{id}/reviews. It returns
// the page of items only, without meta.
func (h *ProductHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	filter, err := reviewFilterFromQuery(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), id.String(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}

// CreateProduct handles POST /api/v1/products
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductInput
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.CreateProduct(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicProductCreated)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PATCH /api/v1/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req domain.UpdateProductInput
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicProductUpdated)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	handler.SetInvalidation(w.Header(), event.TopicProductDeleted)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: deleted(id.String())})
}
