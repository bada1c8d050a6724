package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/handler"
	"github.com/stephenstephen/review/internal/handler/handlertest"
	"github.com/stephenstephen/review/internal/storage/memory"
	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/health"
	"github.com/stephenstephen/review/pkg/httputil"
	"github.com/stephenstephen/review/pkg/middleware"
	"github.com/stephenstephen/review/pkg/pagination"
)

const (
	productID = "0190f3c2-7a4e-7b2c-9d1e-3f5a6b7c8d90"
	reviewID  = "0190f3c2-7a4e-7b2c-9d1e-3f5a6b7c8d91"
	userID    = "0190f3c2-7a4e-7b2c-9d1e-3f5a6b7c8d92"
	adminID   = "0190f3c2-7a4e-7b2c-9d1e-3f5a6b7c8d93"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testServer struct {
	handler  http.Handler
	products *handlertest.ProductService
	reviews  *handlertest.ReviewService
	users    *handlertest.UserService
	images   *memory.Storage
}

func stubTokens(token string) (*middleware.Claims, error) {
	switch token {
	case "admin-token":
		return &middleware.Claims{UserID: adminID, Email: "admin@example.com", Role: domain.RoleAdmin}, nil
	case "user-token":
		return &middleware.Claims{UserID: userID, Email: "user@example.com", Role: domain.RoleUser}, nil
	}
	return nil, errors.New("bad token")
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()
	s := &testServer{
		products: new(handlertest.ProductService),
		reviews:  new(handlertest.ReviewService),
		users:    new(handlertest.UserService),
		images:   memory.New("http://localhost:8010"),
	}
	cfg := RouterConfig{
		ServiceName:        "review-service",
		Products:           s.products,
		Reviews:            s.reviews,
		Users:              s.users,
		Images:             s.images,
		Tokens:             stubTokens,
		Health:             health.NewHandler(),
		CORS:               middleware.DefaultCORSConfig(),
		AuthRateLimitRPS:   100,
		AuthRateLimitBurst: 100,
		UploadMaxBytes:     1 << 20,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(&cfg)
	}
	s.handler = NewRouter(cfg)
	t.Cleanup(func() {
		s.products.AssertExpectations(t)
		s.reviews.AssertExpectations(t)
		s.users.AssertExpectations(t)
	})
	return s
}

func (s *testServer) do(method, target, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func sampleProduct() *domain.Product {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Product{ID: productID, Name: "Espresso Grinder", Price: 129.9, CreatedAt: now, UpdatedAt: now}
}

func sampleReview() *domain.Review {
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	return &domain.Review{ID: reviewID, Rating: 4, Comment: "solid", ProductID: productID, UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// =============================================================================
// Products
// =============================================================================

func TestListProducts_PublicWithQuery(t *testing.T) {
	s := newTestServer(t)
	filter := domain.ProductFilter{Search: "grind", Page: 2, Limit: 5}
	page := pagination.NewPage([]domain.Product{*sampleProduct()}, 6, pagination.Params{Page: 2, Limit: 5})
	s.products.On("ListProducts", mock.Anything, filter).Return(page, nil)

	rec := s.do(http.MethodGet, "/api/v1/products?page=2&limit=5&search=grind", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got pagination.Page[domain.Product]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 6, got.Meta.TotalItems)
	assert.Equal(t, 2, got.Meta.TotalPages)
}

func TestListProducts_Defaults(t *testing.T) {
	s := newTestServer(t)
	s.products.On("ListProducts", mock.Anything, domain.ProductFilter{Page: 1, Limit: 10}).
		Return(pagination.NewPage([]domain.Product{}, 0, pagination.DefaultParams()), nil)

	rec := s.do(http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProducts_InvalidPagination(t *testing.T) {
	s := newTestServer(t)
	for _, q := range []string{"page=0", "page=abc", "limit=101"} {
		rec := s.do(http.MethodGet, "/api/v1/products?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	s.products.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t)
	s.products.On("GetProduct", mock.Anything, productID).Return(sampleProduct(), nil)

	rec := s.do(http.MethodGet, "/api/v1/products/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Espresso Grinder")
}

func TestGetProduct_NotFoundAndBadID(t *testing.T) {
	s := newTestServer(t)
	s.products.On("GetProduct", mock.Anything, productID).Return(nil, apperrors.NotFound("product", productID))

	rec := s.do(http.MethodGet, "/api/v1/products/"+productID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/products/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", errorCode(t, rec))
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	body := domain.CreateProductInput{Name: "Kettle", Price: 30}

	rec := s.do(http.MethodPost, "/api/v1/products", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/products", "user-token", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/products", "forged", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestCreateProduct_Admin(t *testing.T) {
	s := newTestServer(t)
	in := domain.CreateProductInput{Name: "Kettle", Price: 30}
	s.products.On("CreateProduct", mock.Anything, in).Return(sampleProduct(), nil)

	rec := s.do(http.MethodPost, "/api/v1/products", "admin-token", in)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "products", rec.Header().Get(handler.InvalidateTopicsHeader))
}

func TestCreateProduct_ValidationError(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/products", "admin-token", map[string]any{"price": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "name")
	assert.Contains(t, resp.Error.Fields, "price")
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	s := newTestServer(t)
	name := "Burr Grinder"
	in := domain.UpdateProductInput{Name: &name}
	s.products.On("UpdateProduct", mock.Anything, productID, in).Return(sampleProduct(), nil)
	s.products.On("DeleteProduct", mock.Anything, productID).Return(nil)

	rec := s.do(http.MethodPatch, "/api/v1/products/"+productID, "admin-token", in)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "products,reviews", rec.Header().Get(handler.InvalidateTopicsHeader))

	rec = s.do(http.MethodDelete, "/api/v1/products/"+productID, "admin-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "products,reviews", rec.Header().Get(handler.InvalidateTopicsHeader))
	assert.Contains(t, rec.Body.String(), `"status":"deleted"`)
}

func TestDeleteProduct_ForbiddenForUser(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodDelete, "/api/v1/products/"+productID, "user-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get(handler.InvalidateTopicsHeader))
	s.products.AssertNotCalled(t, "DeleteProduct", mock.Anything, mock.Anything)
}

func TestListProductReviews_Public(t *testing.T) {
	s := newTestServer(t)
	filter := domain.ReviewFilter{SortBy: "rating", SortOrder: "ASC", Page: 1, Limit: 10}
	s.reviews.On("ListByProduct", mock.Anything, productID, filter).Return([]domain.Review{*sampleReview()}, nil)

	rec := s.do(http.MethodGet, "/api/v1/products/"+productID+"/reviews?sortBy=rating&sortOrder=ASC", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []domain.Review `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 1)
}

// =============================================================================
// Reviews
// =============================================================================

func TestListReviews_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/v1/reviews", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	s.reviews.AssertNotCalled(t, "ListReviews", mock.Anything, mock.Anything)
}

func TestListReviews_PassesFilter(t *testing.T) {
	s := newTestServer(t)
	filter := domain.ReviewFilter{
		ProductID:  productID,
		SearchText: "solid",
		SortBy:     "rating",
		SortOrder:  "DESC",
		Page:       3,
		Limit:      2,
	}
	s.reviews.On("ListReviews", mock.Anything, filter).
		Return(pagination.NewPage([]domain.Review{}, 4, pagination.Params{Page: 3, Limit: 2}), nil)

	rec := s.do(http.MethodGet, "/api/v1/reviews?productId="+productID+"&searchText=solid&sortBy=rating&sortOrder=DESC&page=3&limit=2", "user-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestListReviews_ServiceValidation(t *testing.T) {
	s := newTestServer(t)
	s.reviews.On("ListReviews", mock.Anything, mock.Anything).
		Return(pagination.Page[domain.Review]{}, apperrors.Validation("sortBy must be one of createdAt rating"))

	rec := s.do(http.MethodGet, "/api/v1/reviews?sortBy=id", "user-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestCreateReview_UsesCaller(t *testing.T) {
	s := newTestServer(t)
	in := domain.CreateReviewInput{ProductID: productID, Rating: 4, Comment: "solid"}
	s.reviews.On("CreateReview", mock.Anything, userID, in).Return(sampleReview(), nil)

	rec := s.do(http.MethodPost, "/api/v1/reviews", "user-token", in)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "reviews,products", rec.Header().Get(handler.InvalidateTopicsHeader))
}

func TestCreateReview_UnknownProduct(t *testing.T) {
	s := newTestServer(t)
	in := domain.CreateReviewInput{ProductID: productID, Rating: 4, Comment: "solid"}
	s.reviews.On("CreateReview", mock.Anything, userID, in).Return(nil, apperrors.NotFound("product", productID))

	rec := s.do(http.MethodPost, "/api/v1/reviews", "user-token", in)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get(handler.InvalidateTopicsHeader))
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/v1/reviews", "user-token",
		domain.CreateReviewInput{ProductID: productID, Rating: 6, Comment: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.reviews.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAndRemoveReview_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	rating := 2
	in := domain.UpdateReviewInput{Rating: &rating}

	rec := s.do(http.MethodPatch, "/api/v1/reviews/"+reviewID, "user-token", in)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/api/v1/reviews/"+reviewID, "user-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	s.reviews.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything, mock.Anything)
	s.reviews.AssertNotCalled(t, "DeleteReview", mock.Anything, mock.Anything)

	s.reviews.On("UpdateReview", mock.Anything, reviewID, in).Return(sampleReview(), nil)
	s.reviews.On("DeleteReview", mock.Anything, reviewID).Return(nil)

	rec = s.do(http.MethodPatch, "/api/v1/reviews/"+reviewID, "admin-token", in)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodDelete, "/api/v1/reviews/"+reviewID, "admin-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reviews,products", rec.Header().Get(handler.InvalidateTopicsHeader))
}

func TestGetReview(t *testing.T) {
	s := newTestServer(t)
	s.reviews.On("GetReview", mock.Anything, reviewID).Return(sampleReview(), nil)

	rec := s.do(http.MethodGet, "/api/v1/reviews/"+reviewID, "user-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListMyReviews(t *testing.T) {
	s := newTestServer(t)
	s.reviews.On("ListUserReviews", mock.Anything, userID, domain.ReviewFilter{Page: 1, Limit: 10}).
		Return(pagination.NewPage([]domain.Review{*sampleReview()}, 1, pagination.DefaultParams()), nil)

	rec := s.do(http.MethodGet, "/api/v1/users/me/reviews", "user-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/users/me/reviews", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// Auth and users
// =============================================================================

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	reg := domain.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"}
	result := &domain.AuthResult{User: &domain.User{ID: userID, Username: "alice"}, AccessToken: "tok"}
	s.users.On("Register", mock.Anything, reg).Return(result, nil)
	s.users.On("Login", mock.Anything, domain.LoginInput{Email: reg.Email, Password: "wrong-pass"}).
		Return(nil, apperrors.Unauthorized("invalid email or password"))

	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", reg)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"tok"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", domain.LoginInput{Email: reg.Email, Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	s := newTestServer(t, func(c *RouterConfig) {
		c.AuthRateLimitRPS = 0.001
		c.AuthRateLimitBurst = 1
	})
	in := domain.LoginInput{Email: "alice@example.com", Password: "correct-horse"}
	s.users.On("Login", mock.Anything, in).Return(&domain.AuthResult{AccessToken: "tok"}, nil).Once()

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/auth/login", "", in).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/api/v1/auth/login", "", in).Code)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	username := "alice2"
	in := domain.UpdateProfileInput{Username: &username}
	s.users.On("GetProfile", mock.Anything, userID).Return(&domain.User{ID: userID}, nil)
	s.users.On("UpdateProfile", mock.Anything, userID, in).Return(&domain.User{ID: userID, Username: username}, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/auth/profile", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/auth/profile", "user-token", nil).Code)

	rec := s.do(http.MethodPatch, "/api/v1/auth/profile", "user-token", in)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "users,reviews", rec.Header().Get(handler.InvalidateTopicsHeader))
}

func TestAdminUsers(t *testing.T) {
	s := newTestServer(t)
	s.users.On("ListUsers", mock.Anything, domain.UserFilter{Search: "ali", Page: 1, Limit: 10}).
		Return(pagination.NewPage([]domain.User{{ID: userID}}, 1, pagination.DefaultParams()), nil)
	s.users.On("SetUserActive", mock.Anything, userID, false).Return(&domain.User{ID: userID}, nil)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/users", "user-token", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/users?search=ali", "admin-token", nil).Code)

	rec := s.do(http.MethodPatch, "/api/v1/users/"+userID+"/status", "admin-token", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/api/v1/users/"+userID+"/status", "admin-token", map[string]any{"isActive": false})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "users", rec.Header().Get(handler.InvalidateTopicsHeader))
}

// =============================================================================
// Uploads
// =============================================================================

func multipartBody(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *testServer) upload(t *testing.T, token, name string, data []byte) *httptest.ResponseRecorder {
	body, ct := multipartBody(t, name, data)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", ct)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestUpload_StoresAndServesImage(t *testing.T) {
	s := newTestServer(t)
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)

	rec := s.upload(t, "admin-token", "Espresso Grinder.png", data)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, strings.HasSuffix(resp.Data.Filename, "-espresso-grinder.png"))
	assert.Equal(t, "http://localhost:8010/uploads/"+resp.Data.Filename, resp.Data.URL)
	assert.True(t, s.images.Has(resp.Data.Filename))

	rec = s.do(http.MethodGet, "/uploads/"+resp.Data.Filename, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, data, rec.Body.Bytes())
}

func TestUpload_RejectsNonImage(t *testing.T) {
	s := newTestServer(t)
	rec := s.upload(t, "admin-token", "notes.png", []byte("just some text pretending to be a picture"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))
}

func TestUpload_TooLarge(t *testing.T) {
	s := newTestServer(t, func(c *RouterConfig) { c.UploadMaxBytes = 16 })
	rec := s.upload(t, "admin-token", "big.png", append(append([]byte{}, pngHeader...), make([]byte, 64)...))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	rec := s.upload(t, "user-token", "a.png", pngHeader)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServeUpload_Missing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/uploads/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = s.do(http.MethodGet, "/uploads/.hidden", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// Operational endpoints
// =============================================================================

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", "", nil).Code)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	// httptest requests come from 192.0.2.1, outside the empty allow list.
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/debug/pprof/", "", nil).Code)
}

func TestGraphQLMounted(t *testing.T) {
	s := newTestServer(t, func(c *RouterConfig) {
		c.GraphQL = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := middleware.ClaimsFromContext(r.Context())
			httputil.WriteJSON(w, http.StatusOK, map[string]bool{"authenticated": ok})
		})
	})
	rec := s.do(http.MethodPost, "/graphql", "user-token", map[string]string{"query": "{ me { id } }"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
}
