// Package handler declares the service surface shared by the REST and
// GraphQL transports.
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/pkg/pagination"
)

// InvalidateTopicsHeader lists, comma separated, the cache topics a client
// must drop after a mutation.
const InvalidateTopicsHeader = "X-Invalidate-Topics"

// ProductService is implemented by *service.ProductService.
type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) (pagination.Page[domain.Product], error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, input domain.CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input domain.UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ReviewService is implemented by *service.ReviewService.
type ReviewService interface {
	ListReviews(ctx context.Context, filter domain.ReviewFilter) (pagination.Page[domain.Review], error)
	ListByProduct(ctx context.Context, productID string, filter domain.ReviewFilter) ([]domain.Review, error)
	ListUserReviews(ctx context.Context, userID string, filter domain.ReviewFilter) (pagination.Page[domain.Review], error)
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	CreateReview(ctx context.Context, userID string, input domain.CreateReviewInput) (*domain.Review, error)
	UpdateReview(ctx context.Context, id string, input domain.UpdateReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// UserService is implemented by *service.UserService.
type UserService interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error)
	Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input domain.UpdateProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) (pagination.Page[domain.User], error)
	SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error)
}

// SetInvalidation writes the invalidation header for a mutation that emits
// eventType.
func SetInvalidation(h http.Header, eventType string) {
	if topics := event.InvalidationTopics(eventType); len(topics) > 0 {
		h.Set(InvalidateTopicsHeader, strings.Join(topics, ","))
	}
}
