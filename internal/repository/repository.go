package repository

import (
	"context"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/pkg/pagination"
)

// ProductRepository defines product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error

	// GetByID returns a NotFound AppError when the product does not exist.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	Exists(ctx context.Context, id string) (bool, error)

	// List returns one page of products whose name contains search, ordered
	// by id, and the total number of matches.
	List(ctx context.Context, search string, page pagination.Params) ([]domain.Product, int, error)

	Update(ctx context.Context, product *domain.Product) error

	// Delete removes the product and returns the image it referenced.
	Delete(ctx context.Context, id string) (image *string, err error)
}

// ReviewRepository defines review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error

	// GetByID returns the review with its product and author summaries.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// List returns one page of reviews matching filter in the filter's order
	// and the total number of matches.
	List(ctx context.Context, filter domain.ReviewFilter, page pagination.Params) ([]domain.Review, int, error)

	Update(ctx context.Context, review *domain.Review) error

	Delete(ctx context.Context, id string) error

	// RatingStats aggregates reviews for the given products in one query.
	// Products without reviews are absent from the result.
	RatingStats(ctx context.Context, productIDs []string) (map[string]domain.RatingStats, error)
}

// UserRepository defines user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, search string, page pagination.Params) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
}
