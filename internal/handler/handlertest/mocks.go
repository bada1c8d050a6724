// Package handlertest provides testify mocks of the handler service
// interfaces for transport tests.
package handlertest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/pkg/pagination"
)

type ProductService struct {
	mock.Mock
}

func (m *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) (pagination.Page[domain.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(pagination.Page[domain.Product]), args.Error(1)
}

func (m *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *ProductService) CreateProduct(ctx context.Context, input domain.CreateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *ProductService) UpdateProduct(ctx context.Context, id string, input domain.UpdateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type ReviewService struct {
	mock.Mock
}

func (m *ReviewService) ListReviews(ctx context.Context, filter domain.ReviewFilter) (pagination.Page[domain.Review], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(pagination.Page[domain.Review]), args.Error(1)
}

func (m *ReviewService) ListByProduct(ctx context.Context, productID string, filter domain.ReviewFilter) ([]domain.Review, error) {
	args := m.Called(ctx, productID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *ReviewService) ListUserReviews(ctx context.Context, userID string, filter domain.ReviewFilter) (pagination.Page[domain.Review], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(pagination.Page[domain.Review]), args.Error(1)
}

func (m *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *ReviewService) CreateReview(ctx context.Context, userID string, input domain.CreateReviewInput) (*domain.Review, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *ReviewService) UpdateReview(ctx context.Context, id string, input domain.UpdateReviewInput) (*domain.Review, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *ReviewService) DeleteReview(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type UserService struct {
	mock.Mock
}

func (m *UserService) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *UserService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserService) UpdateProfile(ctx context.Context, userID string, input domain.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserService) ListUsers(ctx context.Context, filter domain.UserFilter) (pagination.Page[domain.User], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(pagination.Page[domain.User]), args.Error(1)
}

func (m *UserService) SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
