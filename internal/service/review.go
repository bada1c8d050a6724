package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stephenstephen/review/internal/cache"
	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/internal/repository"
	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/pagination"
	"github.com/stephenstephen/review/pkg/validator"
)

// ReviewService implements review listing and mutation.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	users    repository.UserRepository
	cache    *cache.Cache
	producer *event.Producer
	logger   *slog.Logger
}

func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	c *cache.Cache,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		users:    users,
		cache:    c,
		producer: producer,
		logger:   logger,
	}
}

// ListReviews returns one page of reviews matching filter, sorted by
// filter.SortBy with ties broken by id ascending.
func (s *ReviewService) ListReviews(ctx context.Context, filter domain.ReviewFilter) (pagination.Page[domain.Review], error) {
	filter.Normalize()
	if err := validator.Validate(filter); err != nil {
		return pagination.Page[domain.Review]{}, err
	}
	page, err := pagination.New(filter.Page, filter.Limit)
	if err != nil {
		return pagination.Page[domain.Review]{}, err
	}

	key := cache.Key("list", filter.ProductID, filter.UserID, filter.SearchText,
		filter.SortBy, filter.SortOrder, page.Page, page.Limit)
	return cache.Fetch(ctx, s.cache, []string{cache.TopicReviews}, key,
		func(ctx context.Context) (pagination.Page[domain.Review], error) {
			items, total, err := s.reviews.List(ctx, filter, page)
			if err != nil {
				return pagination.Page[domain.Review]{}, fmt.Errorf("list reviews: %w", err)
			}
			return pagination.NewPage(items, total, page), nil
		})
}

// ListByProduct is ListReviews scoped to one product, returning items only.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string, filter domain.ReviewFilter) ([]domain.Review, error) {
	if err := checkID("product", productID); err != nil {
		return nil, err
	}
	filter.ProductID = productID
	page, err := s.ListReviews(ctx, filter)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ListUserReviews is ListReviews scoped to one author.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID string, filter domain.ReviewFilter) (pagination.Page[domain.Review], error) {
	filter.UserID = userID
	return s.ListReviews(ctx, filter)
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	if err := checkID("review", id); err != nil {
		return nil, err
	}
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// CreateReview records a review by userID. The product must exist.
// checkAuthorActive rejects authors deactivated after their token was issued.
func (s *ReviewService) checkAuthorActive(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.Code(err) == "NOT_FOUND" {
			return apperrors.Unauthorized("account no longer exists")
		}
		return fmt.Errorf("load review author: %w", err)
	}
	if !u.IsActive {
		return apperrors.Forbidden("account is deactivated")
	}
	return nil
}

func (s *ReviewService) CreateReview(ctx context.Context, userID string, input domain.CreateReviewInput) (*domain.Review, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	if err := s.checkAuthorActive(ctx, userID); err != nil {
		return nil, err
	}

	exists, err := s.products.Exists(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("product", input.ProductID)
	}

	now := time.Now().UTC()
	r := &domain.Review{
		ID:        newID(),
		Rating:    input.Rating,
		Comment:   input.Comment,
		ProductID: input.ProductID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	reviewsCreated.Inc()
	reviewRatings.Observe(float64(r.Rating))

	if err := s.producer.PublishReviewCreated(ctx, r); err != nil {
		logPublishError(ctx, s.logger, event.TopicReviewCreated, r.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicReviewCreated)

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", r.ID),
		slog.String("product_id", r.ProductID),
		slog.String("user_id", r.UserID),
		slog.Int("rating", r.Rating),
	)

	// The stored row carries the product and author summaries.
	full, err := s.reviews.GetByID(ctx, r.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to reload created review",
			slog.String("review_id", r.ID),
			slog.String("error", err.Error()),
		)
		return r, nil
	}
	return full, nil
}

// UpdateReview merges rating and comment.
func (s *ReviewService) UpdateReview(ctx context.Context, id string, input domain.UpdateReviewInput) (*domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	r, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return r, nil
	}

	input.ApplyTo(r)
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if err := s.producer.PublishReviewUpdated(ctx, r); err != nil {
		logPublishError(ctx, s.logger, event.TopicReviewUpdated, r.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicReviewUpdated)

	s.logger.InfoContext(ctx, "review updated", slog.String("review_id", r.ID))
	return r, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, id string) error {
	r, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	reviewsDeleted.Inc()

	if err := s.producer.PublishReviewDeleted(ctx, r); err != nil {
		logPublishError(ctx, s.logger, event.TopicReviewDeleted, r.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicReviewDeleted)

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("product_id", r.ProductID),
	)
	return nil
}
