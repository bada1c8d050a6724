package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stephenstephen/review/internal/cache"
	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/internal/repository"
	"github.com/stephenstephen/review/internal/storage"
	"github.com/stephenstephen/review/pkg/pagination"
	"github.com/stephenstephen/review/pkg/validator"
)

// ProductService implements the product catalog.
type ProductService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	images   storage.Storage
	cache    *cache.Cache
	producer *event.Producer
	logger   *slog.Logger
}

func NewProductService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	images storage.Storage,
	c *cache.Cache,
	producer *event.Producer,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products: products,
		reviews:  reviews,
		images:   images,
		cache:    c,
		producer: producer,
		logger:   logger,
	}
}

// ListProducts returns one page of products whose name contains
// filter.Search, each with its rating aggregate.
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) (pagination.Page[domain.Product], error) {
	page, err := pagination.New(filter.Page, filter.Limit)
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	search := strings.TrimSpace(filter.Search)

	key := cache.Key("list", page.Page, page.Limit, search)
	return cache.Fetch(ctx, s.cache, []string{cache.TopicProducts}, key,
		func(ctx context.Context) (pagination.Page[domain.Product], error) {
			items, total, err := s.products.List(ctx, search, page)
			if err != nil {
				return pagination.Page[domain.Product]{}, fmt.Errorf("list products: %w", err)
			}
			refs := make([]*domain.Product, len(items))
			for i := range items {
				refs[i] = &items[i]
			}
			if err := s.applyStats(ctx, refs...); err != nil {
				return pagination.Page[domain.Product]{}, err
			}
			return pagination.NewPage(items, total, page), nil
		})
}

// GetProduct returns a product with its rating aggregate.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if err := checkID("product", id); err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := s.applyStats(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// applyStats fills the aggregates of every product with one query.
func (s *ProductService) applyStats(ctx context.Context, products ...*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stats, err := s.reviews.RatingStats(ctx, ids)
	if err != nil {
		return fmt.Errorf("product rating stats: %w", err)
	}
	for _, p := range products {
		stats[p.ID].Apply(p)
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, input domain.CreateProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          newID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       normalizeImage(input.Image),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	productMutations.WithLabelValues("create").Inc()

	if err := s.producer.PublishProductCreated(ctx, p); err != nil {
		logPublishError(ctx, s.logger, event.TopicProductCreated, p.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicProductCreated)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", p.ID),
		slog.String("name", p.Name),
	)
	return p, nil
}

// UpdateProduct merges the supplied fields. A replaced image is removed from
// storage once the row is updated; an empty image clears it.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input domain.UpdateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	if input.Empty() {
		return s.GetProduct(ctx, id)
	}
	if err := checkID("product", id); err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	oldImage := p.Image

	input.ApplyTo(p)
	p.Image = normalizeImage(p.Image)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	productMutations.WithLabelValues("update").Inc()

	if input.Image != nil && oldImage != nil && (p.Image == nil || *p.Image != *oldImage) {
		s.removeImage(ctx, p.ID, *oldImage)
	}

	if err := s.producer.PublishProductUpdated(ctx, p); err != nil {
		logPublishError(ctx, s.logger, event.TopicProductUpdated, p.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicProductUpdated)

	if err := s.applyStats(ctx, p); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", p.ID))
	return p, nil
}

// DeleteProduct removes the product, its reviews by cascade, and its image.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID("product", id); err != nil {
		return err
	}
	image, err := s.products.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	productMutations.WithLabelValues("delete").Inc()

	if image != nil && *image != "" {
		s.removeImage(ctx, id, *image)
	}

	if err := s.producer.PublishProductDeleted(ctx, id, image); err != nil {
		logPublishError(ctx, s.logger, event.TopicProductDeleted, id, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicProductDeleted)

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// removeImage deletes a stored image. Failures are logged and counted only.
func (s *ProductService) removeImage(ctx context.Context, productID, key string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		imageCleanupFailures.Inc()
		s.logger.WarnContext(ctx, "failed to remove product image",
			slog.String("product_id", productID),
			slog.String("image", key),
			slog.String("error", err.Error()),
		)
	}
}

func normalizeImage(img *string) *string {
	if img == nil {
		return nil
	}
	v := strings.TrimSpace(*img)
	if v == "" {
		return nil
	}
	return &v
}
