package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/pkg/pagination"
)

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (pagination.Page[domain.Product], error) {
	path := withQuery("/api/v1/products", q.values())
	return cached(c.cache, TopicProducts, path, func() (pagination.Page[domain.Product], error) {
		var page pagination.Page[domain.Product]
		_, err := c.do(ctx, http.MethodGet, path, nil, &page)
		return page, err
	})
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	path := "/api/v1/products/" + url.PathEscape(id)
	return cached(c.cache, TopicProducts, path, func() (*domain.Product, error) {
		var env envelope[*domain.Product]
		if _, err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
			return nil, err
		}
		return env.Data, nil
	})
}

func (c *Client) ListReviews(ctx context.Context, filter domain.ReviewFilter) (pagination.Page[domain.Review], error) {
	path := withQuery("/api/v1/reviews", reviewValues(filter))
	return cached(c.cache, TopicReviews, path, func() (pagination.Page[domain.Review], error) {
		var page pagination.Page[domain.Review]
		_, err := c.do(ctx, http.MethodGet, path, nil, &page)
		return page, err
	})
}

func (c *Client) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	path := "/api/v1/reviews/" + url.PathEscape(id)
	return cached(c.cache, TopicReviews, path, func() (*domain.Review, error) {
		var env envelope[*domain.Review]
		if _, err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
			return nil, err
		}
		return env.Data, nil
	})
}
