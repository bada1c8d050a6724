package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stephenstephen/review/internal/domain"
)

func (c *Client) CreateProduct(ctx context.Context, in domain.CreateProductInput) (*domain.Product, Topics, error) {
	var env envelope[*domain.Product]
	topics, err := c.mutate(ctx, http.MethodPost, "/api/v1/products", in, &env, productCreatedTopics)
	if err != nil {
		return nil, nil, err
	}
	return env.Data, topics, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in domain.UpdateProductInput) (*domain.Product, Topics, error) {
	var env envelope[*domain.Product]
	topics, err := c.mutate(ctx, http.MethodPatch, "/api/v1/products/"+url.PathEscape(id), in, &env, productChangedTopics)
	if err != nil {
		return nil, nil, err
	}
	return env.Data, topics, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) (Topics, error) {
	return c.mutate(ctx, http.MethodDelete, "/api/v1/products/"+url.PathEscape(id), nil, nil, productChangedTopics)
}

func (c *Client) CreateReview(ctx context.Context, in domain.CreateReviewInput) (*domain.Review, Topics, error) {
	var env envelope[*domain.Review]
	topics, err := c.mutate(ctx, http.MethodPost, "/api/v1/reviews", in, &env, reviewChangedTopics)
	if err != nil {
		return nil, nil, err
	}
	return env.Data, topics, nil
}

func (c *Client) UpdateReview(ctx context.Context, id string, in domain.UpdateReviewInput) (*domain.Review, Topics, error) {
	var env envelope[*domain.Review]
	topics, err := c.mutate(ctx, http.MethodPatch, "/api/v1/reviews/"+url.PathEscape(id), in, &env, reviewChangedTopics)
	if err != nil {
		return nil, nil, err
	}
	return env.Data, topics, nil
}

func (c *Client) DeleteReview(ctx context.Context, id string) (Topics, error) {
	return c.mutate(ctx, http.MethodDelete, "/api/v1/reviews/"+url.PathEscape(id), nil, nil, reviewChangedTopics)
}

// Login exchanges credentials for a token and switches the client to it.
// The whole cache belongs to the previous identity, so every topic is
// reported.
func (c *Client) Login(ctx context.Context, in domain.LoginInput) (*domain.AuthResult, Topics, error) {
	var env envelope[*domain.AuthResult]
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", in, &env); err != nil {
		return nil, nil, err
	}
	if env.Data == nil || env.Data.AccessToken == "" {
		return nil, nil, fmt.Errorf("login response carried no access token")
	}
	c.SetToken(env.Data.AccessToken)
	return env.Data, sessionTopics, nil
}
