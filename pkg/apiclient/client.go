// Package apiclient is a Go client for the review service REST API. Query
// results are cached per topic; every mutation invalidates the topics the
// server reports for it before returning.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/pkg/httpclient"
)

// InvalidateTopicsHeader carries the topics a mutation invalidated.
const InvalidateTopicsHeader = "X-Invalidate-Topics"

const serviceName = "review-api"

// Doer executes a single HTTP request. httpclient.Client and
// httpclient.CircuitBreakerClient both satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Topics lists the cache topics a mutation invalidated.
type Topics []string

// Static topic sets, used when a response lacks the header.
var (
	productCreatedTopics = Topics{TopicProducts}
	productChangedTopics = Topics{TopicProducts, TopicReviews}
	reviewChangedTopics  = Topics{TopicReviews, TopicProducts}
	sessionTopics        = Topics{TopicProducts, TopicReviews, TopicUsers}
)

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	doer    Doer
	cache   *QueryCache
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, doer Doer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		cache:   NewQueryCache(),
		logger:  logger,
	}
}

// NewDefault creates a client over the pooled HTTP client behind a circuit
// breaker.
func NewDefault(baseURL string, logger *slog.Logger) *Client {
	return New(baseURL, newDoer(logger), logger)
}

// newDoer sends every request exactly once.
func newDoer(logger *slog.Logger) Doer {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig(serviceName),
		logger,
	)
}

// Cache exposes the query cache.
func (c *Client) Cache() *QueryCache { return c.cache }

// SetToken sets the bearer token sent with every request. Cached results
// belong to the previous identity and are dropped.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.cache.Clear()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ProductQuery selects a page of products.
type ProductQuery struct {
	Page   int
	Limit  int
	Search string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "search", q.Search)
	return v
}

func reviewValues(f domain.ReviewFilter) url.Values {
	v := url.Values{}
	setString(v, "productId", f.ProductID)
	setString(v, "userId", f.UserID)
	setString(v, "searchText", f.SearchText)
	setString(v, "sortBy", f.SortBy)
	setString(v, "sortOrder", f.SortOrder)
	setInt(v, "page", f.Page)
	setInt(v, "limit", f.Limit)
	return v
}

func setInt(v url.Values, key string, n int) {
	if n != 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// do sends one request and decodes a 2xx body into out when out is not nil.
// Non-2xx responses become AppErrors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return resp.Header, nil
}

// mutate runs a mutation and invalidates the topics it reports, falling back
// to static when the header is absent.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any, static Topics) (Topics, error) {
	h, err := c.do(ctx, method, path, body, out)
	if err != nil {
		return nil, err
	}
	topics := static
	if raw := h.Get(InvalidateTopicsHeader); raw != "" {
		topics = nil
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}
	c.cache.Invalidate(topics...)
	c.logger.DebugContext(ctx, "invalidated query cache",
		slog.String("method", method),
		slog.String("path", path),
		slog.Any("topics", topics),
	)
	return topics, nil
}
