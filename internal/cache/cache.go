// Package cache is a Redis read-through cache for listing queries. Entries
// are keyed by the version counters of the topics they depend on, so
// invalidating a topic is a single INCR and stale entries age out by TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Invalidation topics.
const (
	TopicProducts = "products"
	TopicReviews  = "reviews"
	TopicUsers    = "users"
)

var requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "review_cache_requests_total",
	Help: "Listing cache lookups by topic and result (hit, miss, error).",
}, []string{"topic", "result"})

// Cache is safe for concurrent use. A nil *Cache is valid and caches nothing.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func New(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func versionKey(topic string) string {
	return topic + ":version"
}

// Invalidate bumps the version of every topic.
func (c *Cache) Invalidate(ctx context.Context, topics ...string) error {
	if c == nil || len(topics) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, t := range topics {
		pipe.Incr(ctx, versionKey(t))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bump cache versions %v: %w", topics, err)
	}
	return nil
}

// versions returns the current version of each topic; unset topics are 0.
func (c *Cache) versions(ctx context.Context, topics []string) ([]int64, error) {
	keys := make([]string, len(topics))
	for i, t := range topics {
		keys[i] = versionKey(t)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse version of %s: %w", topics[i], err)
		}
		out[i] = n
	}
	return out, nil
}

// entryKey renders <topic>:v<version>:<hash>. The hash covers the query key
// and the versions of any secondary topics.
func entryKey(topics []string, versions []int64, key string) string {
	h := sha256.New()
	h.Write([]byte(key))
	for i := 1; i < len(topics); i++ {
		fmt.Fprintf(h, "|%s:%d", topics[i], versions[i])
	}
	return fmt.Sprintf("%s:v%d:%s", topics[0], versions[0], hex.EncodeToString(h.Sum(nil))[:32])
}

// Fetch returns the cached value for key under topics, or calls load and
// caches its result. topics[0] names the entry; the rest only take part in
// invalidation. Redis failures degrade to calling load and are logged.
func Fetch[T any](ctx context.Context, c *Cache, topics []string, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil || len(topics) == 0 {
		return load(ctx)
	}
	topic := topics[0]

	versions, err := c.versions(ctx, topics)
	if err != nil {
		c.warn(ctx, "read cache versions", topic, err)
		requests.WithLabelValues(topic, "error").Inc()
		return load(ctx)
	}
	k := entryKey(topics, versions, key)

	data, err := c.client.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var v T
		jsonErr := json.Unmarshal(data, &v)
		if jsonErr == nil {
			requests.WithLabelValues(topic, "hit").Inc()
			return v, nil
		}
		c.warn(ctx, "decode cache entry", topic, jsonErr)
	case !errors.Is(err, redis.Nil):
		c.warn(ctx, "read cache entry", topic, err)
		requests.WithLabelValues(topic, "error").Inc()
		return load(ctx)
	}
	requests.WithLabelValues(topic, "miss").Inc()

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	// Stored under the versions read before load, so an invalidation that
	// raced with it leaves this entry unreachable.
	payload, err := json.Marshal(v)
	if err != nil {
		c.warn(ctx, "encode cache entry", topic, err)
		return v, nil
	}
	if err := c.client.Set(ctx, k, payload, c.ttl).Err(); err != nil {
		c.warn(ctx, "write cache entry", topic, err)
	}
	return v, nil
}

// Key joins query parts into a cache key.
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, "|")
}

func (c *Cache) warn(ctx context.Context, msg, topic string, err error) {
	c.logger.WarnContext(ctx, msg,
		slog.String("topic", topic),
		slog.String("error", err.Error()),
	)
}
