package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenstephen/review/internal/cache"
	"github.com/stephenstephen/review/internal/domain"
	pkgkafka "github.com/stephenstephen/review/pkg/kafka"
	"github.com/stephenstephen/review/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type published struct {
	topic string
	event *pkgkafka.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, ev *pkgkafka.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, published{topic: topic, event: ev})
	return nil
}

func TestProducer_PublishProductUpdated(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, discardLogger())
	img := "a.png"
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	err := p.PublishProductUpdated(ctx, &domain.Product{ID: "p1", Name: "Grinder", Price: 10, Image: &img})
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	got := pub.events[0]
	assert.Equal(t, "reviews.product.updated", got.topic)
	assert.Equal(t, "reviews.product.updated", got.event.EventType)
	assert.Equal(t, "p1", got.event.AggregateID)
	assert.Equal(t, AggregateProduct, got.event.AggregateType)
	assert.Equal(t, SourceReviewService, got.event.Source)
	assert.Equal(t, "corr-1", got.event.CorrelationID)

	var data ProductData
	require.NoError(t, got.event.UnmarshalData(&data))
	assert.Equal(t, "Grinder", data.Name)
	assert.Equal(t, 10.0, *data.Price)
	assert.Equal(t, "a.png", *data.Image)
}

func TestProducer_PublishReviewDeleted(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, discardLogger())

	require.NoError(t, p.PublishReviewDeleted(context.Background(), &domain.Review{ID: "r1", ProductID: "p1", UserID: "u1", Rating: 5}))

	var data ReviewData
	require.NoError(t, pub.events[0].event.UnmarshalData(&data))
	assert.Equal(t, ReviewData{ID: "r1", ProductID: "p1", UserID: "u1"}, data)
}

func TestProducer_PublishError(t *testing.T) {
	p := NewProducer(&recordingPublisher{err: errors.New("broker down")}, discardLogger())

	err := p.PublishUserRegistered(context.Background(), &domain.User{ID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reviews.user.registered")
}

func TestProducer_NilIsNoop(t *testing.T) {
	var p *Producer
	assert.NoError(t, p.PublishReviewCreated(context.Background(), &domain.Review{ID: "r1"}))
}

func TestInvalidationTopics(t *testing.T) {
	assert.Equal(t, []string{cache.TopicProducts}, InvalidationTopics(TopicProductCreated))
	assert.ElementsMatch(t, []string{cache.TopicReviews, cache.TopicProducts}, InvalidationTopics(TopicReviewDeleted))
	assert.Nil(t, InvalidationTopics("reviews.unknown.thing"))

	topics := InvalidationTopics(TopicProductUpdated)
	topics[0] = "mutated"
	assert.Equal(t, cache.TopicProducts, InvalidationTopics(TopicProductUpdated)[0])

	for _, topic := range ConsumedTopics() {
		assert.NotEmpty(t, InvalidationTopics(topic), topic)
	}
}

type fakeInvalidator struct {
	topics [][]string
	err    error
}

func (f *fakeInvalidator) Invalidate(_ context.Context, topics ...string) error {
	f.topics = append(f.topics, topics)
	return f.err
}

func TestInvalidationHandler(t *testing.T) {
	inv := &fakeInvalidator{}
	h := InvalidationHandler(inv, discardLogger())

	require.NoError(t, h(context.Background(), &pkgkafka.Event{EventType: TopicReviewCreated}))
	require.NoError(t, h(context.Background(), &pkgkafka.Event{EventType: "something.else"}))

	require.Len(t, inv.topics, 1)
	assert.ElementsMatch(t, []string{"reviews", "products"}, inv.topics[0])

	inv.err = errors.New("redis down")
	assert.Error(t, h(context.Background(), &pkgkafka.Event{EventType: TopicProductDeleted}))
}

func TestInvalidationHandler_BumpsRedisVersionsOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := cache.New(client, time.Minute, discardLogger())
	store := pkgkafka.NewRedisIdempotencyStore(client, "review-cache-invalidator", time.Hour)
	h := pkgkafka.IdempotentHandler(store, InvalidationHandler(c, discardLogger()), discardLogger())

	ev, err := pkgkafka.NewEvent(TopicProductUpdated, "p1", AggregateProduct, SourceReviewService, ProductData{ID: "p1"})
	require.NoError(t, err)

	require.NoError(t, h(context.Background(), ev))
	require.NoError(t, h(context.Background(), ev))

	v, err := mr.Get("products:version")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	v, err = mr.Get("reviews:version")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}
