package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages and then reports io.EOF, the error a
// closed kafka.Reader returns.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func eventMessage(t *testing.T, eventType, aggregateID string) kafka.Message {
	t.Helper()
	event, err := NewEvent(eventType, aggregateID, "review", "review-service", nil)
	require.NoError(t, err)
	raw, err := event.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: Topic("review", "created"), Value: raw}
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{
		eventMessage(t, "review.created", "r-1"),
		eventMessage(t, "review.created", "r-2"),
	}}
	var seen []string
	c := newConsumer(r, "cache-invalidator", func(_ context.Context, e *Event) error {
		seen = append(seen, e.AggregateID)
		return nil
	}, discardLogger())

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, []string{"r-1", "r-2"}, seen)
	assert.Len(t, r.committed, 2)
	assert.True(t, r.closed)
}

func TestConsumer_SkipsUndecodableMessage(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{{Topic: "reviews.review.created", Value: []byte("garbage")}}}
	called := false
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		called = true
		return nil
	}, discardLogger())

	require.NoError(t, c.Start(context.Background()))
	assert.False(t, called)
	assert.Len(t, r.committed, 1)
}

func TestConsumer_SkipsUnsupportedEnvelopeVersion(t *testing.T) {
	raw := []byte(`{"event_id":"e-1","event_type":"review.created","aggregate_id":"r-1","version":2}`)
	r := &fakeReader{msgs: []kafka.Message{{Topic: Topic("review", "created"), Value: raw}}}
	called := false
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		called = true
		return nil
	}, discardLogger())

	require.NoError(t, c.Start(context.Background()))
	assert.False(t, called)
	assert.Len(t, r.committed, 1)
}

func TestConsumer_RetriesThenSkips(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{eventMessage(t, "review.created", "r-1")}}
	attempts := 0
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		attempts++
		return errors.New("redis down")
	}, discardLogger())
	c.backoff = time.Millisecond

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, maxHandlerRetries, attempts)
	assert.Len(t, r.committed, 1)
}

func TestConsumer_RecoversOnRetry(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{eventMessage(t, "review.created", "r-1")}}
	attempts := 0
	c := newConsumer(r, "g", func(context.Context, *Event) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}, discardLogger())
	c.backoff = time.Millisecond

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestConsumer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeReader{msgs: []kafka.Message{eventMessage(t, "review.created", "r-1")}}
	c := newConsumer(r, "g", func(context.Context, *Event) error { return nil }, discardLogger())

	require.NoError(t, c.Start(ctx))
	assert.Empty(t, r.committed)
	assert.True(t, r.closed)
	require.NoError(t, c.Close())
}
