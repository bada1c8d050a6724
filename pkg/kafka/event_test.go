package kafka

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewPayload struct {
	ReviewID  string `json:"review_id"`
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "reviews.product.updated", Topic("product", "updated"))
	assert.Equal(t, "reviews.review.deleted", Topic("review", "deleted"))
}

func TestNewEvent_Fields(t *testing.T) {
	data := reviewPayload{ReviewID: "r-1", ProductID: "p-1", Rating: 4}
	event, err := NewEvent("review.created", "r-1", "review", "review-service", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "review.created", event.EventType)
	assert.Equal(t, "r-1", event.AggregateID)
	assert.Equal(t, "review", event.AggregateType)
	assert.Equal(t, "review-service", event.Source)
	assert.Equal(t, EnvelopeVersion, event.Version)
	id, err := uuid.Parse(event.EventID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got reviewPayload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	_, err := NewEvent("review.created", "r-1", "review", "review-service", make(chan int))
	require.Error(t, err)
}

func TestEvent_Envelope(t *testing.T) {
	event, err := NewEvent("product.deleted", "p-9", "product", "review-service", map[string]string{"id": "p-9"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1")

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-1", decoded.CorrelationID)
	assert.JSONEq(t, `{"id":"p-9"}`, string(decoded.Data))
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	require.Error(t, err)
}

func TestNewEvent_RequiresTypeAndAggregate(t *testing.T) {
	_, err := NewEvent("", "r-1", "review", "review-service", nil)
	assert.ErrorIs(t, err, ErrInvalidEvent)
	_, err = NewEvent("review.created", "", "review", "review-service", nil)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestUnmarshalEvent_RejectsInvalidEnvelope(t *testing.T) {
	cases := map[string]string{
		"missing id":     `{"event_type":"review.created","aggregate_id":"r-1","version":1}`,
		"missing type":   `{"event_id":"e-1","aggregate_id":"r-1","version":1}`,
		"missing aggr":   `{"event_id":"e-1","event_type":"review.created","version":1}`,
		"no version":     `{"event_id":"e-1","event_type":"review.created","aggregate_id":"r-1"}`,
		"newer envelope": `{"event_id":"e-1","event_type":"review.created","aggregate_id":"r-1","version":2}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalEvent([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}

	ev, err := UnmarshalEvent([]byte(`{"event_id":"e-1","event_type":"review.created","aggregate_id":"r-1","version":1}`))
	require.NoError(t, err)
	assert.Equal(t, "r-1", ev.AggregateID)
}
