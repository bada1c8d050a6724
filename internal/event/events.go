package event

import (
	"github.com/stephenstephen/review/internal/cache"
	pkgkafka "github.com/stephenstephen/review/pkg/kafka"
)

// Aggregate types.
const (
	AggregateProduct = "product"
	AggregateReview  = "review"
	AggregateUser    = "user"
)

// SourceReviewService identifies events produced by this service.
const SourceReviewService = "review-service"

// Topics, also used as event types.
var (
	TopicProductCreated = pkgkafka.Topic(AggregateProduct, "created")
	TopicProductUpdated = pkgkafka.Topic(AggregateProduct, "updated")
	TopicProductDeleted = pkgkafka.Topic(AggregateProduct, "deleted")

	TopicReviewCreated = pkgkafka.Topic(AggregateReview, "created")
	TopicReviewUpdated = pkgkafka.Topic(AggregateReview, "updated")
	TopicReviewDeleted = pkgkafka.Topic(AggregateReview, "deleted")

	TopicUserRegistered    = pkgkafka.Topic(AggregateUser, "registered")
	TopicUserUpdated       = pkgkafka.Topic(AggregateUser, "updated")
	TopicUserStatusChanged = pkgkafka.Topic(AggregateUser, "status_changed")
)

// invalidation maps each event type to the cache topics whose readers may
// observe the change. Reviews embed product and author summaries and product
// listings carry review aggregates, so most changes touch both.
var invalidation = map[string][]string{
	TopicProductCreated: {cache.TopicProducts},
	TopicProductUpdated: {cache.TopicProducts, cache.TopicReviews},
	TopicProductDeleted: {cache.TopicProducts, cache.TopicReviews},

	TopicReviewCreated: {cache.TopicReviews, cache.TopicProducts},
	TopicReviewUpdated: {cache.TopicReviews, cache.TopicProducts},
	TopicReviewDeleted: {cache.TopicReviews, cache.TopicProducts},

	TopicUserRegistered:    {cache.TopicUsers},
	TopicUserUpdated:       {cache.TopicUsers, cache.TopicReviews},
	TopicUserStatusChanged: {cache.TopicUsers},
}

// InvalidationTopics returns the cache topics a change of eventType makes
// stale. Unknown types return nil.
func InvalidationTopics(eventType string) []string {
	topics := invalidation[eventType]
	if topics == nil {
		return nil
	}
	return append([]string(nil), topics...)
}

// ConsumedTopics lists every topic the invalidator subscribes to.
func ConsumedTopics() []string {
	return []string{
		TopicProductCreated, TopicProductUpdated, TopicProductDeleted,
		TopicReviewCreated, TopicReviewUpdated, TopicReviewDeleted,
		TopicUserRegistered, TopicUserUpdated, TopicUserStatusChanged,
	}
}

// ProductData is the payload of product events.
type ProductData struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

// ReviewData is the payload of review events.
type ReviewData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating,omitempty"`
}

// UserData is the payload of user events.
type UserData struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	IsActive bool   `json:"is_active"`
}
