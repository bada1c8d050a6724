package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stephenstephen/review/internal/domain"
	pkgkafka "github.com/stephenstephen/review/pkg/kafka"
	"github.com/stephenstephen/review/pkg/logger"
)

// Publisher writes an event to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review-service domain events. A nil *Producer publishes
// nothing, which is how the service runs with Kafka disabled.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateType, aggregateID string, data any) error {
	if p == nil {
		return nil
	}
	ev, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}
	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func productData(product *domain.Product) ProductData {
	price := product.Price
	return ProductData{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       &price,
		Image:       product.Image,
	}
}

func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, AggregateProduct, product.ID, productData(product))
}

func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, AggregateProduct, product.ID, productData(product))
}

// PublishProductDeleted carries the removed image so downstream consumers can
// clean up copies of it.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string, image *string) error {
	return p.publish(ctx, TopicProductDeleted, AggregateProduct, id, ProductData{ID: id, Image: image})
}

func reviewData(r *domain.Review) ReviewData {
	return ReviewData{ID: r.ID, ProductID: r.ProductID, UserID: r.UserID, Rating: r.Rating}
}

func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, AggregateReview, review.ID, reviewData(review))
}

func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, AggregateReview, review.ID, reviewData(review))
}

func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewDeleted, AggregateReview, review.ID, ReviewData{
		ID: review.ID, ProductID: review.ProductID, UserID: review.UserID,
	})
}

func userData(u *domain.User) UserData {
	return UserData{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, IsActive: u.IsActive}
}

func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, AggregateUser, user.ID, userData(user))
}

func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserUpdated, AggregateUser, user.ID, userData(user))
}

func (p *Producer) PublishUserStatusChanged(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserStatusChanged, AggregateUser, user.ID, userData(user))
}
