package event

import (
	"context"
	"log/slog"

	pkgkafka "github.com/stephenstephen/review/pkg/kafka"
)

// CacheInvalidator is the part of the listing cache the consumer drives.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, topics ...string) error
}

// InvalidationHandler bumps the cache topics for each domain event, so
// replicas that did not perform a write still drop their stale listings.
// Returning the cache error lets the consumer retry the bump.
func InvalidationHandler(c CacheInvalidator, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, ev *pkgkafka.Event) error {
		topics := InvalidationTopics(ev.EventType)
		if len(topics) == 0 {
			logger.DebugContext(ctx, "ignoring event with no cache topics",
				slog.String("event_type", ev.EventType),
			)
			return nil
		}
		if err := c.Invalidate(ctx, topics...); err != nil {
			return err
		}
		logger.DebugContext(ctx, "invalidated cache topics",
			slog.String("event_type", ev.EventType),
			slog.String("aggregate_id", ev.AggregateID),
			slog.Any("topics", topics),
		)
		return nil
	}
}

// NewInvalidator builds the consumer that feeds InvalidationHandler, guarded
// by store so redelivered events are applied once.
func NewInvalidator(cfg pkgkafka.ConsumerConfig, c CacheInvalidator, store pkgkafka.IdempotencyStore, logger *slog.Logger) *pkgkafka.Consumer {
	if len(cfg.GroupTopics) == 0 {
		cfg.GroupTopics = ConsumedTopics()
	}
	handler := pkgkafka.IdempotentHandler(store, InvalidationHandler(c, logger), logger)
	return pkgkafka.NewConsumer(cfg, handler, logger)
}
