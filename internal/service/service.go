package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stephenstephen/review/internal/cache"
	"github.com/stephenstephen/review/internal/event"
	apperrors "github.com/stephenstephen/review/pkg/errors"
)

// newID returns a time-ordered UUIDv7, so ordering by id follows insertion.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// checkID maps a malformed id to NotFound: no row can have it.
func checkID(resource, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound(resource, id)
	}
	return nil
}

// invalidate bumps the cache topics eventType makes stale. Failures are
// logged; entries still expire by TTL.
func invalidate(ctx context.Context, c *cache.Cache, logger *slog.Logger, eventType string) {
	if err := c.Invalidate(ctx, event.InvalidationTopics(eventType)...); err != nil {
		logger.WarnContext(ctx, "failed to invalidate listing cache",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

func logPublishError(ctx context.Context, logger *slog.Logger, eventType, id string, err error) {
	logger.ErrorContext(ctx, "failed to publish event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", id),
		slog.String("error", err.Error()),
	)
}
