// Package graphql serves the GraphQL API over the same services as the REST
// routes.
package graphql

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	graphql "github.com/graph-gophers/graphql-go"
	gqlotel "github.com/graph-gophers/graphql-go/trace/otel"
	"go.opentelemetry.io/otel"
)

//go:embed schema.graphql
var schemaSDL string

const (
	tracerName = "github.com/stephenstephen/review/internal/handler/graphql"
	maxDepth   = 8
)

// NewSchema parses the schema and binds it to r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	s, err := graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxDepth),
		graphql.Logger(panicLogger{r.logger}),
		graphql.Tracer(&gqlotel.Tracer{Tracer: otel.Tracer(tracerName)}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return s, nil
}

// panicLogger reports resolver panics through slog.
type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.ErrorContext(ctx, "graphql resolver panic", slog.String("panic", fmt.Sprint(value)))
}
