package graphql

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/internal/handler"
	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/httputil"
)

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes POSTed GraphQL requests. Mutations that change cached
// data report their topics in the invalidation header, as the REST routes do.
type Handler struct {
	schema *graphql.Schema
	logger *slog.Logger
}

func NewHandler(schema *graphql.Schema, logger *slog.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes)
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, apperrors.InvalidInput("invalid GraphQL request body"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		httputil.WriteValidationError(w, apperrors.InvalidInput("query is required"))
		return
	}

	inv := &invalidation{}
	ctx := context.WithValue(r.Context(), invalidationKey{}, inv)
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)

	if topics := inv.topics(); len(topics) > 0 {
		w.Header().Set(handler.InvalidateTopicsHeader, strings.Join(topics, ","))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type invalidationKey struct{}

// invalidation collects the event types of the mutations a request ran.
type invalidation struct {
	mu     sync.Mutex
	events []string
}

// recordMutation notes that a mutation emitting eventType succeeded.
func recordMutation(ctx context.Context, eventType string) {
	inv, ok := ctx.Value(invalidationKey{}).(*invalidation)
	if !ok {
		return
	}
	inv.mu.Lock()
	inv.events = append(inv.events, eventType)
	inv.mu.Unlock()
}

func (inv *invalidation) topics() []string {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	var out []string
	seen := make(map[string]bool)
	for _, e := range inv.events {
		for _, t := range event.InvalidationTopics(e) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
