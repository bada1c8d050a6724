// Package access holds the per-operation authorization guards shared by the
// REST routes and the GraphQL resolvers.
package access

import (
	"context"
	"slices"

	"github.com/stephenstephen/review/internal/domain"
	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/middleware"
)

// Guard inspects the caller identity on ctx and returns an AppError when the
// operation must not proceed.
type Guard func(ctx context.Context) error

// Authenticated rejects anonymous callers.
func Authenticated(ctx context.Context) error {
	if _, ok := middleware.ClaimsFromContext(ctx); !ok {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

// RequireRole admits authenticated callers holding one of roles.
func RequireRole(roles ...string) Guard {
	return func(ctx context.Context) error {
		claims, ok := middleware.ClaimsFromContext(ctx)
		if !ok {
			return apperrors.Unauthorized("authentication required")
		}
		if !slices.Contains(roles, claims.Role) {
			return apperrors.Forbidden("insufficient permissions")
		}
		return nil
	}
}

// AdminOnly admits ADMIN callers.
var AdminOnly = RequireRole(domain.RoleAdmin)

// Check runs guards in order and returns the first failure.
func Check(ctx context.Context, guards ...Guard) error {
	for _, g := range guards {
		if err := g(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Checks converts guards for middleware.Guard.
func Checks(guards ...Guard) []func(context.Context) error {
	out := make([]func(context.Context) error, len(guards))
	for i, g := range guards {
		out[i] = g
	}
	return out
}
