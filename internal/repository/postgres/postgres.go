package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/stephenstephen/review/pkg/database"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// whereClause joins conditions with AND.
func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

// countRows runs a COUNT(*) query. List queries fall back to it when the
// requested page lies past the end and the windowed total is unavailable.
func countRows(ctx context.Context, db database.DBTX, query string, args ...any) (int, error) {
	var total int
	if err := db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return total, nil
}
