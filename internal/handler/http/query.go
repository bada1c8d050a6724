package http

import (
	"net/http"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/pkg/pagination"
)

// reviewFilterFromQuery reads productId, userId, searchText, sortBy,
// sortOrder, page and limit. Value checks beyond integer parsing happen in
// the service.
func reviewFilterFromQuery(r *http.Request) (domain.ReviewFilter, error) {
	p, err := pagination.FromRequest(r)
	if err != nil {
		return domain.ReviewFilter{}, err
	}
	q := r.URL.Query()
	return domain.ReviewFilter{
		ProductID:  q.Get("productId"),
		UserID:     q.Get("userId"),
		SearchText: q.Get("searchText"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
		Page:       p.Page,
		Limit:      p.Limit,
	}, nil
}

func deleted(id string) map[string]string {
	return map[string]string{"id": id, "status": "deleted"}
}
