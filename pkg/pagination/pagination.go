package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/stephenstephen/review/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds validated pagination parameters.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns page 1 with the default page size.
func DefaultParams() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// New builds Params from caller-supplied values. Zero means "not supplied"
// and falls back to the default; anything else outside [1, MaxLimit] is a
// validation error.
func New(page, limit int) (Params, error) {
	p := DefaultParams()
	if page != 0 {
		p.Page = page
	}
	if limit != 0 {
		p.Limit = limit
	}
	return Explicit(p.Page, p.Limit)
}

// Explicit validates values a caller always supplies, such as GraphQL
// arguments with schema defaults. Zero is out of range here.
func Explicit(page, limit int) (Params, error) {
	if page < 1 {
		return Params{}, apperrors.Validation("page must be greater than or equal to 1")
	}
	if limit < 1 || limit > MaxLimit {
		return Params{}, apperrors.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	return Params{Page: page, Limit: limit}, nil
}

// FromRequest extracts page and limit from the query string. Missing values
// take their defaults; malformed or out-of-range values are rejected.
func FromRequest(r *http.Request) (Params, error) {
	q := r.URL.Query()
	page, err := parseQueryInt(q.Get("page"), "page")
	if err != nil {
		return Params{}, err
	}
	limit, err := parseQueryInt(q.Get("limit"), "limit")
	if err != nil {
		return Params{}, err
	}
	return New(page, limit)
}

func parseQueryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("%s must be an integer", name))
	}
	if v < 1 {
		return 0, apperrors.Validation(fmt.Sprintf("%s must be greater than or equal to 1", name))
	}
	return v, nil
}

// Offset is the number of rows to skip for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes one page of a filtered result set.
type Meta struct {
	TotalItems   int `json:"totalItems"`
	ItemCount    int `json:"itemCount"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// NewMeta computes page metadata. TotalPages is ceil(total/limit) and zero
// when nothing matched.
func NewMeta(itemCount, totalItems int, p Params) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = totalItems / p.Limit
		if totalItems%p.Limit > 0 {
			totalPages++
		}
	}
	return Meta{
		TotalItems:   totalItems,
		ItemCount:    itemCount,
		ItemsPerPage: p.Limit,
		TotalPages:   totalPages,
		CurrentPage:  p.Page,
	}
}

// Page is the {items, meta} envelope returned by every list operation.
type Page[T any] struct {
	Items []T  `json:"items"`
	Meta  Meta `json:"meta"`
}

// NewPage wraps items with meta computed from the filtered total. A nil slice
// is normalized so it serializes as [].
func NewPage[T any](items []T, totalItems int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Meta:  NewMeta(len(items), totalItems, p),
	}
}
