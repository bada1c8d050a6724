package domain

import (
	"fmt"
	"strings"
	"time"
)

// Review is a user's rating and comment on a product.
type Review struct {
	ID        string          `json:"id"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment"`
	ProductID string          `json:"productId"`
	UserID    string          `json:"userId"`
	Product   *ProductSummary `json:"product,omitempty"`
	User      *UserSummary    `json:"user,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Review sort fields.
const (
	SortByCreatedAt = "createdAt"
	SortByRating    = "rating"
)

// Sort directions.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// ReviewFilter narrows and orders a review listing. Empty sort fields take
// createdAt DESC.
type ReviewFilter struct {
	ProductID  string `json:"productId" validate:"omitempty,uuid"`
	UserID     string `json:"userId" validate:"omitempty,uuid"`
	SearchText string `json:"searchText" validate:"max=255"`
	SortBy     string `json:"sortBy" validate:"omitempty,oneof=createdAt rating"`
	SortOrder  string `json:"sortOrder" validate:"omitempty,oneof=ASC DESC"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// Normalize fills the default sort and upper-cases the direction.
func (f *ReviewFilter) Normalize() {
	f.SearchText = strings.TrimSpace(f.SearchText)
	f.SortOrder = strings.ToUpper(f.SortOrder)
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
}

// OrderBy renders the ORDER BY clause for the filter. Ties always fall back
// to id ascending so that equal keys keep creation order in both directions.
func (f ReviewFilter) OrderBy(alias string) (string, error) {
	var column string
	switch f.SortBy {
	case SortByCreatedAt, "":
		column = "created_at"
	case SortByRating:
		column = "rating"
	default:
		return "", fmt.Errorf("unsupported sort field %q", f.SortBy)
	}
	dir := SortDesc
	switch f.SortOrder {
	case SortAsc, SortDesc:
		dir = f.SortOrder
	case "":
	default:
		return "", fmt.Errorf("unsupported sort order %q", f.SortOrder)
	}
	return fmt.Sprintf("%[1]s.%[2]s %[3]s, %[1]s.id ASC", alias, column, dir), nil
}

// CreateReviewInput holds the fields for a new review. The author comes from
// the authenticated caller.
type CreateReviewInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment" validate:"required,max=5000"`
}

// UpdateReviewInput is a partial update; nil fields are left unchanged.
type UpdateReviewInput struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,min=1,max=5000"`
}

func (in UpdateReviewInput) Empty() bool {
	return in.Rating == nil && in.Comment == nil
}

func (in UpdateReviewInput) ApplyTo(r *Review) {
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Comment != nil {
		r.Comment = *in.Comment
	}
}
