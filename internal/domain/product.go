package domain

import (
	"math"
	"time"
)

// Product is a catalog entry. AverageRating and ReviewsCount are derived
// from reviews at read time and never stored.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Image         *string   `json:"image"`
	AverageRating *float64  `json:"averageRating"`
	ReviewsCount  int       `json:"reviewsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductSummary is the product view embedded in reviews.
type ProductSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
	Price float64 `json:"price"`
}

// RatingStats is the per-product review aggregate.
type RatingStats struct {
	Average *float64
	Count   int
}

// Apply copies the aggregate onto p.
func (s RatingStats) Apply(p *Product) {
	p.AverageRating = s.Average
	p.ReviewsCount = s.Count
}

// RoundRating rounds an average rating to two decimals.
func RoundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}

// CreateProductInput holds the fields for a new product.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"gte=0,lte=9999999999.99"`
	Image       *string `json:"image" validate:"omitempty,max=255"`
}

// UpdateProductInput is a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,lte=9999999999.99"`
	Image       *string  `json:"image" validate:"omitempty,max=255"`
}

// Empty reports whether the update changes nothing.
func (in UpdateProductInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.Price == nil && in.Image == nil
}

// ApplyTo merges the supplied fields into p.
func (in UpdateProductInput) ApplyTo(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Image != nil {
		img := *in.Image
		p.Image = &img
	}
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search string
	Page   int
	Limit  int
}
