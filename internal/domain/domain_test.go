package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenstephen/review/pkg/validator"
)

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.33, RoundRating(13.0/3.0))
	assert.Equal(t, 4.67, RoundRating(14.0/3.0))
	assert.Equal(t, 5.0, RoundRating(5))
}

func TestUpdateProductInput_ApplyTo(t *testing.T) {
	name := "Kettle"
	price := 19.5
	p := &Product{Name: "Old", Description: "keep", Price: 10}

	in := UpdateProductInput{Name: &name, Price: &price}
	assert.False(t, in.Empty())
	in.ApplyTo(p)

	assert.Equal(t, "Kettle", p.Name)
	assert.Equal(t, "keep", p.Description)
	assert.Equal(t, 19.5, p.Price)
	assert.Nil(t, p.Image)
	assert.True(t, UpdateProductInput{}.Empty())
}

func TestReviewFilter_Normalize(t *testing.T) {
	f := ReviewFilter{SearchText: "  great ", SortOrder: "asc"}
	f.Normalize()
	assert.Equal(t, "great", f.SearchText)
	assert.Equal(t, SortByCreatedAt, f.SortBy)
	assert.Equal(t, SortAsc, f.SortOrder)

	f = ReviewFilter{}
	f.Normalize()
	assert.Equal(t, SortDesc, f.SortOrder)
}

func TestReviewFilter_OrderBy(t *testing.T) {
	tests := []struct {
		filter ReviewFilter
		want   string
	}{
		{ReviewFilter{}, "r.created_at DESC, r.id ASC"},
		{ReviewFilter{SortBy: SortByRating, SortOrder: SortAsc}, "r.rating ASC, r.id ASC"},
		{ReviewFilter{SortBy: SortByRating, SortOrder: SortDesc}, "r.rating DESC, r.id ASC"},
	}
	for _, tt := range tests {
		got, err := tt.filter.OrderBy("r")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ReviewFilter{SortBy: "id; DROP TABLE reviews"}.OrderBy("r")
	require.Error(t, err)
	_, err = ReviewFilter{SortOrder: "sideways"}.OrderBy("r")
	require.Error(t, err)
}

func TestUpdateReviewInput(t *testing.T) {
	rating := 2
	r := &Review{Rating: 5, Comment: "great"}
	UpdateReviewInput{Rating: &rating}.ApplyTo(r)
	assert.Equal(t, 2, r.Rating)
	assert.Equal(t, "great", r.Comment)
	assert.True(t, UpdateReviewInput{}.Empty())
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleAdmin))
	assert.True(t, IsValidRole(RoleUser))
	assert.False(t, IsValidRole("admin"))
}

func TestProductInput_PriceFitsColumn(t *testing.T) {
	maxPrice := 9999999999.99
	tooBig := 1e10

	require.NoError(t, validator.Validate(CreateProductInput{Name: "Grinder", Price: maxPrice}))
	assert.Error(t, validator.Validate(CreateProductInput{Name: "Grinder", Price: tooBig}))
	assert.Error(t, validator.Validate(CreateProductInput{Name: "Grinder", Price: -0.01}))

	require.NoError(t, validator.Validate(UpdateProductInput{Price: &maxPrice}))
	assert.Error(t, validator.Validate(UpdateProductInput{Price: &tooBig}))
}
