package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/pkg/pagination"
)

type metaResolver struct {
	m pagination.Meta
}

func (r *metaResolver) TotalItems() int32   { return int32(r.m.TotalItems) }
func (r *metaResolver) ItemCount() int32    { return int32(r.m.ItemCount) }
func (r *metaResolver) ItemsPerPage() int32 { return int32(r.m.ItemsPerPage) }
func (r *metaResolver) TotalPages() int32   { return int32(r.m.TotalPages) }
func (r *metaResolver) CurrentPage() int32  { return int32(r.m.CurrentPage) }

type productResolver struct {
	p    domain.Product
	root *Resolver
}

func (r *productResolver) ID() graphql.ID          { return graphql.ID(r.p.ID) }
func (r *productResolver) Name() string            { return r.p.Name }
func (r *productResolver) Description() string     { return r.p.Description }
func (r *productResolver) Price() float64          { return r.p.Price }
func (r *productResolver) Image() *string          { return r.p.Image }
func (r *productResolver) AverageRating() *float64 { return r.p.AverageRating }
func (r *productResolver) ReviewsCount() int32     { return int32(r.p.ReviewsCount) }
func (r *productResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.p.CreatedAt} }
func (r *productResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.p.UpdatedAt} }

// Reviews is public, like the catalogue it hangs off.
func (r *productResolver) Reviews(ctx context.Context, args struct{ Filter *reviewFilterInput }) ([]*reviewResolver, error) {
	if err := args.Filter.check(); err != nil {
		return nil, r.root.fail(ctx, err)
	}
	reviews, err := r.root.reviews.ListByProduct(ctx, r.p.ID, args.Filter.toDomain())
	if err != nil {
		return nil, r.root.fail(ctx, err)
	}
	return reviewResolvers(reviews), nil
}

type productPageResolver struct {
	page pagination.Page[domain.Product]
	root *Resolver
}

func (r *productPageResolver) Items() []*productResolver {
	out := make([]*productResolver, len(r.page.Items))
	for i := range r.page.Items {
		out[i] = &productResolver{p: r.page.Items[i], root: r.root}
	}
	return out
}

func (r *productPageResolver) Meta() *metaResolver { return &metaResolver{r.page.Meta} }

type reviewResolver struct {
	r domain.Review
}

func (r *reviewResolver) ID() graphql.ID          { return graphql.ID(r.r.ID) }
func (r *reviewResolver) Rating() int32           { return int32(r.r.Rating) }
func (r *reviewResolver) Comment() string         { return r.r.Comment }
func (r *reviewResolver) ProductID() graphql.ID   { return graphql.ID(r.r.ProductID) }
func (r *reviewResolver) UserID() graphql.ID      { return graphql.ID(r.r.UserID) }
func (r *reviewResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.r.CreatedAt} }
func (r *reviewResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.r.UpdatedAt} }

func (r *reviewResolver) Product() *reviewProductResolver {
	if r.r.Product == nil {
		return nil
	}
	return &reviewProductResolver{*r.r.Product}
}

func (r *reviewResolver) User() *reviewAuthorResolver {
	if r.r.User == nil {
		return nil
	}
	return &reviewAuthorResolver{*r.r.User}
}

func reviewResolvers(reviews []domain.Review) []*reviewResolver {
	out := make([]*reviewResolver, len(reviews))
	for i := range reviews {
		out[i] = &reviewResolver{reviews[i]}
	}
	return out
}

type reviewProductResolver struct {
	p domain.ProductSummary
}

func (r *reviewProductResolver) ID() graphql.ID { return graphql.ID(r.p.ID) }
func (r *reviewProductResolver) Name() string   { return r.p.Name }
func (r *reviewProductResolver) Image() *string { return r.p.Image }
func (r *reviewProductResolver) Price() float64 { return r.p.Price }

type reviewAuthorResolver struct {
	u domain.UserSummary
}

func (r *reviewAuthorResolver) ID() graphql.ID   { return graphql.ID(r.u.ID) }
func (r *reviewAuthorResolver) Username() string { return r.u.Username }

type reviewPageResolver struct {
	page pagination.Page[domain.Review]
}

func (r *reviewPageResolver) Items() []*reviewResolver { return reviewResolvers(r.page.Items) }
func (r *reviewPageResolver) Meta() *metaResolver      { return &metaResolver{r.page.Meta} }

type userResolver struct {
	u domain.User
}

func (r *userResolver) ID() graphql.ID          { return graphql.ID(r.u.ID) }
func (r *userResolver) Username() string        { return r.u.Username }
func (r *userResolver) Email() string           { return r.u.Email }
func (r *userResolver) Role() string            { return r.u.Role }
func (r *userResolver) IsActive() bool          { return r.u.IsActive }
func (r *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.u.CreatedAt} }
func (r *userResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.u.UpdatedAt} }

type userPageResolver struct {
	page pagination.Page[domain.User]
}

func (r *userPageResolver) Items() []*userResolver {
	out := make([]*userResolver, len(r.page.Items))
	for i := range r.page.Items {
		out[i] = &userResolver{r.page.Items[i]}
	}
	return out
}

func (r *userPageResolver) Meta() *metaResolver { return &metaResolver{r.page.Meta} }

// Input objects.

type reviewFilterInput struct {
	ProductID  *graphql.ID
	UserID     *graphql.ID
	Page       int32
	Limit      int32
	SearchText *string
	SortBy     *string
	SortOrder  *string
}

// toDomain accepts a nil receiver for an omitted filter.
func (in *reviewFilterInput) toDomain() domain.ReviewFilter {
	if in == nil {
		return domain.ReviewFilter{}
	}
	return domain.ReviewFilter{
		ProductID:  idValue(in.ProductID),
		UserID:     idValue(in.UserID),
		Page:       int(in.Page),
		Limit:      int(in.Limit),
		SearchText: strValue(in.SearchText),
		SortBy:     strValue(in.SortBy),
		SortOrder:  strValue(in.SortOrder),
	}
}

type createProductInput struct {
	Name        string
	Description *string
	Price       float64
	Image       *string
}

func (in createProductInput) toDomain() domain.CreateProductInput {
	return domain.CreateProductInput{
		Name:        in.Name,
		Description: strValue(in.Description),
		Price:       in.Price,
		Image:       in.Image,
	}
}

type updateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
}

func (in updateProductInput) toDomain() domain.UpdateProductInput {
	return domain.UpdateProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
	}
}

type createReviewInput struct {
	ProductID graphql.ID
	Rating    int32
	Comment   string
}

type updateReviewInput struct {
	Rating  *int32
	Comment *string
}

func (in updateReviewInput) toDomain() domain.UpdateReviewInput {
	out := domain.UpdateReviewInput{Comment: in.Comment}
	if in.Rating != nil {
		rating := int(*in.Rating)
		out.Rating = &rating
	}
	return out
}

// check rejects an explicit page or limit below 1; omitted ones arrive with
// their schema defaults.
func (in *reviewFilterInput) check() error {
	if in == nil {
		return nil
	}
	return checkPage(in.Page, in.Limit)
}

func checkPage(page, limit int32) error {
	_, err := pagination.Explicit(int(page), int(limit))
	return err
}

func idValue(id *graphql.ID) string {
	if id == nil {
		return ""
	}
	return string(*id)
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
