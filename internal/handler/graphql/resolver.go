package graphql

import (
	"context"
	"log/slog"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/stephenstephen/review/internal/access"
	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/handler"
	"github.com/stephenstephen/review/pkg/middleware"
)

// Resolver is the root resolver. Every operation runs its guards before
// touching a service.
type Resolver struct {
	products handler.ProductService
	reviews  handler.ReviewService
	users    handler.UserService
	logger   *slog.Logger
}

func NewResolver(products handler.ProductService, reviews handler.ReviewService, users handler.UserService, logger *slog.Logger) *Resolver {
	return &Resolver{products: products, reviews: reviews, users: users, logger: logger}
}

type pageArgs struct {
	Page   int32
	Limit  int32
	Search *string
}

func (r *Resolver) Products(ctx context.Context, args pageArgs) (*productPageResolver, error) {
	if err := checkPage(args.Page, args.Limit); err != nil {
		return nil, r.fail(ctx, err)
	}
	page, err := r.products.ListProducts(ctx, domain.ProductFilter{
		Search: strValue(args.Search),
		Page:   int(args.Page),
		Limit:  int(args.Limit),
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &productPageResolver{page: page, root: r}, nil
}

func (r *Resolver) Product(ctx context.Context, args struct{ ID graphql.ID }) (*productResolver, error) {
	if err := access.Check(ctx, access.Authenticated); err != nil {
		return nil, r.fail(ctx, err)
	}
	p, err := r.products.GetProduct(ctx, string(args.ID))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &productResolver{p: *p, root: r}, nil
}

func (r *Resolver) Reviews(ctx context.Context, args struct{ Filter *reviewFilterInput }) (*reviewPageResolver, error) {
	if err := access.Check(ctx, access.Authenticated); err != nil {
		return nil, r.fail(ctx, err)
	}
	if err := args.Filter.check(); err != nil {
		return nil, r.fail(ctx, err)
	}
	page, err := r.reviews.ListReviews(ctx, args.Filter.toDomain())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &reviewPageResolver{page: page}, nil
}

func (r *Resolver) Review(ctx context.Context, args struct{ ID graphql.ID }) (*reviewResolver, error) {
	if err := access.Check(ctx, access.Authenticated); err != nil {
		return nil, r.fail(ctx, err)
	}
	rv, err := r.reviews.GetReview(ctx, string(args.ID))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &reviewResolver{*rv}, nil
}

func (r *Resolver) UserReviews(ctx context.Context, args struct {
	Page      int32
	Limit     int32
	SortBy    *string
	SortOrder *string
}) (*reviewPageResolver, error) {
	if err := access.Check(ctx, access.Authenticated); err != nil {
		return nil, r.fail(ctx, err)
	}
	if err := checkPage(args.Page, args.Limit); err != nil {
		return nil, r.fail(ctx, err)
	}
	page, err := r.reviews.ListUserReviews(ctx, middleware.UserIDFromContext(ctx), domain.ReviewFilter{
		Page:      int(args.Page),
		Limit:     int(args.Limit),
		SortBy:    strValue(args.SortBy),
		SortOrder: strValue(args.SortOrder),
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &reviewPageResolver{page: page}, nil
}

func (r *Resolver) Users(ctx context.Context, args pageArgs) (*userPageResolver, error) {
	if err := access.Check(ctx, access.AdminOnly); err != nil {
		return nil, r.fail(ctx, err)
	}
	if err := checkPage(args.Page, args.Limit); err != nil {
		return nil, r.fail(ctx, err)
	}
	page, err := r.users.ListUsers(ctx, domain.UserFilter{
		Search: strValue(args.Search),
		Page:   int(args.Page),
		Limit:  int(args.Limit),
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &userPageResolver{page: page}, nil
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	if err := access.Check(ctx, access.Authenticated); err != nil {
		return nil, r.fail(ctx, err)
	}
	u, err := r.users.GetProfile(ctx, middleware.UserIDFromContext(ctx))
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	return &userResolver{*u}, nil
}
