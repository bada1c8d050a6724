package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/stephenstephen/review/internal/access"
	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/pkg/middleware"
)

func (r *Resolver) CreateProduct(ctx context.Context, args struct{ Input createProductInput }) (*productResolver, error) {
	if err := access.Check(ctx, access.AdminOnly); err != nil {
		return nil, r.fail(ctx, err)
	}
	p, err := r.products.CreateProduct(ctx, args.Input.toDomain())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	recordMutation(ctx, event.TopicProductCreated)
	return &productResolver{p: *p, root: r}, nil
}

func (r *Resolver) UpdateProduct(ctx context.Context, args struct {
	ID    graphql.ID
	Input updateProductInput
}) (*productResolver, error) {
	if err := access.Check(ctx, access.AdminOnly); err != nil {
		return nil, r.fail(ctx, err)
	}
	p, err := r.products.UpdateProduct(ctx, string(args.ID), args.Input.toDomain())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	recordMutation(ctx, event.TopicProductUpdated)
	return &productResolver{p: *p, root: r}, nil
}

func (r *Resolver) RemoveProduct(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := access.Check(ctx, access.AdminOnly); err != nil {
		return false, r.fail(ctx, err)
	}
	if err := r.products.DeleteProduct(ctx, string(args.ID)); err != nil {
		return false, r.fail(ctx, err)
	}
	recordMutation(ctx, event.TopicProductDeleted)
	return true, nil
}

func (r *Resolver) CreateReview(ctx context.Context, args struct{ Input createReviewInput }) (*reviewResolver, error) {
	if err := access.Check(ctx, access.Authenticated); err != nil {
		return nil, r.fail(ctx, err)
	}
	rv, err := r.reviews.CreateReview(ctx, middleware.UserIDFromContext(ctx), domain.CreateReviewInput{
		ProductID: string(args.Input.ProductID),
		Rating:    int(args.Input.Rating),
		Comment:   args.Input.Comment,
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	recordMutation(ctx, event.TopicReviewCreated)
	return &reviewResolver{*rv}, nil
}

func (r *Resolver) UpdateReview(ctx context.Context, args struct {
	ID    graphql.ID
	Input updateReviewInput
}) (*reviewResolver, error) {
	if err := access.Check(ctx, access.AdminOnly); err != nil {
		return nil, r.fail(ctx, err)
	}
	rv, err := r.reviews.UpdateReview(ctx, string(args.ID), args.Input.toDomain())
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	recordMutation(ctx, event.TopicReviewUpdated)
	return &reviewResolver{*rv}, nil
}

func (r *Resolver) RemoveReview(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := access.Check(ctx, access.AdminOnly); err != nil {
		return false, r.fail(ctx, err)
	}
	if err := r.reviews.DeleteReview(ctx, string(args.ID)); err != nil {
		return false, r.fail(ctx, err)
	}
	recordMutation(ctx, event.TopicReviewDeleted)
	return true, nil
}

func (r *Resolver) SetUserActive(ctx context.Context, args struct {
	ID       graphql.ID
	IsActive bool
}) (*userResolver, error) {
	if err := access.Check(ctx, access.AdminOnly); err != nil {
		return nil, r.fail(ctx, err)
	}
	u, err := r.users.SetUserActive(ctx, string(args.ID), args.IsActive)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	recordMutation(ctx, event.TopicUserStatusChanged)
	return &userResolver{*u}, nil
}
