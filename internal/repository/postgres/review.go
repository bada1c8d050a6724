package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/pkg/database"
	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/pagination"
)

const reviewSelect = `
		SELECT r.id, r.rating, r.comment, r.product_id, r.user_id, r.created_at, r.updated_at,
		       p.name, p.image, p.price, u.username`

const reviewJoins = `
		FROM reviews r
		JOIN products p ON p.id = r.product_id
		JOIN users u ON u.id = r.user_id`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. A missing product surfaces as NotFound.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (err error) {
	query := `
		INSERT INTO reviews (id, rating, comment, product_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		rv.ID, rv.Rating, rv.Comment, rv.ProductID, rv.UserID, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			if database.ConstraintName(err) == "reviews_user_id_fkey" {
				return apperrors.NotFound("user", rv.UserID)
			}
			return apperrors.NotFound("product", rv.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetByID retrieves a review with its product and author summaries.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (_ *domain.Review, err error) {
	query := reviewSelect + reviewJoins + `
		WHERE r.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	defer func() { end(err) }()

	rv, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return rv, nil
}

// List returns one page of reviews matching filter. The filter must already
// be normalized.
func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter, page pagination.Params) (_ []domain.Review, _ int, err error) {
	orderBy, err := filter.OrderBy("r")
	if err != nil {
		return nil, 0, apperrors.Validation(err.Error())
	}

	var (
		conditions []string
		args       []any
	)
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("r.product_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if filter.SearchText != "" {
		args = append(args, containsPattern(filter.SearchText))
		conditions = append(conditions, fmt.Sprintf("r.comment ILIKE $%d", len(args)))
	}
	where := whereClause(conditions)

	query := fmt.Sprintf(`%s, count(*) OVER() AS total_count %s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		reviewSelect, reviewJoins, where, orderBy, len(args)+1, len(args)+2,
	)

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	total := 0
	for rows.Next() {
		rv, scanErr := scanReview(rows, &total)
		if scanErr != nil {
			err = scanErr
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if len(reviews) == 0 && page.Offset() > 0 {
		total, err = countRows(ctx, r.db, `SELECT COUNT(*) FROM reviews r `+where, args...)
		if err != nil {
			return nil, 0, fmt.Errorf("count reviews: %w", err)
		}
	}
	return reviews, total, nil
}

// Update writes rating and comment and refreshes UpdatedAt.
func (r *ReviewRepository) Update(ctx context.Context, rv *domain.Review) (err error) {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateReview", query)
	defer func() { end(err) }()

	rv.UpdatedAt = time.Now().UTC()
	ct, err := r.db.Exec(ctx, query, rv.Rating, rv.Comment, rv.UpdatedAt, rv.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rv.ID)
	}
	return nil
}

// Delete removes a review by id.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteReview", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// RatingStats returns the rounded average rating and review count per
// product for every product in productIDs that has reviews.
func (r *ReviewRepository) RatingStats(ctx context.Context, productIDs []string) (_ map[string]domain.RatingStats, err error) {
	stats := make(map[string]domain.RatingStats, len(productIDs))
	if len(productIDs) == 0 {
		return stats, nil
	}

	query := `
		SELECT product_id, AVG(rating)::float8, COUNT(*)
		FROM reviews
		WHERE product_id = ANY($1)
		GROUP BY product_id`

	ctx, end := database.TraceQuery(ctx, "ReviewRatingStats", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID string
			avg       float64
			count     int
		)
		if err = rows.Scan(&productID, &avg, &count); err != nil {
			return nil, fmt.Errorf("scan rating stats: %w", err)
		}
		rounded := domain.RoundRating(avg)
		stats[productID] = domain.RatingStats{Average: &rounded, Count: count}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating stats: %w", err)
	}
	return stats, nil
}

// scanReview scans the reviewSelect columns plus any trailing destinations.
func scanReview(row pgx.Row, extra ...any) (*domain.Review, error) {
	var (
		rv domain.Review
		p  domain.ProductSummary
		u  domain.UserSummary
	)
	dest := []any{
		&rv.ID, &rv.Rating, &rv.Comment, &rv.ProductID, &rv.UserID, &rv.CreatedAt, &rv.UpdatedAt,
		&p.Name, &p.Image, &p.Price, &u.Username,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.ID = rv.ProductID
	u.ID = rv.UserID
	rv.Product = &p
	rv.User = &u
	return &rv, nil
}
