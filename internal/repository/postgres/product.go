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

const productColumns = `id, name, description, price, image, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (id, name, description, price, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	defer func() { end(err) }()

	var p domain.Product
	err = r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// Exists reports whether a product with id exists.
func (r *ProductRepository) Exists(ctx context.Context, id string) (_ bool, err error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	ctx, end := database.TraceQuery(ctx, "ProductExists", query)
	defer func() { end(err) }()

	var exists bool
	if err = r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product %s: %w", id, err)
	}
	return exists, nil
}

// List returns one page of products ordered by id. search matches the name
// case-insensitively anywhere.
func (r *ProductRepository) List(ctx context.Context, search string, page pagination.Params) (_ []domain.Product, _ int, err error) {
	var (
		conditions []string
		args       []any
	)
	if search != "" {
		args = append(args, containsPattern(search))
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	where := whereClause(conditions)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY id ASC
		LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2,
	)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	total := 0
	for rows.Next() {
		var p domain.Product
		if err = rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.CreatedAt, &p.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if len(products) == 0 && page.Offset() > 0 {
		total, err = countRows(ctx, r.db, `SELECT COUNT(*) FROM products `+where, args...)
		if err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}
	return products, total, nil
}

// Update writes every mutable column of p and refreshes UpdatedAt.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4, updated_at = $5
		WHERE id = $6`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	p.UpdatedAt = time.Now().UTC()
	ct, err := r.db.Exec(ctx, query, p.Name, p.Description, p.Price, p.Image, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// Delete removes a product; its reviews go with it via ON DELETE CASCADE.
func (r *ProductRepository) Delete(ctx context.Context, id string) (_ *string, err error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING image`

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	var image *string
	if err = r.db.QueryRow(ctx, query, id).Scan(&image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return image, nil
}
