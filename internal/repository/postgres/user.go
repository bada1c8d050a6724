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

const userColumns = `id, username, email, password_hash, role, is_active, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Duplicate email or username is AlreadyExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return duplicateUser(err, u)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.getOne(ctx, "GetUser", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("user", id)
	}
	return u, err
}

// GetByEmail matches the email case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.getOne(ctx, "GetUserByEmail", `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("user", email)
	}
	return u, err
}

// List returns one page of users ordered by id. search matches username or
// email case-insensitively.
func (r *UserRepository) List(ctx context.Context, search string, page pagination.Params) (_ []domain.User, _ int, err error) {
	var (
		conditions []string
		args       []any
	)
	if search != "" {
		args = append(args, containsPattern(search))
		conditions = append(conditions, fmt.Sprintf("(username ILIKE $%[1]d OR email ILIKE $%[1]d)", len(args)))
	}
	where := whereClause(conditions)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM users
		%s
		ORDER BY id ASC
		LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2,
	)

	ctx, end := database.TraceQuery(ctx, "ListUsers", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	total := 0
	for rows.Next() {
		var u domain.User
		if err = rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user rows: %w", err)
	}

	if len(users) == 0 && page.Offset() > 0 {
		total, err = countRows(ctx, r.db, `SELECT COUNT(*) FROM users `+where, args...)
		if err != nil {
			return nil, 0, fmt.Errorf("count users: %w", err)
		}
	}
	return users, total, nil
}

// Update writes the profile columns and refreshes UpdatedAt.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (err error) {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, role = $4, is_active = $5, updated_at = $6
		WHERE id = $7`

	ctx, end := database.TraceQuery(ctx, "UpdateUser", query)
	defer func() { end(err) }()

	u.UpdatedAt = time.Now().UTC()
	ct, err := r.db.Exec(ctx, query, u.Username, u.Email, u.PasswordHash, u.Role, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return duplicateUser(err, u)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}
	return nil
}

// SetActive toggles whether the user may log in and returns the updated row.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	u, err := r.getOne(ctx, "SetUserActive", `
		UPDATE users SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("user", id)
	}
	return u, err
}

func (r *UserRepository) getOne(ctx context.Context, operation, query string, args ...any) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	defer func() {
		if errors.Is(err, pgx.ErrNoRows) {
			end(nil)
			return
		}
		end(err)
	}()

	var u domain.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return &u, nil
}

func duplicateUser(err error, u *domain.User) error {
	if database.ConstraintName(err) == "users_username_key" {
		return apperrors.AlreadyExists("user", "username", u.Username)
	}
	return apperrors.AlreadyExists("user", "email", u.Email)
}
