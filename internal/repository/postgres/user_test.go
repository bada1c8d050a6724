package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenstephen/review/internal/domain"
	apperrors "github.com/stephenstephen/review/pkg/errors"
)

var userCols = []string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}

func sampleUser() domain.User {
	return domain.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRow(u domain.User, extra ...any) []any {
	return append([]any{u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt}, extra...)
}

func TestUserRepository_Create_Duplicates(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"users_username_key", "username"},
		{"users_email_key", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			mock := newMock(t)
			repo := NewUserRepository(mock)
			u := sampleUser()

			mock.ExpectExec("INSERT INTO users").
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnError(uniqueViolation(tt.constraint))

			err := repo.Create(context.Background(), &u)
			require.ErrorIs(t, err, apperrors.ErrAlreadyExists)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u := sampleUser()

	mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("Alice@Example.com").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow(u)...))

	got, err := repo.GetByEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("FROM users WHERE id").WithArgs("u9").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u9")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_List_Search(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`WHERE \(username ILIKE \$1 OR email ILIKE \$1\)\s+ORDER BY id ASC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("%ali%", 10, 0).
		WillReturnRows(pgxmock.NewRows(append(userCols, "total_count")).AddRow(userRow(sampleUser(), 1)...))

	users, total, err := repo.List(context.Background(), "ali", page(1, 10))
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u := sampleUser()

	mock.ExpectExec("UPDATE users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.ErrorIs(t, repo.Update(context.Background(), &u), apperrors.ErrNotFound)
}

func TestUserRepository_SetActive(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	u := sampleUser()
	u.IsActive = false

	mock.ExpectQuery(`UPDATE users SET is_active = \$2`).
		WithArgs("u1", false).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(userRow(u)...))

	got, err := repo.SetActive(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestUserRepository_SetActive_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("UPDATE users").WithArgs("u9", true).WillReturnError(pgx.ErrNoRows)

	_, err := repo.SetActive(context.Background(), "u9", true)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
