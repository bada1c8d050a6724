package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stephenstephen/review/internal/auth"
	"github.com/stephenstephen/review/internal/cache"
	"github.com/stephenstephen/review/internal/domain"
	"github.com/stephenstephen/review/internal/event"
	"github.com/stephenstephen/review/internal/repository"
	apperrors "github.com/stephenstephen/review/pkg/errors"
	"github.com/stephenstephen/review/pkg/pagination"
	"github.com/stephenstephen/review/pkg/validator"
)

const defaultBcryptCost = 12

// UserService implements accounts, login and the admin user listing.
type UserService struct {
	users       repository.UserRepository
	jwt         *auth.JWTManager
	cache       *cache.Cache
	producer    *event.Producer
	logger      *slog.Logger
	adminEmails map[string]bool
	bcryptCost  int
}

// NewUserService creates the service. Accounts registered with one of
// adminEmails get the ADMIN role.
func NewUserService(
	users repository.UserRepository,
	jwt *auth.JWTManager,
	c *cache.Cache,
	producer *event.Producer,
	logger *slog.Logger,
	adminEmails []string,
) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &UserService{
		users:       users,
		jwt:         jwt,
		cache:       c,
		producer:    producer,
		logger:      logger,
		adminEmails: admins,
		bcryptCost:  defaultBcryptCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := domain.RoleUser
	if s.adminEmails[input.Email] {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           newID(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	usersRegistered.Inc()

	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, u); err != nil {
		logPublishError(ctx, s.logger, event.TopicUserRegistered, u.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicUserRegistered)

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", u.ID),
		slog.String("role", u.Role),
	)
	return &domain.AuthResult{User: u, AccessToken: token}, nil
}

// Login checks credentials and issues an access token. Unknown email and
// wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			loginAttempts.WithLabelValues("invalid_credentials").Inc()
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		loginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if !u.IsActive {
		loginAttempts.WithLabelValues("inactive").Inc()
		return nil, apperrors.Unauthorized("account is deactivated")
	}

	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	loginAttempts.WithLabelValues("success").Inc()

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))
	return &domain.AuthResult{User: u, AccessToken: token}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if err := checkID("user", userID); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the caller's username, email or password.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input domain.UpdateProfileInput) (*domain.User, error) {
	if input.Email != nil {
		e := normalizeEmail(*input.Email)
		input.Email = &e
	}
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Username != nil {
		u.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.producer.PublishUserUpdated(ctx, u); err != nil {
		logPublishError(ctx, s.logger, event.TopicUserUpdated, u.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicUserUpdated)

	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", u.ID))
	return u, nil
}

// ListUsers is the admin listing; filter.Search matches username or email.
func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter) (pagination.Page[domain.User], error) {
	page, err := pagination.New(filter.Page, filter.Limit)
	if err != nil {
		return pagination.Page[domain.User]{}, err
	}
	users, total, err := s.users.List(ctx, strings.TrimSpace(filter.Search), page)
	if err != nil {
		return pagination.Page[domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return pagination.NewPage(users, total, page), nil
}

// SetUserActive enables or disables login for an account.
func (s *UserService) SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	if err := checkID("user", id); err != nil {
		return nil, err
	}
	u, err := s.users.SetActive(ctx, id, active)
	if err != nil {
		return nil, fmt.Errorf("set user active: %w", err)
	}

	if err := s.producer.PublishUserStatusChanged(ctx, u); err != nil {
		logPublishError(ctx, s.logger, event.TopicUserStatusChanged, u.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, event.TopicUserStatusChanged)

	s.logger.InfoContext(ctx, "user status changed",
		slog.String("user_id", u.ID),
		slog.Bool("is_active", u.IsActive),
	)
	return u, nil
}
