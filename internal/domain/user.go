package domain

import (
	"time"
)

// Roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// IsValidRole checks whether role is a known role.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the author view embedded in reviews.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RegisterInput holds the fields for a new account.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput is a partial profile update.
type UpdateProfileInput struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Page   int
	Limit  int
}
