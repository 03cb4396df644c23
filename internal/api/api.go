// Package api holds the JSON bodies exchanged between the dashboard API and
// its clients.
package api

import (
	"time"

	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// User is the public view of an account.
type User struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        rbac.Role  `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewUser converts a stored user.
func NewUser(u *models.User) *User {
	if u == nil {
		return nil
	}

	return &User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.Active,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	c := *u

	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}

	return &c
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by POST /auth/login. Token and AccessToken carry
// the same value.
type LoginResponse struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// BearerToken returns the access token, whichever field carried it.
func (r *LoginResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}

	return r.AccessToken
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// RefreshRequest is the body of POST /auth/refresh and POST /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse is returned by POST /auth/refresh. RefreshToken is only set
// when the server rotated it.
type RefreshResponse struct {
	Token        string `json:"token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// BearerToken returns the access token, whichever field carried it.
func (r *RefreshResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}

	return r.AccessToken
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=100"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=100"`
}

// UserCreate is the body of POST /auth/users.
type UserCreate struct {
	Username  string    `json:"username" validate:"required,min=3,max=50"`
	Email     string    `json:"email" validate:"required,email,max=100"`
	FirstName string    `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string    `json:"last_name" validate:"required,min=1,max=50"`
	Role      rbac.Role `json:"role" validate:"omitempty,role"`
	IsActive  *bool     `json:"is_active"`
	Password  string    `json:"password" validate:"required,min=6,max=100"`
}

// UserUpdate is the body of PUT /auth/users/:id. Nil fields are left unchanged.
type UserUpdate struct {
	Username  *string    `json:"username" validate:"omitempty,min=3,max=50"`
	Email     *string    `json:"email" validate:"omitempty,email,max=100"`
	FirstName *string    `json:"first_name" validate:"omitempty,min=1,max=50"`
	LastName  *string    `json:"last_name" validate:"omitempty,min=1,max=50"`
	Role      *rbac.Role `json:"role" validate:"omitempty,role"`
	IsActive  *bool      `json:"is_active"`
}

// PermissionsResponse is returned by GET /permissions.
type PermissionsResponse struct {
	Role        rbac.Role         `json:"role"`
	Permissions []rbac.Permission `json:"permissions"`
}

// Message is a plain acknowledgement.
type Message struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}
