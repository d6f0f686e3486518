package dto

import (
	"time"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// SignupRequest payload.
type SignupRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Skills   []string `json:"skills"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest payload, admin only.
type UpdateUserRequest struct {
	Email  string          `json:"email" validate:"required,email"`
	Role   domain.UserRole `json:"role" validate:"omitempty,oneof=user moderator admin"`
	Skills []string        `json:"skills"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Skills    []string        `json:"skills"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserFromDomain maps a user to its response shape.
func UserFromDomain(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Skills:    user.Skills,
		CreatedAt: user.CreatedAt,
	}
}
