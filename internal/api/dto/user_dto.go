package dto

import (
	"time"

	"github.com/campus-mts/mts/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserRequest creates or edits a user. Password may be empty on edit.
type UserRequest struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Department string      `json:"department"`
	Role       domain.Role `json:"role"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewUserResponse maps a user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Department: u.Department,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
	}
}

// NewUserResponses maps a list; the result is never nil.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
