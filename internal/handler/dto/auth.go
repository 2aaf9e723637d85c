// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/omnidash/omnidash/internal/model"
)

// MessageResponse acknowledges a successful mutation.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// TokenResponse carries a newly issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// PhotoUploadResponse acknowledges a photo upload.
type PhotoUploadResponse struct {
	Msg      string `json:"msg"`
	PhotoURL string `json:"photo_url"`
}

// UserResponse represents a user record in API responses.
// The password hash is never serialized.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Bio       string    `json:"bio"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Bio:       user.Bio,
		Photo:     user.Photo,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
