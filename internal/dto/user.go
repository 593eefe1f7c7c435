package dto

import (
	"time"

	"gorm.io/datatypes"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token in the body; the refresh token is
// additionally set as an http-only cookie by the handler.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // access token expiry in seconds
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ProfileResponse struct {
	ID           uint           `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name,omitempty"`
	Age          *int           `json:"age,omitempty"`
	State        string         `json:"state,omitempty"`
	City         string         `json:"city,omitempty"`
	Budget       *int           `json:"budget,omitempty"`
	MoveInDate   *time.Time     `json:"move_in_date,omitempty"`
	Bio          string         `json:"bio,omitempty"`
	AvatarURL    string         `json:"avatar_url,omitempty"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	Lifestyle    datatypes.JSON `json:"lifestyle,omitempty"`
	Activities   datatypes.JSON `json:"activities,omitempty"`
	Prefs        datatypes.JSON `json:"prefs,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UpdateProfileRequest is the explicit allow-list of mutable profile fields.
// Unknown JSON keys are dropped by decoding; absent fields stay nil and are
// not written. MoveInDate arrives as a string and is parsed by the service;
// an unparseable date drops that single field rather than failing the
// request.
type UpdateProfileRequest struct {
	Name       *string        `json:"name"`
	Age        *int           `json:"age"`
	State      *string        `json:"state"`
	City       *string        `json:"city"`
	Budget     *int           `json:"budget"`
	MoveInDate *string        `json:"move_in_date"`
	Bio        *string        `json:"bio"`
	Lifestyle  datatypes.JSON `json:"lifestyle"`
	Activities datatypes.JSON `json:"activities"`
	Prefs      datatypes.JSON `json:"prefs"`
}

type AvatarResponse struct {
	AvatarURL    string `json:"avatar_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}
