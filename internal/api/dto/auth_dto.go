package dto

import (
	"time"

	"github.com/hivemind/support-engine/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse is the public shape of a profile.
type ProfileResponse struct {
	ID        string             `json:"id"`
	Email     string             `json:"email"`
	Role      domain.ProfileRole `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
}

// SessionResponse carries an issued token.
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   ProfileResponse `json:"profile"`
}
