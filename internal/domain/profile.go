package domain

import "time"

// ProfileRole gates admin-only views and privileged ticket mutations.
type ProfileRole string

const (
	RoleCustomer ProfileRole = "customer"
	RoleAdmin    ProfileRole = "admin"
)

// Profile identifies a customer or agent. Read-only from the conversation
// engine's perspective; resolved for message sender display and role gating.
type Profile struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Role         ProfileRole `json:"role"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}
