package models

import "github.com/google/uuid"

// User is an account allowed to open a relay connection. Ephemeral users are
// minted on first connect and carry no credentials.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email,omitempty"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`
}
