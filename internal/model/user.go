// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash holds the Argon2id digest, never the plaintext; it is
// excluded from JSON so profile responses can serialize the record directly.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Bio          string    `json:"bio"`
	Photo        string    `json:"photo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
