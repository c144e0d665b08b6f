// Package user defines the user model used throughout the application,
// particularly for authentication and bookmark ownership.
package user

import "time"

// User represents a registered account. The password hash is opaque to
// everything except the passhash package and is never serialized.
type User struct {
	// ID is the unique identifier of the user, assigned by the storage.
	ID int `json:"id"`

	// Email is unique across all users, compared case-sensitively as stored.
	Email string `json:"email"`

	// PasswordHash is the encoded argon2id hash of the user's password.
	PasswordHash string `json:"-"`

	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
