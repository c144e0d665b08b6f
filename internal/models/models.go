// Package models defines the bookmark entity, the request/response payloads
// exchanged with clients, and sentinel errors shared between the storage
// implementations and the services sitting on top of them.
package models

import (
	"errors"
	"time"
)

// Bookmark is a single saved link owned by a user.
type Bookmark struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthRequest is the body of both the signup and the signin calls.
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued access token back to the client.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// CreateBookmarkRequest is the body of the bookmark creation call.
type CreateBookmarkRequest struct {
	Title       string `json:"title" validate:"required"`
	Link        string `json:"link" validate:"required,url"`
	Description string `json:"description,omitempty"`
}

// EditBookmarkRequest is an explicit set of optional field updates.
// Nil fields are left untouched by the update.
type EditBookmarkRequest struct {
	Title       *string `json:"title,omitempty"`
	Link        *string `json:"link,omitempty" validate:"omitempty,url"`
	Description *string `json:"description,omitempty"`
}

// EditUserRequest is the partial-update payload of the profile edit call.
type EditUserRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// Stats is the payload of the internal stats endpoint.
type Stats struct {
	Users     int64 `json:"users"`
	Bookmarks int64 `json:"bookmarks"`
}

// Supported storage backends, selected by configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrEmailAlreadyTaken is returned by storages when persisting a user would
// violate the email uniqueness constraint.
var ErrEmailAlreadyTaken = errors.New("the email is already taken")
