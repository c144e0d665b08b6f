// Package storage declares the full persistence surface the application
// requires from a storage backend.
package storage

import (
	"context"

	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

// Storage is implemented by the postgres, file and in-memory backends.
// Lookup methods report absence through the boolean return rather than an
// error; sentinel errors are reserved for constraint violations.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) (int, error)

	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	FindUserByID(ctx context.Context, userID int) (*user.User, bool, error)

	UpdateUser(
		ctx context.Context,
		userID int,
		patch models.EditUserRequest,
	) (*user.User, bool, error)

	CreateBookmark(ctx context.Context, bookmark *models.Bookmark) (*models.Bookmark, error)

	FindBookmarkByID(ctx context.Context, bookmarkID int) (*models.Bookmark, bool, error)

	FindUserBookmark(
		ctx context.Context,
		userID int,
		bookmarkID int,
	) (*models.Bookmark, bool, error)

	GetUserBookmarks(ctx context.Context, userID int) ([]models.Bookmark, error)

	UpdateBookmark(
		ctx context.Context,
		bookmarkID int,
		patch models.EditBookmarkRequest,
	) (*models.Bookmark, bool, error)

	DeleteBookmark(ctx context.Context, bookmarkID int) (bool, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfBookmarks(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
