// Package mockstorage provides a testify-based mock implementation of the
// storage interface. It is used to simulate storage behavior, including
// failures, in handler and service tests.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

// StorageMock implements the full storage interface on top of testify's
// generic mock handler.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks inserting a user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (int, error) {
	args := m.Called(ctx, usr)
	return args.Int(0), args.Error(1)
}

// FindUserByEmail mocks the email lookup.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// FindUserByID mocks the id lookup.
func (m *StorageMock) FindUserByID(ctx context.Context, userID int) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// UpdateUser mocks the profile update.
func (m *StorageMock) UpdateUser(
	ctx context.Context,
	userID int,
	patch models.EditUserRequest,
) (*user.User, bool, error) {
	args := m.Called(ctx, userID, patch)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// CreateBookmark mocks inserting a bookmark.
func (m *StorageMock) CreateBookmark(
	ctx context.Context,
	bookmark *models.Bookmark,
) (*models.Bookmark, error) {
	args := m.Called(ctx, bookmark)
	created, _ := args.Get(0).(*models.Bookmark)
	return created, args.Error(1)
}

// FindBookmarkByID mocks the owner-agnostic bookmark fetch.
func (m *StorageMock) FindBookmarkByID(
	ctx context.Context,
	bookmarkID int,
) (*models.Bookmark, bool, error) {
	args := m.Called(ctx, bookmarkID)
	bookmark, _ := args.Get(0).(*models.Bookmark)
	return bookmark, args.Bool(1), args.Error(2)
}

// FindUserBookmark mocks the owner-scoped bookmark fetch.
func (m *StorageMock) FindUserBookmark(
	ctx context.Context,
	userID int,
	bookmarkID int,
) (*models.Bookmark, bool, error) {
	args := m.Called(ctx, userID, bookmarkID)
	bookmark, _ := args.Get(0).(*models.Bookmark)
	return bookmark, args.Bool(1), args.Error(2)
}

// GetUserBookmarks mocks the owner-scoped listing.
func (m *StorageMock) GetUserBookmarks(ctx context.Context, userID int) ([]models.Bookmark, error) {
	args := m.Called(ctx, userID)
	bookmarks, _ := args.Get(0).([]models.Bookmark)
	return bookmarks, args.Error(1)
}

// UpdateBookmark mocks the partial update.
func (m *StorageMock) UpdateBookmark(
	ctx context.Context,
	bookmarkID int,
	patch models.EditBookmarkRequest,
) (*models.Bookmark, bool, error) {
	args := m.Called(ctx, bookmarkID, patch)
	bookmark, _ := args.Get(0).(*models.Bookmark)
	return bookmark, args.Bool(1), args.Error(2)
}

// DeleteBookmark mocks the removal.
func (m *StorageMock) DeleteBookmark(ctx context.Context, bookmarkID int) (bool, error) {
	args := m.Called(ctx, bookmarkID)
	return args.Bool(0), args.Error(1)
}

// GetNumberOfUsers mocks the user count.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// GetNumberOfBookmarks mocks the bookmark count.
func (m *StorageMock) GetNumberOfBookmarks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
