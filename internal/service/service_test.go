package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vishnucprasad/bookmarkapi/internal/db/memorystorage"
	"github.com/vishnucprasad/bookmarkapi/internal/db/mockstorage"
	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

func ptr(s string) *string {
	return &s
}

func newTestService(t *testing.T) (*Service, *memorystorage.MemoryStorage) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db), db
}

func createTestUser(t *testing.T, db *memorystorage.MemoryStorage, email string) int {
	t.Helper()

	userID, err := db.CreateUser(context.Background(), &user.User{
		Email:        email,
		PasswordHash: "irrelevant",
	})
	require.NoError(t, err)

	return userID
}

func TestCreateAndGetBookmark(t *testing.T) {
	svc, db := newTestService(t)
	userID := createTestUser(t, db, "owner@example.com")

	created, err := svc.CreateBookmark(context.Background(), userID, models.CreateBookmarkRequest{
		Title:       "Go blog",
		Link:        "https://go.dev/blog",
		Description: "release notes and articles",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, userID, created.UserID)

	fetched, err := svc.GetBookmarkByID(context.Background(), userID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Go blog", fetched.Title)
	assert.Equal(t, "https://go.dev/blog", fetched.Link)
	assert.Equal(t, "release notes and articles", fetched.Description)
}

func TestGetBookmarkMissYieldsNil(t *testing.T) {
	svc, db := newTestService(t)
	userID := createTestUser(t, db, "owner@example.com")

	bookmark, err := svc.GetBookmarkByID(context.Background(), userID, 42)
	require.NoError(t, err)
	assert.Nil(t, bookmark)
}

func TestGetBookmarkOfAnotherUserYieldsNil(t *testing.T) {
	svc, db := newTestService(t)
	ownerID := createTestUser(t, db, "owner@example.com")
	strangerID := createTestUser(t, db, "stranger@example.com")

	created, err := svc.CreateBookmark(context.Background(), ownerID, models.CreateBookmarkRequest{
		Title: "private",
		Link:  "https://example.com",
	})
	require.NoError(t, err)

	bookmark, err := svc.GetBookmarkByID(context.Background(), strangerID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, bookmark)
}

func TestGetUserBookmarksIsScopedToOwner(t *testing.T) {
	svc, db := newTestService(t)
	firstUserID := createTestUser(t, db, "first@example.com")
	secondUserID := createTestUser(t, db, "second@example.com")

	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.CreateBookmark(context.Background(), firstUserID, models.CreateBookmarkRequest{
			Title: title,
			Link:  "https://example.com/" + title,
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateBookmark(context.Background(), secondUserID, models.CreateBookmarkRequest{
		Title: "other",
		Link:  "https://example.org",
	})
	require.NoError(t, err)

	bookmarks, err := svc.GetUserBookmarks(context.Background(), firstUserID)
	require.NoError(t, err)
	require.Len(t, bookmarks, 3)
	assert.Equal(t, "one", bookmarks[0].Title)
	assert.Equal(t, "two", bookmarks[1].Title)
	assert.Equal(t, "three", bookmarks[2].Title)
	for _, bookmark := range bookmarks {
		assert.Equal(t, firstUserID, bookmark.UserID)
	}
}

func TestEditBookmarkAppliesOnlyGivenFields(t *testing.T) {
	svc, db := newTestService(t)
	userID := createTestUser(t, db, "owner@example.com")

	created, err := svc.CreateBookmark(context.Background(), userID, models.CreateBookmarkRequest{
		Title:       "original title",
		Link:        "https://example.com",
		Description: "original description",
	})
	require.NoError(t, err)

	updated, err := svc.EditBookmarkByID(context.Background(), userID, created.ID, models.EditBookmarkRequest{
		Title: ptr("new title"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "https://example.com", updated.Link)
	assert.Equal(t, "original description", updated.Description)
}

func TestEditBookmarkOfAnotherUserIsDenied(t *testing.T) {
	svc, db := newTestService(t)
	ownerID := createTestUser(t, db, "owner@example.com")
	strangerID := createTestUser(t, db, "stranger@example.com")

	created, err := svc.CreateBookmark(context.Background(), ownerID, models.CreateBookmarkRequest{
		Title: "mine",
		Link:  "https://example.com",
	})
	require.NoError(t, err)

	_, err = svc.EditBookmarkByID(context.Background(), strangerID, created.ID, models.EditBookmarkRequest{
		Title: ptr("stolen"),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	unchanged, err := svc.GetBookmarkByID(context.Background(), ownerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", unchanged.Title)
}

func TestEditAbsentBookmarkIsDenied(t *testing.T) {
	svc, db := newTestService(t)
	userID := createTestUser(t, db, "owner@example.com")

	_, err := svc.EditBookmarkByID(context.Background(), userID, 42, models.EditBookmarkRequest{
		Title: ptr("ghost"),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDeleteBookmark(t *testing.T) {
	svc, db := newTestService(t)
	userID := createTestUser(t, db, "owner@example.com")

	created, err := svc.CreateBookmark(context.Background(), userID, models.CreateBookmarkRequest{
		Title: "ephemeral",
		Link:  "https://example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBookmarkByID(context.Background(), userID, created.ID))

	bookmarks, err := svc.GetUserBookmarks(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)

	err = svc.DeleteBookmarkByID(context.Background(), userID, created.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDeleteBookmarkOfAnotherUserIsDenied(t *testing.T) {
	svc, db := newTestService(t)
	ownerID := createTestUser(t, db, "owner@example.com")
	strangerID := createTestUser(t, db, "stranger@example.com")

	created, err := svc.CreateBookmark(context.Background(), ownerID, models.CreateBookmarkRequest{
		Title: "mine",
		Link:  "https://example.com",
	})
	require.NoError(t, err)

	err = svc.DeleteBookmarkByID(context.Background(), strangerID, created.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	bookmarks, err := svc.GetUserBookmarks(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, bookmarks, 1)
}

func TestEditDeniedWhenBookmarkVanishesBeforeUpdate(t *testing.T) {
	db := &mockstorage.StorageMock{}
	svc := New(db)

	bookmark := &models.Bookmark{ID: 1, UserID: 7, Title: "racy", Link: "https://example.com"}
	db.On("FindBookmarkByID", mock.Anything, 1).Return(bookmark, true, nil)
	db.On("UpdateBookmark", mock.Anything, 1, mock.Anything).Return(nil, false, nil)

	_, err := svc.EditBookmarkByID(context.Background(), 7, 1, models.EditBookmarkRequest{
		Title: ptr("late"),
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	db.AssertExpectations(t)
}

func TestDeleteDeniedWhenBookmarkVanishesBeforeRemoval(t *testing.T) {
	db := &mockstorage.StorageMock{}
	svc := New(db)

	bookmark := &models.Bookmark{ID: 1, UserID: 7, Title: "racy", Link: "https://example.com"}
	db.On("FindBookmarkByID", mock.Anything, 1).Return(bookmark, true, nil)
	db.On("DeleteBookmark", mock.Anything, 1).Return(false, nil)

	err := svc.DeleteBookmarkByID(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrAccessDenied)
	db.AssertExpectations(t)
}

func TestEditBookmarkStorageFailure(t *testing.T) {
	db := &mockstorage.StorageMock{}
	svc := New(db)

	storageErr := errors.New("storage is on fire")
	db.On("FindBookmarkByID", mock.Anything, 1).Return(nil, false, storageErr)

	_, err := svc.EditBookmarkByID(context.Background(), 7, 1, models.EditBookmarkRequest{})
	assert.ErrorIs(t, err, storageErr)
}

func TestGetAndEditUser(t *testing.T) {
	svc, db := newTestService(t)
	userID := createTestUser(t, db, "owner@example.com")

	usr, found, err := svc.GetUser(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "owner@example.com", usr.Email)

	updated, found, err := svc.EditUser(context.Background(), userID, models.EditUserRequest{
		Email:     ptr("renamed@example.com"),
		FirstName: ptr("Vishnu"),
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "renamed@example.com", updated.Email)
	assert.Equal(t, "Vishnu", updated.FirstName)
	assert.Equal(t, userID, updated.ID)
}

func TestEditUserEmailCollision(t *testing.T) {
	svc, db := newTestService(t)
	createTestUser(t, db, "taken@example.com")
	userID := createTestUser(t, db, "owner@example.com")

	_, _, err := svc.EditUser(context.Background(), userID, models.EditUserRequest{
		Email: ptr("taken@example.com"),
	})
	assert.ErrorIs(t, err, models.ErrEmailAlreadyTaken)
}

func TestGetUserMiss(t *testing.T) {
	svc, _ := newTestService(t)

	usr, found, err := svc.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, usr)
}

func TestGetStats(t *testing.T) {
	svc, db := newTestService(t)
	firstUserID := createTestUser(t, db, "first@example.com")
	createTestUser(t, db, "second@example.com")

	_, err := svc.CreateBookmark(context.Background(), firstUserID, models.CreateBookmarkRequest{
		Title: "counted",
		Link:  "https://example.com",
	})
	require.NoError(t, err)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Users: 2, Bookmarks: 1}, stats)
}
