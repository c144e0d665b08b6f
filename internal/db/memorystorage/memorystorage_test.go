package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

func TestStartsEmpty(t *testing.T) {
	db, err := New()
	require.NoError(t, err)

	users, err := db.GetNumberOfUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, users)

	bookmarks, err := db.GetNumberOfBookmarks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, bookmarks)
}

func TestStoresWithoutBackingFile(t *testing.T) {
	db, err := New()
	require.NoError(t, err)

	userID, err := db.CreateUser(context.Background(), &user.User{
		Email:        "example@example.com",
		PasswordHash: "irrelevant",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, userID)

	created, err := db.CreateBookmark(context.Background(), &models.Bookmark{
		UserID: userID,
		Title:  "kept in memory",
		Link:   "https://example.com",
	})
	require.NoError(t, err)

	fetched, found, err := db.FindUserBookmark(context.Background(), userID, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "kept in memory", fetched.Title)

	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, db.Close())
}
