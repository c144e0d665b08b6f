// Package jsondb provides a file-backed implementation of the storage
// interface. The whole dataset lives in memory and is flushed to a JSON
// file on Close, which makes it suitable for small single-node deployments
// and for tests.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/thoas/go-funk"

	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

// UserRecord is the persisted form of a user. Unlike user.User it carries
// the password hash, which is excluded from JSON serialization everywhere
// else in the application.
type UserRecord struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (rec *UserRecord) toUser() *user.User {
	return &user.User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

// CacheStruct is the in-memory dataset. EmailToUserID mirrors the email
// uniqueness constraint a relational backend gets from its unique index.
type CacheStruct struct {
	Users          map[int]*UserRecord
	EmailToUserID  map[string]int
	Bookmarks      map[int]*models.Bookmark
	NextUserID     int
	NextBookmarkID int
}

// JSONDB is the file-backed storage. All methods are safe for concurrent use.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"EmailToUserID": {},
	"Bookmarks": {},
	"NextUserID": 1,
	"NextBookmarkID": 1
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %s", err)
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cacheMap)
}

// Normalize allocates any nil maps and counters of the cache. It must be
// called on caches that were not produced by New.
func (cache *CacheStruct) Normalize() {
	if cache.Users == nil {
		cache.Users = map[int]*UserRecord{}
	}
	if cache.EmailToUserID == nil {
		cache.EmailToUserID = map[string]int{}
	}
	if cache.Bookmarks == nil {
		cache.Bookmarks = map[int]*models.Bookmark{}
	}
	if cache.NextUserID == 0 {
		cache.NextUserID = 1
	}
	if cache.NextBookmarkID == 0 {
		cache.NextBookmarkID = 1
	}
}

// New loads the dataset from fileName, creating the file with an empty
// skeleton when it does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}
	db.Cache.Normalize()

	return &db, nil
}

// CreateUser inserts a new user and returns the assigned id. A duplicate
// email yields models.ErrEmailAlreadyTaken and leaves the dataset unchanged.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, taken := db.Cache.EmailToUserID[usr.Email]; taken {
		return 0, models.ErrEmailAlreadyTaken
	}

	now := time.Now()
	userID := db.Cache.NextUserID
	db.Cache.NextUserID++

	db.Cache.Users[userID] = &UserRecord{
		ID:           userID,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.Cache.EmailToUserID[usr.Email] = userID

	return userID, nil
}

// FindUserByEmail looks a user up by exact email match.
func (db *JSONDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	userID, found := db.Cache.EmailToUserID[email]
	if !found {
		return nil, false, nil
	}

	return db.Cache.Users[userID].toUser(), true, nil
}

// FindUserByID looks a user up by id.
func (db *JSONDB) FindUserByID(ctx context.Context, userID int) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rec, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	return rec.toUser(), true, nil
}

// UpdateUser applies the non-nil fields of the patch to the user.
func (db *JSONDB) UpdateUser(
	ctx context.Context,
	userID int,
	patch models.EditUserRequest,
) (*user.User, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rec, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}

	if patch.Email != nil && *patch.Email != rec.Email {
		if _, taken := db.Cache.EmailToUserID[*patch.Email]; taken {
			return nil, true, models.ErrEmailAlreadyTaken
		}
		delete(db.Cache.EmailToUserID, rec.Email)
		rec.Email = *patch.Email
		db.Cache.EmailToUserID[rec.Email] = userID
	}
	if patch.FirstName != nil {
		rec.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		rec.LastName = *patch.LastName
	}
	rec.UpdatedAt = time.Now()

	return rec.toUser(), true, nil
}

// CreateBookmark inserts a new bookmark and returns it with the assigned id.
func (db *JSONDB) CreateBookmark(
	ctx context.Context,
	bookmark *models.Bookmark,
) (*models.Bookmark, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now()
	stored := *bookmark
	stored.ID = db.Cache.NextBookmarkID
	db.Cache.NextBookmarkID++
	stored.CreatedAt = now
	stored.UpdatedAt = now

	db.Cache.Bookmarks[stored.ID] = &stored

	result := stored

	return &result, nil
}

// FindBookmarkByID fetches a bookmark by id alone, regardless of its owner.
func (db *JSONDB) FindBookmarkByID(
	ctx context.Context,
	bookmarkID int,
) (*models.Bookmark, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stored, found := db.Cache.Bookmarks[bookmarkID]
	if !found {
		return nil, false, nil
	}

	result := *stored

	return &result, true, nil
}

// FindUserBookmark fetches a bookmark only when it exists and is owned by
// the given user.
func (db *JSONDB) FindUserBookmark(
	ctx context.Context,
	userID int,
	bookmarkID int,
) (*models.Bookmark, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stored, found := db.Cache.Bookmarks[bookmarkID]
	if !found || stored.UserID != userID {
		return nil, false, nil
	}

	result := *stored

	return &result, true, nil
}

// GetUserBookmarks returns all bookmarks owned by the user, ordered by id
// so repeated calls without intervening writes observe a stable order.
func (db *JSONDB) GetUserBookmarks(ctx context.Context, userID int) ([]models.Bookmark, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	owned := funk.Filter(
		funk.Values(db.Cache.Bookmarks),
		func(bookmark *models.Bookmark) bool {
			return bookmark.UserID == userID
		},
	).([]*models.Bookmark)

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].ID < owned[j].ID
	})

	result := make([]models.Bookmark, 0, len(owned))
	for _, bookmark := range owned {
		result = append(result, *bookmark)
	}

	return result, nil
}

// UpdateBookmark applies the non-nil fields of the patch. The boolean
// reports whether the bookmark still existed at write time.
func (db *JSONDB) UpdateBookmark(
	ctx context.Context,
	bookmarkID int,
	patch models.EditBookmarkRequest,
) (*models.Bookmark, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, found := db.Cache.Bookmarks[bookmarkID]
	if !found {
		return nil, false, nil
	}

	if patch.Title != nil {
		stored.Title = *patch.Title
	}
	if patch.Link != nil {
		stored.Link = *patch.Link
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	stored.UpdatedAt = time.Now()

	result := *stored

	return &result, true, nil
}

// DeleteBookmark removes the bookmark. The boolean reports whether a row
// was actually removed.
func (db *JSONDB) DeleteBookmark(ctx context.Context, bookmarkID int) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.Cache.Bookmarks[bookmarkID]; !found {
		return false, nil
	}
	delete(db.Cache.Bookmarks, bookmarkID)

	return true, nil
}

// GetNumberOfUsers returns the total user count.
func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

// GetNumberOfBookmarks returns the total bookmark count.
func (db *JSONDB) GetNumberOfBookmarks(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Bookmarks)), nil
}

// Ping always succeeds for the file-backed storage.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the dataset to the backing file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}
