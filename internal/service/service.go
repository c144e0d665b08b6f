// Package service implements the bookmark access component: ownership-scoped
// CRUD over bookmark records, plus the profile and stats operations built on
// the same storage.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

type bookmarksKeeper interface {
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
}

type usersKeeper interface {
	FindUserByID(ctx context.Context, userID int) (*user.User, bool, error)

	UpdateUser(
		ctx context.Context,
		userID int,
		patch models.EditUserRequest,
	) (*user.User, bool, error)
}

type statsKeeper interface {
	GetNumberOfUsers(ctx context.Context) (int64, error)
	GetNumberOfBookmarks(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	bookmarksKeeper
	usersKeeper
	statsKeeper
	pinger
}

// ErrAccessDenied is returned by the mutation paths when the bookmark is
// absent or owned by another user. Both cases deny identically.
var ErrAccessDenied = errors.New("access to the bookmark is denied")

// Service performs ownership-checked operations on bookmarks and user
// profiles.
type Service struct {
	db storage
}

// New creates a Service on top of the given storage.
func New(db storage) *Service {
	return &Service{db: db}
}

// GetUserBookmarks returns all bookmarks owned by the user.
func (s *Service) GetUserBookmarks(ctx context.Context, userID int) ([]models.Bookmark, error) {
	return s.db.GetUserBookmarks(ctx, userID)
}

// GetBookmarkByID returns the bookmark when it exists and is owned by the
// user, and nil otherwise. Unlike the mutation paths, this read simply
// yields nothing on a miss.
func (s *Service) GetBookmarkByID(
	ctx context.Context,
	userID int,
	bookmarkID int,
) (*models.Bookmark, error) {
	bookmark, found, err := s.db.FindUserBookmark(ctx, userID, bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the bookmark: %w", err)
	}
	if !found {
		return nil, nil
	}

	return bookmark, nil
}

// CreateBookmark persists a new bookmark owned by the user and returns the
// created record including its assigned id.
func (s *Service) CreateBookmark(
	ctx context.Context,
	userID int,
	req models.CreateBookmarkRequest,
) (*models.Bookmark, error) {
	return s.db.CreateBookmark(ctx, &models.Bookmark{
		UserID:      userID,
		Title:       req.Title,
		Link:        req.Link,
		Description: req.Description,
	})
}

// EditBookmarkByID applies the partial update after verifying ownership.
// The bookmark is fetched by id alone; when it is absent or owned by
// another user the edit fails with ErrAccessDenied.
//
// The ownership check and the update are deliberately not wrapped in a
// transaction. A bookmark deleted between the two surfaces as a zero-row
// update and is reported as ErrAccessDenied, same as the absent case.
func (s *Service) EditBookmarkByID(
	ctx context.Context,
	userID int,
	bookmarkID int,
	patch models.EditBookmarkRequest,
) (*models.Bookmark, error) {
	bookmark, found, err := s.db.FindBookmarkByID(ctx, bookmarkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the bookmark: %w", err)
	}
	if !found || bookmark.UserID != userID {
		return nil, ErrAccessDenied
	}

	updated, found, err := s.db.UpdateBookmark(ctx, bookmarkID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update the bookmark: %w", err)
	}
	if !found {
		return nil, ErrAccessDenied
	}

	return updated, nil
}

// DeleteBookmarkByID removes the bookmark after the same ownership check
// and with the same denial semantics as EditBookmarkByID.
func (s *Service) DeleteBookmarkByID(ctx context.Context, userID, bookmarkID int) error {
	bookmark, found, err := s.db.FindBookmarkByID(ctx, bookmarkID)
	if err != nil {
		return fmt.Errorf("failed to fetch the bookmark: %w", err)
	}
	if !found || bookmark.UserID != userID {
		return ErrAccessDenied
	}

	removed, err := s.db.DeleteBookmark(ctx, bookmarkID)
	if err != nil {
		return fmt.Errorf("failed to delete the bookmark: %w", err)
	}
	if !removed {
		return ErrAccessDenied
	}

	return nil
}

// GetUser returns the user's profile. The boolean is false when the
// identity behind a still-valid token no longer exists.
func (s *Service) GetUser(ctx context.Context, userID int) (*user.User, bool, error) {
	return s.db.FindUserByID(ctx, userID)
}

// EditUser applies the non-nil fields of the patch to the user's profile.
// An email change colliding with another account surfaces as
// models.ErrEmailAlreadyTaken.
func (s *Service) EditUser(
	ctx context.Context,
	userID int,
	patch models.EditUserRequest,
) (*user.User, bool, error) {
	return s.db.UpdateUser(ctx, userID, patch)
}

// GetStats returns the total user and bookmark counts.
func (s *Service) GetStats(ctx context.Context) (models.Stats, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	bookmarks, err := s.db.GetNumberOfBookmarks(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	return models.Stats{
		Users:     users,
		Bookmarks: bookmarks,
	}, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
