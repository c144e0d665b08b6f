// Package auth implements the credential and session component: signup,
// signin, JWT issuance and the bearer-token middleware protecting the
// resource routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishnucprasad/bookmarkapi/internal/logger"
	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/passhash"
	"github.com/vishnucprasad/bookmarkapi/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (int, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
}

var (
	// ErrCredentialsTaken is returned by SignUp when the email is already
	// bound to an existing account.
	ErrCredentialsTaken = errors.New("credentials taken")

	// ErrInvalidCredentials is returned by SignIn for an unknown email and
	// for a wrong password alike, so callers cannot tell which emails are
	// registered.
	ErrInvalidCredentials = errors.New("credentials incorrect")
)

// Claims are the JWT claims carried by issued access tokens: the standard
// set plus the subject's email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key under which the middleware stores the
// authenticated user's ID.
const UserIDKey ContextKey = "userID"

// Auth establishes user identity and issues bearer credentials. The token
// itself is the session; no server-side session state is kept.
type Auth struct {
	db            userKeeper
	signingSecret []byte
	tokenTTL      time.Duration
	hashParams    passhash.Params
}

// New creates an Auth component on top of the given user storage.
func New(
	db userKeeper,
	signingSecret []byte,
	tokenTTL time.Duration,
	hashParams passhash.Params,
) *Auth {
	if hashParams.SaltLength == 0 {
		hashParams.SaltLength = passhash.DefaultSaltLength
	}
	if hashParams.KeyLength == 0 {
		hashParams.KeyLength = passhash.DefaultKeyLength
	}

	return &Auth{
		db:            db,
		signingSecret: signingSecret,
		tokenTTL:      tokenTTL,
		hashParams:    hashParams,
	}
}

// SignUp hashes the password, persists a new user and returns an access
// token for the fresh identity. A uniqueness conflict on the email surfaces
// as ErrCredentialsTaken; no partial user row remains in that case.
func (a *Auth) SignUp(ctx context.Context, email, password string) (string, error) {
	hash, err := passhash.Hash(password, a.hashParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash the password: %w", err)
	}

	userID, err := a.db.CreateUser(ctx, &user.User{
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, models.ErrEmailAlreadyTaken) {
		return "", ErrCredentialsTaken
	}
	if err != nil {
		return "", fmt.Errorf("failed to create the user: %w", err)
	}

	return a.IssueToken(userID, email)
}

// SignIn verifies the email/password pair and returns an access token.
func (a *Auth) SignIn(ctx context.Context, email, password string) (string, error) {
	usr, found, err := a.db.FindUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up the user: %w", err)
	}
	if !found {
		return "", ErrInvalidCredentials
	}

	if !passhash.Verify(usr.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return a.IssueToken(usr.ID, usr.Email)
}

// IssueToken builds a signed JWT whose payload carries the user id as the
// subject and the email, expiring tokenTTL from now.
func (a *Auth) IssueToken(userID int, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(a.signingSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign the token: %w", err)
	}

	return tokenString, nil
}

// AuthenticateUser is an HTTP middleware that authenticates incoming
// requests by the bearer token in the Authorization header. Requests with a
// missing, invalid or expired token are rejected with 401; otherwise the
// user ID from the token is stored in the request context.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, err := a.userIDFromRequest(request)
		if err != nil {
			logger.Log.Debugw("rejecting unauthenticated request", zap.Error(err))
			response.WriteHeader(http.StatusUnauthorized)

			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user's ID stored by the
// AuthenticateUser middleware.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)

	return userID, ok
}

func (a *Auth) userIDFromRequest(request *http.Request) (int, error) {
	header := request.Header.Get("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return 0, errors.New("missing bearer token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecret, nil
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to parse the token: %w", err)
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, fmt.Errorf("malformed subject claim: %w", err)
	}

	return userID, nil
}
