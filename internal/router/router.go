// Package router builds the HTTP surface of the bookmark API: the public
// auth routes, the bearer-protected user and bookmark routes, and the
// subnet-guarded internal stats route.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vishnucprasad/bookmarkapi/internal/auth"
	"github.com/vishnucprasad/bookmarkapi/internal/authenticator"
	"github.com/vishnucprasad/bookmarkapi/internal/gzippedhttp"
	"github.com/vishnucprasad/bookmarkapi/internal/ipchecker"
	"github.com/vishnucprasad/bookmarkapi/internal/logger"
	"github.com/vishnucprasad/bookmarkapi/internal/models"
	"github.com/vishnucprasad/bookmarkapi/internal/service"
)

type credentialer interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
}

type handler struct {
	svc         *service.Service
	credentials credentialer
	ipChecker   *ipchecker.IPChecker
	validate    *validator.Validate
}

// New assembles the chi router with the logging, gzip and authentication
// middlewares and all routes of the API.
func New(
	svc *service.Service,
	credentials credentialer,
	authService authenticator.Authenticator,
	ipChecker *ipchecker.IPChecker,
) http.Handler {
	h := &handler{
		svc:         svc,
		credentials: credentials,
		ipChecker:   ipChecker,
		validate:    validator.New(),
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(gzippedhttp.UngzipRequest)
	router.Use(gzippedhttp.GzipResponse)

	router.Post(`/auth/signup`, h.postSignup)
	router.Post(`/auth/signin`, h.postSignin)
	router.Get(`/ping`, h.getPing)
	router.Get(`/internal/stats`, h.getStats)

	router.Route(`/users`, func(protected chi.Router) {
		protected.Use(authService.AuthenticateUser)
		protected.Get(`/me`, h.getMe)
		protected.Patch(`/`, h.patchUser)
	})

	router.Route(`/bookmarks`, func(protected chi.Router) {
		protected.Use(authService.AuthenticateUser)
		protected.Get(`/`, h.getBookmarks)
		protected.Post(`/`, h.postBookmark)
		protected.Get(`/{bookmarkID}`, h.getBookmark)
		protected.Patch(`/{bookmarkID}`, h.patchBookmark)
		protected.Delete(`/{bookmarkID}`, h.deleteBookmark)
	})

	return router
}

// decodeAndValidate parses the JSON request body into dst and runs the
// validate-tag rules on the result.
func (h *handler) decodeAndValidate(request *http.Request, dst interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(dst); err != nil {
		return err
	}

	return h.validate.Struct(dst)
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugw("failed to encode the response", zap.Error(err))
	}
}

// internalError hides the failure detail from the client and logs it.
func internalError(response http.ResponseWriter, err error) {
	logger.Log.Errorw("internal error", zap.Error(err))
	http.Error(response, "internal server error", http.StatusInternalServerError)
}

func (h *handler) postSignup(response http.ResponseWriter, request *http.Request) {
	var req models.AuthRequest
	if err := h.decodeAndValidate(request, &req); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.credentials.SignUp(request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrCredentialsTaken) {
		http.Error(response, err.Error(), http.StatusForbidden)
		return
	}
	if err != nil {
		internalError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, models.TokenResponse{AccessToken: token})
}

func (h *handler) postSignin(response http.ResponseWriter, request *http.Request) {
	var req models.AuthRequest
	if err := h.decodeAndValidate(request, &req); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.credentials.SignIn(request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		http.Error(response, err.Error(), http.StatusForbidden)
		return
	}
	if err != nil {
		internalError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{AccessToken: token})
}

func (h *handler) getMe(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	usr, found, err := h.svc.GetUser(request.Context(), userID)
	if err != nil {
		internalError(response, err)
		return
	}
	if !found {
		// The token outlived the account.
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (h *handler) patchUser(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	var patch models.EditUserRequest
	if err := h.decodeAndValidate(request, &patch); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	usr, found, err := h.svc.EditUser(request.Context(), userID, patch)
	if errors.Is(err, models.ErrEmailAlreadyTaken) {
		http.Error(response, err.Error(), http.StatusForbidden)
		return
	}
	if err != nil {
		internalError(response, err)
		return
	}
	if !found {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (h *handler) getBookmarks(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	bookmarks, err := h.svc.GetUserBookmarks(request.Context(), userID)
	if err != nil {
		internalError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, bookmarks)
}

func (h *handler) getBookmark(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	bookmarkID, err := strconv.Atoi(chi.URLParam(request, "bookmarkID"))
	if err != nil {
		http.Error(response, "invalid bookmark id", http.StatusBadRequest)
		return
	}

	bookmark, err := h.svc.GetBookmarkByID(request.Context(), userID, bookmarkID)
	if err != nil {
		internalError(response, err)
		return
	}

	// A miss on this read path yields JSON null rather than a denial.
	writeJSON(response, http.StatusOK, bookmark)
}

func (h *handler) postBookmark(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req models.CreateBookmarkRequest
	if err := h.decodeAndValidate(request, &req); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	bookmark, err := h.svc.CreateBookmark(request.Context(), userID, req)
	if err != nil {
		internalError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, bookmark)
}

func (h *handler) patchBookmark(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	bookmarkID, err := strconv.Atoi(chi.URLParam(request, "bookmarkID"))
	if err != nil {
		http.Error(response, "invalid bookmark id", http.StatusBadRequest)
		return
	}

	var patch models.EditBookmarkRequest
	if err := h.decodeAndValidate(request, &patch); err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	bookmark, err := h.svc.EditBookmarkByID(request.Context(), userID, bookmarkID, patch)
	if errors.Is(err, service.ErrAccessDenied) {
		http.Error(response, err.Error(), http.StatusForbidden)
		return
	}
	if err != nil {
		internalError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, bookmark)
}

func (h *handler) deleteBookmark(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	bookmarkID, err := strconv.Atoi(chi.URLParam(request, "bookmarkID"))
	if err != nil {
		http.Error(response, "invalid bookmark id", http.StatusBadRequest)
		return
	}

	err = h.svc.DeleteBookmarkByID(request.Context(), userID, bookmarkID)
	if errors.Is(err, service.ErrAccessDenied) {
		http.Error(response, err.Error(), http.StatusForbidden)
		return
	}
	if err != nil {
		internalError(response, err)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

func (h *handler) getPing(response http.ResponseWriter, request *http.Request) {
	if err := h.svc.Ping(request.Context()); err != nil {
		internalError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (h *handler) getStats(response http.ResponseWriter, request *http.Request) {
	if h.ipChecker.IsTrustedSubnetEmpty() {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	clientIP, err := h.ipChecker.GetClientIP(request)
	if err != nil || !h.ipChecker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	stats, err := h.svc.GetStats(request.Context())
	if err != nil {
		internalError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}
