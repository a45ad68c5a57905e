package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/username/fintrack/backend/src/identity"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/model"
	"github.com/username/fintrack/backend/src/security"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

type contextKey string

const userIDContextKey contextKey = "userID"

type UserHandler struct {
	authService *security.AuthService
	identity    *identity.Service
	forms       *services.FormStore
	db          *sql.DB
}

func NewUserHandler(authService *security.AuthService, identityService *identity.Service, forms *services.FormStore, db *sql.DB) *UserHandler {
	return &UserHandler{
		authService: authService,
		identity:    identityService,
		forms:       forms,
		db:          db,
	}
}

// bearerToken extracts the token from the Authorization header. A header
// without the Bearer prefix is taken as the raw token.
func bearerToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(r.Context(), h.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			utils.SendJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to load user", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load user", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

// LogoutUserHandler signs the user out and drops their form draft. It always
// answers 204: a sign-out that could not reach the provider still ends the
// local session.
func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	if userID, ok := GetUserIDFromContext(r.Context()); ok && h.forms != nil {
		h.forms.Reset(userID)
	}
	h.identity.SignOut(r.Context(), tokenString)
	w.WriteHeader(http.StatusNoContent)
}

// GetUserIDFromContext retrieves the userID set by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}
