package api

import (
	"context"
	"errors"
	"net/http"

	"clipstream/internal/models"
)

var (
	errAuthenticationRequired = errors.New("authentication required")
	errInvalidToken           = errors.New("invalid or expired token")
	errAccountNotFound        = errors.New("account not found")
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

// ContextWithUser stores the authenticated user in the provided context.
func ContextWithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user from context if present.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// AuthenticateRequest validates the access token on the request and returns
// the user.
func (h *Handler) AuthenticateRequest(r *http.Request) (models.User, error) {
	token := ExtractToken(r)
	if token == "" {
		return models.User{}, errAuthenticationRequired
	}
	claims, err := h.Tokens.ValidateAccess(token)
	if err != nil {
		return models.User{}, errInvalidToken
	}
	user, exists := h.Store.GetUser(claims.Subject)
	if !exists {
		return models.User{}, errAccountNotFound
	}
	return user, nil
}

func (h *Handler) requireAuthenticatedUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return models.User{}, false
	}
	return user, true
}

// isOwner is the single ownership check applied before every mutation on an
// owned resource.
func isOwner(resourceOwnerID, callerID string) bool {
	return resourceOwnerID != "" && resourceOwnerID == callerID
}

func (h *Handler) requireOwner(w http.ResponseWriter, resourceOwnerID string, caller models.User) bool {
	if !isOwner(resourceOwnerID, caller.ID) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}
