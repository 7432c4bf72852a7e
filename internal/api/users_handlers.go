package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"clipstream/internal/models"
	"clipstream/internal/observability/metrics"
	"clipstream/internal/storage"
)

const minPasswordLength = 8

// validateID rejects identifiers that are not well-formed UUIDs before they
// reach the datastore.
func validateID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", fmt.Errorf("invalid id %q", raw)
	}
	return trimmed, nil
}

// UserRoutes dispatches everything under /api/v1/users/.
func (h *Handler) UserRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/users/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch parts[0] {
	case "register":
		h.register(w, r)
	case "login":
		h.login(w, r)
	case "refresh-token":
		h.refreshToken(w, r)
	case "logout":
		h.logout(w, r)
	case "change-password":
		h.changePassword(w, r)
	case "current-user":
		h.currentUser(w, r)
	case "update-account":
		h.updateAccount(w, r)
	case "avatar":
		h.updateUserImage(w, r, "avatar")
	case "cover-image":
		h.updateUserImage(w, r, "coverImage")
	case "channel":
		if len(parts) != 2 {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.channelProfile(w, r, parts[1])
	case "watch-history":
		h.watchHistory(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	var avatarURL, coverURL string

	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := h.parseMultipart(r, "avatar", "coverImage")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer form.cleanup()

		req.Username = form.value("username")
		req.Email = form.value("email")
		req.FullName = form.value("fullName")
		req.Password = form.values["password"]

		if avatar := form.files["avatar"]; avatar != nil {
			url, uploadErr := h.forwardToMedia(r.Context(), "avatar", "avatars/"+uuid.NewString(), avatar)
			if uploadErr != nil {
				h.logger().Error("avatar upload failed", "error", uploadErr)
				writeError(w, http.StatusInternalServerError, "failed to store avatar")
				return
			}
			avatarURL = url
		}
		if cover := form.files["coverImage"]; cover != nil {
			url, uploadErr := h.forwardToMedia(r.Context(), "cover", "covers/"+uuid.NewString(), cover)
			if uploadErr != nil {
				h.logger().Error("cover upload failed", "error", uploadErr)
				writeError(w, http.StatusInternalServerError, "failed to store cover image")
				return
			}
			coverURL = url
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}

	user, err := h.Store.CreateUser(storage.CreateUserParams{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  req.Password,
		AvatarURL: avatarURL,
		CoverURL:  coverURL,
	})
	if err != nil {
		writeStorageError(w, err)
		return
	}

	writeEnvelope(w, http.StatusCreated, newUserResponse(user), "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "username or email is required")
		return
	}

	user, err := h.Store.AuthenticateUser(identifier, req.Password)
	if err != nil {
		metrics.ObserveAuthEvent("login_failure")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.logger().Error("token issue failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	metrics.ObserveAuthEvent("login_success")
	setAuthCookies(w, r, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)
	writeEnvelope(w, http.StatusOK, loginResponse{
		User:         newUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	token := ""
	if r.Body != nil && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		if cookie, err := r.Cookie(refreshCookieName); err == nil {
			token = strings.TrimSpace(cookie.Value)
		}
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "refresh token required")
		return
	}

	userID, err := h.Tokens.Redeem(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	user, exists := h.Store.GetUser(userID)
	if !exists {
		writeError(w, http.StatusUnauthorized, "account not found")
		return
	}

	pair, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.logger().Error("token issue failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	metrics.ObserveAuthEvent("token_refresh")
	setAuthCookies(w, r, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)
	writeEnvelope(w, http.StatusOK, map[string]string{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "tokens refreshed")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	if err := h.Tokens.RevokeAll(user.ID); err != nil {
		h.logger().Error("revoke refresh tokens failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	metrics.ObserveAuthEvent("logout")
	clearAuthCookies(w, r)
	writeEnvelope(w, http.StatusOK, nil, "logged out successfully")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}
	if err := h.Store.ChangeUserPassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "invalid old password")
			return
		}
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, nil, "password changed successfully")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, newUserResponse(user), "current user fetched")
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FullName == nil && req.Email == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	updated, err := h.Store.UpdateUser(user.ID, storage.UserUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, newUserResponse(updated), "account updated successfully")
}

// updateUserImage handles both PATCH /users/avatar and /users/cover-image;
// field names the multipart file part to read.
func (h *Handler) updateUserImage(w http.ResponseWriter, r *http.Request, field string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	form, err := h.parseMultipart(r, field)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer form.cleanup()

	file := form.files[field]
	if file == nil {
		writeError(w, http.StatusBadRequest, field+" file is required")
		return
	}

	kind := "avatar"
	prefix := "avatars/"
	if field == "coverImage" {
		kind = "cover"
		prefix = "covers/"
	}
	url, err := h.forwardToMedia(r.Context(), kind, prefix+uuid.NewString(), file)
	if err != nil {
		h.logger().Error("image upload failed", "error", err, "kind", kind)
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	update := storage.UserUpdate{}
	if field == "coverImage" {
		update.CoverURL = &url
	} else {
		update.AvatarURL = &url
	}
	updated, err := h.Store.UpdateUser(user.ID, update)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, newUserResponse(updated), kind+" updated successfully")
}

type channelProfileResponse struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	Avatar           string `json:"avatar,omitempty"`
	CoverImage       string `json:"coverImage,omitempty"`
	SubscribersCount int    `json:"subscribersCount"`
	SubscribedCount  int    `json:"channelsSubscribedToCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

func (h *Handler) channelProfile(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if strings.TrimSpace(username) == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	channel, exists := h.Store.FindUserByUsername(username)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("channel %s not found", username))
		return
	}

	subscribed, err := h.Store.ListSubscribedChannels(channel.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	profile := channelProfileResponse{
		ID:               channel.ID,
		Username:         channel.Username,
		FullName:         channel.FullName,
		Avatar:           channel.AvatarURL,
		CoverImage:       channel.CoverURL,
		SubscribersCount: h.Store.CountSubscribers(channel.ID),
		SubscribedCount:  len(subscribed),
	}
	if caller, ok := UserFromContext(r.Context()); ok {
		profile.IsSubscribed = h.Store.IsSubscribed(caller.ID, channel.ID)
	}
	writeEnvelope(w, http.StatusOK, profile, "channel profile fetched")
}

func (h *Handler) watchHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	history, err := h.Store.WatchHistory(user.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if history == nil {
		history = []models.FeedVideo{}
	}
	writeEnvelope(w, http.StatusOK, history, "watch history fetched")
}
