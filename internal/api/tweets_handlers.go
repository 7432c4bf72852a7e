package api

import (
	"fmt"
	"net/http"
	"strings"

	"clipstream/internal/storage"
)

// Tweets handles POST /api/v1/tweets.
func (h *Handler) Tweets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tweet, err := h.Store.CreateTweet(user.ID, req.Content)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, tweet, "tweet created successfully")
}

// TweetRoutes dispatches /api/v1/tweets/user/{userId} and /api/v1/tweets/{id}.
func (h *Handler) TweetRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/tweets/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if parts[0] == "user" {
		if len(parts) != 2 {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.userTweets(w, r, parts[1])
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	tweetID, err := validateID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	tweet, exists := h.Store.GetTweet(tweetID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("tweet %s not found", tweetID))
		return
	}
	if !h.requireOwner(w, tweet.OwnerID, user) {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req struct {
			Content string `json:"content"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := h.Store.UpdateTweet(tweetID, req.Content)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, updated, "tweet updated successfully")
	case http.MethodDelete:
		if err := h.Store.DeleteTweet(tweetID); err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, nil, "tweet deleted successfully")
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}

func (h *Handler) userTweets(w http.ResponseWriter, r *http.Request, rawUserID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	userID, err := validateID(rawUserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tweets, err := h.Store.ListTweets(userID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if tweets == nil {
		tweets = []storage.TweetWithOwner{}
	}
	writeEnvelope(w, http.StatusOK, tweets, "tweets fetched")
}
