package api

import (
	"net/http"
	"strings"

	"clipstream/internal/models"
)

// SubscriptionRoutes dispatches /api/v1/subscriptions/.
func (h *Handler) SubscriptionRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/subscriptions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if parts[0] == "subscribed" && len(parts) == 1 {
		h.subscribedChannels(w, r)
		return
	}

	channelID, err := validateID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(parts) == 2 && parts[1] == "subscribers" {
		h.channelSubscribers(w, r, channelID)
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		if err := h.Store.Subscribe(user.ID, channelID); err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, nil, "subscribed successfully")
	case http.MethodDelete:
		if err := h.Store.Unsubscribe(user.ID, channelID); err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, nil, "unsubscribed successfully")
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodDelete)
	}
}

func (h *Handler) channelSubscribers(w http.ResponseWriter, r *http.Request, channelID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	subscribers, err := h.Store.ListSubscribers(channelID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if subscribers == nil {
		subscribers = []models.Owner{}
	}
	writeEnvelope(w, http.StatusOK, subscribers, "subscribers fetched")
}

func (h *Handler) subscribedChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	channels, err := h.Store.ListSubscribedChannels(user.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if channels == nil {
		channels = []models.Owner{}
	}
	writeEnvelope(w, http.StatusOK, channels, "subscribed channels fetched")
}
