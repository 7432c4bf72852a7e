package api

import (
	"net/http"
	"strings"

	"clipstream/internal/models"
)

// LikeRoutes dispatches /api/v1/likes/: toggle endpoints per target kind and
// the caller's liked-videos listing.
func (h *Handler) LikeRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/likes/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if parts[0] == "videos" && len(parts) == 1 {
		h.likedVideos(w, r)
		return
	}
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	kind, ok := models.ParseLikeKind(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	targetID, err := validateID(parts[1])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.toggleLike(w, r, kind, targetID)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, kind models.LikeKind, targetID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	liked, err := h.Store.ToggleLike(user.ID, kind, targetID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	message := "unliked"
	if liked {
		message = "liked"
	}
	writeEnvelope(w, http.StatusOK, map[string]bool{"liked": liked}, message)
}

func (h *Handler) likedVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	videos, err := h.Store.ListLikedVideos(user.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if videos == nil {
		videos = []models.FeedVideo{}
	}
	writeEnvelope(w, http.StatusOK, videos, "liked videos fetched")
}
