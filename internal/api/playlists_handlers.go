package api

import (
	"fmt"
	"net/http"
	"strings"

	"clipstream/internal/models"
	"clipstream/internal/storage"
)

// Playlists handles POST /api/v1/playlists.
func (h *Handler) Playlists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	playlist, err := h.Store.CreatePlaylist(user.ID, req.Name, req.Description)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, playlist, "playlist created successfully")
}

// PlaylistRoutes dispatches /api/v1/playlists/{id}, /user/{userId}, and the
// membership endpoints /{id}/videos/{videoId}.
func (h *Handler) PlaylistRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/playlists/")
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
		h.userPlaylists(w, r, parts[1])
		return
	}

	playlistID, err := validateID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(parts) == 3 && parts[1] == "videos" {
		videoID, err := validateID(parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.playlistMembership(w, r, playlistID, videoID)
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getPlaylist(w, r, playlistID)
	case http.MethodPatch:
		h.updatePlaylist(w, r, playlistID)
	case http.MethodDelete:
		h.deletePlaylist(w, r, playlistID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (h *Handler) getPlaylist(w http.ResponseWriter, r *http.Request, playlistID string) {
	playlist, exists := h.Store.GetPlaylist(playlistID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("playlist %s not found", playlistID))
		return
	}
	writeEnvelope(w, http.StatusOK, playlist, "playlist fetched")
}

func (h *Handler) userPlaylists(w http.ResponseWriter, r *http.Request, rawUserID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	userID, err := validateID(rawUserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	playlists, err := h.Store.ListPlaylists(userID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	writeEnvelope(w, http.StatusOK, playlists, "playlists fetched")
}

func (h *Handler) updatePlaylist(w http.ResponseWriter, r *http.Request, playlistID string) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	playlist, exists := h.Store.GetPlaylist(playlistID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("playlist %s not found", playlistID))
		return
	}
	if !h.requireOwner(w, playlist.OwnerID, user) {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == nil && req.Description == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	updated, err := h.Store.UpdatePlaylist(playlistID, storage.PlaylistUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, updated, "playlist updated successfully")
}

func (h *Handler) deletePlaylist(w http.ResponseWriter, r *http.Request, playlistID string) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	playlist, exists := h.Store.GetPlaylist(playlistID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("playlist %s not found", playlistID))
		return
	}
	if !h.requireOwner(w, playlist.OwnerID, user) {
		return
	}
	if err := h.Store.DeletePlaylist(playlistID); err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, nil, "playlist deleted successfully")
}

func (h *Handler) playlistMembership(w http.ResponseWriter, r *http.Request, playlistID, videoID string) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	playlist, exists := h.Store.GetPlaylist(playlistID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("playlist %s not found", playlistID))
		return
	}
	if !h.requireOwner(w, playlist.OwnerID, user) {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		updated, err := h.Store.AddPlaylistVideo(playlistID, videoID)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, updated, "video added to playlist")
	case http.MethodDelete:
		updated, err := h.Store.RemovePlaylistVideo(playlistID, videoID)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, updated, "video removed from playlist")
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}
