package api

import (
	"net/http"
	"strings"

	"clipstream/internal/models"
	"clipstream/internal/storage"
)

// DashboardRoutes dispatches /api/v1/dashboard/, scoped to the caller's
// channel.
func (h *Handler) DashboardRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/dashboard/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch parts[0] {
	case "stats":
		stats, err := h.Store.ChannelStats(user.ID)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, stats, "channel stats fetched")
	case "videos":
		page := parsePagination(r.URL.Query())
		params := storage.FeedParams{Skip: page.Skip, Limit: page.Limit}
		params.SortBy, params.SortAsc = parseSort(r.URL.Query())
		videos, total, err := h.Store.ChannelVideos(user.ID, params)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		if videos == nil {
			videos = []models.FeedVideo{}
		}
		writeEnvelope(w, http.StatusOK, videoFeedResponse{
			Videos:   videos,
			pageMeta: newPageMeta(page, total),
		}, "channel videos fetched")
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
