package api

import (
	"fmt"
	"net/http"
	"strings"

	"clipstream/internal/storage"
)

type commentListResponse struct {
	Comments []storage.CommentWithOwner `json:"comments"`
	pageMeta
}

// videoComments handles GET (public listing) and POST (authenticated create)
// on /api/v1/videos/{id}/comments.
func (h *Handler) videoComments(w http.ResponseWriter, r *http.Request, videoID string) {
	switch r.Method {
	case http.MethodGet:
		page := parsePagination(r.URL.Query())
		comments, total, err := h.Store.ListComments(videoID, page.Skip, page.Limit)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		if comments == nil {
			comments = []storage.CommentWithOwner{}
		}
		writeEnvelope(w, http.StatusOK, commentListResponse{
			Comments: comments,
			pageMeta: newPageMeta(page, total),
		}, "comments fetched")
	case http.MethodPost:
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
		comment, err := h.Store.CreateComment(videoID, user.ID, req.Content)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusCreated, comment, "comment added successfully")
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// CommentRoutes dispatches PATCH/DELETE on /api/v1/comments/{id}.
func (h *Handler) CommentRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/comments/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 1 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "comment id missing")
		return
	}
	commentID, err := validateID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	comment, exists := h.Store.GetComment(commentID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("comment %s not found", commentID))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		if !h.requireOwner(w, comment.OwnerID, user) {
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := h.Store.UpdateComment(commentID, req.Content)
		if err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, updated, "comment updated successfully")
	case http.MethodDelete:
		// The comment author or the owner of the commented video may delete.
		allowed := isOwner(comment.OwnerID, user.ID)
		if !allowed {
			if video, ok := h.Store.GetVideo(comment.VideoID); ok && isOwner(video.OwnerID, user.ID) {
				allowed = true
			}
		}
		if !allowed {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		if err := h.Store.DeleteComment(commentID); err != nil {
			writeStorageError(w, err)
			return
		}
		writeEnvelope(w, http.StatusOK, nil, "comment deleted successfully")
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}
