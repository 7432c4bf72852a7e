package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clipstream/internal/models"
	"clipstream/internal/observability/metrics"
	"clipstream/internal/storage"
)

type videoFeedResponse struct {
	Videos []models.FeedVideo `json:"videos"`
	pageMeta
}

// Videos handles the /api/v1/videos collection: the public feed and video
// creation.
func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.videoFeed(w, r)
	case http.MethodPost:
		h.createVideo(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) videoFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parsePagination(query)

	params := storage.FeedParams{
		Query:         strings.TrimSpace(query.Get("query")),
		PublishedOnly: true,
		Skip:          page.Skip,
		Limit:         page.Limit,
	}
	if ownerID := strings.TrimSpace(query.Get("userId")); ownerID != "" {
		validated, err := validateID(ownerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		params.OwnerID = validated
	}
	params.SortBy, params.SortAsc = parseSort(query)

	videos, total, err := h.Store.VideoFeed(params)
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
	}, "videos fetched")
}

func parseSort(query url.Values) (string, bool) {
	sortBy := strings.TrimSpace(query.Get("sortBy"))
	switch sortBy {
	case "views", "duration", "title", "createdAt":
	default:
		sortBy = "createdAt"
	}
	asc := strings.EqualFold(strings.TrimSpace(query.Get("sortType")), "asc")
	return sortBy, asc
}

func (h *Handler) createVideo(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	form, err := h.parseMultipart(r, "videoFile", "thumbnail")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer form.cleanup()

	title := form.value("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	mediaFile := form.files["videoFile"]
	if mediaFile == nil {
		writeError(w, http.StatusBadRequest, "videoFile is required")
		return
	}
	thumbnailFile := form.files["thumbnail"]
	if thumbnailFile == nil {
		writeError(w, http.StatusBadRequest, "thumbnail is required")
		return
	}

	duration := 0.0
	if raw := form.value("duration"); raw != "" {
		parsed, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid duration")
			return
		}
		duration = parsed
	}

	// Both assets go to the media service in parallel; either failure
	// aborts the whole create.
	assetID := uuid.NewString()
	var mediaURL, thumbnailURL string
	group, ctx := errgroup.WithContext(r.Context())
	group.Go(func() error {
		url, uploadErr := h.forwardToMedia(ctx, "video", "videos/"+assetID+"/media", mediaFile)
		if uploadErr != nil {
			return uploadErr
		}
		mediaURL = url
		return nil
	})
	group.Go(func() error {
		url, uploadErr := h.forwardToMedia(ctx, "thumbnail", "videos/"+assetID+"/thumbnail", thumbnailFile)
		if uploadErr != nil {
			return uploadErr
		}
		thumbnailURL = url
		return nil
	})
	if err := group.Wait(); err != nil {
		h.logger().Error("video upload failed", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "failed to store media")
		return
	}

	video, err := h.Store.CreateVideo(storage.CreateVideoParams{
		OwnerID:      user.ID,
		Title:        title,
		Description:  form.value("description"),
		MediaURL:     mediaURL,
		ThumbnailURL: thumbnailURL,
		Duration:     duration,
	})
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, video, "video published successfully")
}

// VideoRoutes dispatches /api/v1/videos/{id} and its subresources.
func (h *Handler) VideoRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/videos/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "video id missing")
		return
	}
	videoID, err := validateID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "toggle-publish":
			h.toggleVideoPublish(w, r, videoID)
		case "comments":
			h.videoComments(w, r, videoID)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}
	if len(parts) > 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getVideo(w, r, videoID)
	case http.MethodPatch:
		h.updateVideo(w, r, videoID)
	case http.MethodDelete:
		h.deleteVideo(w, r, videoID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (h *Handler) getVideo(w http.ResponseWriter, r *http.Request, videoID string) {
	video, exists := h.Store.GetVideo(videoID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("video %s not found", videoID))
		return
	}
	caller, authenticated := UserFromContext(r.Context())
	if !video.IsPublished && (!authenticated || !isOwner(video.OwnerID, caller.ID)) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("video %s not found", videoID))
		return
	}

	video, err := h.Store.AddVideoView(videoID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	metrics.ObserveVideoView()

	if authenticated {
		if err := h.Store.RecordWatchHistory(caller.ID, videoID); err != nil {
			h.logger().Warn("record watch history failed", "error", err, "user_id", caller.ID, "video_id", videoID)
		}
	}

	item := models.FeedVideo{Video: video, LikesCount: h.Store.CountLikes(models.LikeVideo, videoID)}
	if owner, ok := h.Store.GetUser(video.OwnerID); ok {
		item.Owner = models.OwnerProjection(owner)
	}
	writeEnvelope(w, http.StatusOK, item, "video fetched")
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *Handler) updateVideo(w http.ResponseWriter, r *http.Request, videoID string) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	video, exists := h.Store.GetVideo(videoID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("video %s not found", videoID))
		return
	}
	if !h.requireOwner(w, video.OwnerID, user) {
		return
	}

	update := storage.VideoUpdate{}
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := h.parseMultipart(r, "thumbnail")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer form.cleanup()
		if title, exists := form.values["title"]; exists {
			update.Title = &title
		}
		if description, exists := form.values["description"]; exists {
			update.Description = &description
		}
		if thumbnail := form.files["thumbnail"]; thumbnail != nil {
			url, uploadErr := h.forwardToMedia(r.Context(), "thumbnail", "videos/"+videoID+"/thumbnail-"+uuid.NewString(), thumbnail)
			if uploadErr != nil {
				h.logger().Error("thumbnail upload failed", "error", uploadErr, "video_id", videoID)
				writeError(w, http.StatusInternalServerError, "failed to store thumbnail")
				return
			}
			update.ThumbnailURL = &url
		}
	} else {
		var req updateVideoRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.Title = req.Title
		update.Description = req.Description
	}

	if update.Title == nil && update.Description == nil && update.ThumbnailURL == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	updated, err := h.Store.UpdateVideo(videoID, update)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, updated, "video updated successfully")
}

func (h *Handler) deleteVideo(w http.ResponseWriter, r *http.Request, videoID string) {
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	video, exists := h.Store.GetVideo(videoID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("video %s not found", videoID))
		return
	}
	if !h.requireOwner(w, video.OwnerID, user) {
		return
	}
	if err := h.Store.DeleteVideo(videoID); err != nil {
		writeStorageError(w, err)
		return
	}

	// Best-effort asset cleanup; the metadata delete has already succeeded.
	client := h.mediaClient()
	if client.Enabled() {
		for _, assetURL := range []string{video.MediaURL, video.ThumbnailURL} {
			key := mediaKeyFromURL(assetURL)
			if key == "" {
				continue
			}
			if err := client.Delete(r.Context(), key); err != nil {
				h.logger().Warn("media delete failed", "error", err, "key", key)
			}
		}
	}
	writeEnvelope(w, http.StatusOK, nil, "video deleted successfully")
}

// mediaKeyFromURL recovers the object key from a public asset URL by taking
// the path from the "videos/" segment onward.
func mediaKeyFromURL(assetURL string) string {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return ""
	}
	path := strings.TrimLeft(parsed.Path, "/")
	if idx := strings.Index(path, "videos/"); idx >= 0 {
		return path[idx:]
	}
	return ""
}

func (h *Handler) toggleVideoPublish(w http.ResponseWriter, r *http.Request, videoID string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	user, ok := h.requireAuthenticatedUser(w, r)
	if !ok {
		return
	}
	video, exists := h.Store.GetVideo(videoID)
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("video %s not found", videoID))
		return
	}
	if !h.requireOwner(w, video.OwnerID, user) {
		return
	}
	updated, err := h.Store.ToggleVideoPublish(videoID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	message := "video unpublished"
	if updated.IsPublished {
		message = "video published"
	}
	writeEnvelope(w, http.StatusOK, updated, message)
}
