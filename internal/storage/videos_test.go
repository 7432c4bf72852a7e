package storage

import (
	"errors"
	"testing"

	"clipstream/internal/models"
)

func TestCreateVideoDefaultsToPublished(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "uploader")

	video, err := store.CreateVideo(CreateVideoParams{
		OwnerID:      ownerID,
		Title:        "Launch",
		Description:  "first upload",
		MediaURL:     "/media/launch",
		ThumbnailURL: "/media/launch-thumb",
		Duration:     12.5,
	})
	if err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	if !video.IsPublished {
		t.Fatalf("expected new video to be published")
	}
	if video.Views != 0 {
		t.Fatalf("expected zero views, got %d", video.Views)
	}
}

func TestAddVideoViewIncrements(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "viewer")
	videoID := createTestVideo(t, store, ownerID, "counted")

	for i := 0; i < 3; i++ {
		if _, err := store.AddVideoView(videoID); err != nil {
			t.Fatalf("AddVideoView: %v", err)
		}
	}
	video, ok := store.GetVideo(videoID)
	if !ok {
		t.Fatalf("expected video %s", videoID)
	}
	if video.Views != 3 {
		t.Fatalf("expected 3 views, got %d", video.Views)
	}
}

func TestToggleVideoPublishFlips(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "toggler")
	videoID := createTestVideo(t, store, ownerID, "flip")

	video, err := store.ToggleVideoPublish(videoID)
	if err != nil {
		t.Fatalf("ToggleVideoPublish: %v", err)
	}
	if video.IsPublished {
		t.Fatalf("expected video to be unpublished after first toggle")
	}
	video, err = store.ToggleVideoPublish(videoID)
	if err != nil {
		t.Fatalf("ToggleVideoPublish second: %v", err)
	}
	if !video.IsPublished {
		t.Fatalf("expected video to be published after second toggle")
	}
}

func TestUpdateVideoPartialFields(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "editor")
	videoID := createTestVideo(t, store, ownerID, "draft")

	title := "Final title"
	updated, err := store.UpdateVideo(videoID, VideoUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateVideo: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("expected title %q, got %q", title, updated.Title)
	}
	if updated.Description != "about draft" {
		t.Fatalf("expected description to be untouched, got %q", updated.Description)
	}

	if _, err := store.UpdateVideo("missing", VideoUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteVideoCascades(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "owner")
	viewerID := createTestUser(t, store, "watcher")
	videoID := createTestVideo(t, store, ownerID, "doomed")

	comment, err := store.CreateComment(videoID, viewerID, "nice one")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if _, err := store.ToggleLike(viewerID, models.LikeVideo, videoID); err != nil {
		t.Fatalf("ToggleLike video: %v", err)
	}
	if _, err := store.ToggleLike(ownerID, models.LikeComment, comment.ID); err != nil {
		t.Fatalf("ToggleLike comment: %v", err)
	}
	playlist, err := store.CreatePlaylist(viewerID, "favs", "")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if _, err := store.AddPlaylistVideo(playlist.ID, videoID); err != nil {
		t.Fatalf("AddPlaylistVideo: %v", err)
	}
	if err := store.RecordWatchHistory(viewerID, videoID); err != nil {
		t.Fatalf("RecordWatchHistory: %v", err)
	}

	if err := store.DeleteVideo(videoID); err != nil {
		t.Fatalf("DeleteVideo: %v", err)
	}

	if _, ok := store.GetVideo(videoID); ok {
		t.Fatalf("expected video to be gone")
	}
	if _, ok := store.GetComment(comment.ID); ok {
		t.Fatalf("expected comment to be cascaded")
	}
	if count := store.CountLikes(models.LikeVideo, videoID); count != 0 {
		t.Fatalf("expected video likes removed, got %d", count)
	}
	if count := store.CountLikes(models.LikeComment, comment.ID); count != 0 {
		t.Fatalf("expected comment likes removed, got %d", count)
	}
	refreshed, ok := store.GetPlaylist(playlist.ID)
	if !ok {
		t.Fatalf("expected playlist to survive")
	}
	if len(refreshed.VideoIDs) != 0 {
		t.Fatalf("expected playlist membership removed, got %v", refreshed.VideoIDs)
	}
	history, err := store.WatchHistory(viewerID)
	if err != nil {
		t.Fatalf("WatchHistory: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected watch history cleared, got %d entries", len(history))
	}
}
