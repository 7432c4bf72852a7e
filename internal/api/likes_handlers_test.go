package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipstream/internal/models"
)

func TestToggleLikeResponseAlternates(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "maker")
	fan := registerTestUser(t, store, "fan")
	video := createPublishedVideo(t, store, owner.ID, "likeable")

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/likes/video/"+video.ID, nil), fan)
	rec := httptest.NewRecorder()
	handler.LikeRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var result map[string]bool
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode like result: %v", err)
	}
	if !result["liked"] || env.Message != "liked" {
		t.Fatalf("expected liked state, got %+v message %q", result, env.Message)
	}

	req = authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/likes/video/"+video.ID, nil), fan)
	rec = httptest.NewRecorder()
	handler.LikeRoutes(rec, req)
	env = decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode second result: %v", err)
	}
	if result["liked"] || env.Message != "unliked" {
		t.Fatalf("expected unliked state, got %+v message %q", result, env.Message)
	}
}

func TestToggleLikeUnknownKind(t *testing.T) {
	handler, store := newTestHandler(t)
	fan := registerTestUser(t, store, "confused")

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/likes/post/00000000-0000-0000-0000-000000000000", nil), fan)
	rec := httptest.NewRecorder()
	handler.LikeRoutes(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown kind, got %d", rec.Code)
	}
}

func TestLikedVideosListing(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "producer")
	fan := registerTestUser(t, store, "collector")
	video := createPublishedVideo(t, store, owner.ID, "saved")
	if _, err := store.ToggleLike(fan.ID, models.LikeVideo, video.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil), fan)
	rec := httptest.NewRecorder()
	handler.LikeRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var videos []models.FeedVideo
	if err := json.Unmarshal(env.Data, &videos); err != nil {
		t.Fatalf("decode liked videos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != video.ID {
		t.Fatalf("expected liked video in listing, got %v", videos)
	}
}
