package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipstream/internal/models"
)

func TestPlaylistLifecycle(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "curator")
	video := createPublishedVideo(t, store, owner.ID, "collected")

	req := authedRequest(jsonRequest(t, http.MethodPost, "/api/v1/playlists", map[string]string{
		"name":        "Favourites",
		"description": "the good ones",
	}), owner)
	rec := httptest.NewRecorder()
	handler.Playlists(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var playlist models.Playlist
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}

	// Add the video, then adding it again is a client error.
	path := "/api/v1/playlists/" + playlist.ID + "/videos/" + video.ID
	req = authedRequest(httptest.NewRequest(http.MethodPatch, path, nil), owner)
	rec = httptest.NewRecorder()
	handler.PlaylistRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on add, got %d (%s)", rec.Code, rec.Body.String())
	}

	req = authedRequest(httptest.NewRequest(http.MethodPatch, path, nil), owner)
	rec = httptest.NewRecorder()
	handler.PlaylistRoutes(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 on duplicate add, got %d", rec.Code)
	}

	req = authedRequest(httptest.NewRequest(http.MethodDelete, path, nil), owner)
	rec = httptest.NewRecorder()
	handler.PlaylistRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on remove, got %d", rec.Code)
	}

	req = authedRequest(httptest.NewRequest(http.MethodDelete, path, nil), owner)
	rec = httptest.NewRecorder()
	handler.PlaylistRoutes(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 on absent remove, got %d", rec.Code)
	}
}

func TestPlaylistMutationsForbiddenForNonOwner(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "possessive")
	intruder := registerTestUser(t, store, "meddler")
	playlist, err := store.CreatePlaylist(owner.ID, "Private mix", "")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	req := authedRequest(jsonRequest(t, http.MethodPatch, "/api/v1/playlists/"+playlist.ID, map[string]string{
		"name": "stolen",
	}), intruder)
	rec := httptest.NewRecorder()
	handler.PlaylistRoutes(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	// Reads stay public.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/playlists/"+playlist.ID, nil)
	rec = httptest.NewRecorder()
	handler.PlaylistRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on public read, got %d", rec.Code)
	}
}

func TestUserPlaylistsListing(t *testing.T) {
	handler, store := newTestHandler(t)
	owner := registerTestUser(t, store, "organizer")
	if _, err := store.CreatePlaylist(owner.ID, "One", ""); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/user/"+owner.ID, nil)
	rec := httptest.NewRecorder()
	handler.PlaylistRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var playlists []models.Playlist
	if err := json.Unmarshal(env.Data, &playlists); err != nil {
		t.Fatalf("decode playlists: %v", err)
	}
	if len(playlists) != 1 || playlists[0].Name != "One" {
		t.Fatalf("unexpected playlists %v", playlists)
	}
}
