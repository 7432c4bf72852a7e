package storage

import (
	"errors"
	"testing"
)

func TestCreatePlaylistEnforcesNamePerOwner(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "collector")
	otherID := createTestUser(t, store, "rival")

	if _, err := store.CreatePlaylist(ownerID, "Watch Later", ""); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if _, err := store.CreatePlaylist(ownerID, "watch later", ""); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for same owner, got %v", err)
	}
	if _, err := store.CreatePlaylist(otherID, "Watch Later", ""); err != nil {
		t.Fatalf("expected other owner to reuse the name: %v", err)
	}
}

func TestPlaylistMembership(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "builder")
	videoID := createTestVideo(t, store, ownerID, "clip")
	playlist, err := store.CreatePlaylist(ownerID, "Mix", "")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	updated, err := store.AddPlaylistVideo(playlist.ID, videoID)
	if err != nil {
		t.Fatalf("AddPlaylistVideo: %v", err)
	}
	if len(updated.VideoIDs) != 1 || updated.VideoIDs[0] != videoID {
		t.Fatalf("expected video in playlist, got %v", updated.VideoIDs)
	}

	if _, err := store.AddPlaylistVideo(playlist.ID, videoID); !errors.Is(err, ErrVideoInPlaylist) {
		t.Fatalf("expected ErrVideoInPlaylist, got %v", err)
	}

	updated, err = store.RemovePlaylistVideo(playlist.ID, videoID)
	if err != nil {
		t.Fatalf("RemovePlaylistVideo: %v", err)
	}
	if len(updated.VideoIDs) != 0 {
		t.Fatalf("expected empty playlist, got %v", updated.VideoIDs)
	}

	if _, err := store.RemovePlaylistVideo(playlist.ID, videoID); !errors.Is(err, ErrVideoNotInPlaylist) {
		t.Fatalf("expected ErrVideoNotInPlaylist, got %v", err)
	}
}

func TestUpdateAndDeletePlaylist(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "renamer")
	playlist, err := store.CreatePlaylist(ownerID, "Old name", "desc")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	name := "New name"
	updated, err := store.UpdatePlaylist(playlist.ID, PlaylistUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdatePlaylist: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected name %q, got %q", name, updated.Name)
	}
	if updated.Description != "desc" {
		t.Fatalf("expected description untouched, got %q", updated.Description)
	}

	if err := store.DeletePlaylist(playlist.ID); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}
	if _, ok := store.GetPlaylist(playlist.ID); ok {
		t.Fatalf("expected playlist to be gone")
	}
	if err := store.DeletePlaylist(playlist.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListPlaylistsScopedToOwner(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "curating")
	otherID := createTestUser(t, store, "elsewhere")
	if _, err := store.CreatePlaylist(ownerID, "Mine", ""); err != nil {
		t.Fatalf("CreatePlaylist mine: %v", err)
	}
	if _, err := store.CreatePlaylist(otherID, "Theirs", ""); err != nil {
		t.Fatalf("CreatePlaylist theirs: %v", err)
	}

	playlists, err := store.ListPlaylists(ownerID)
	if err != nil {
		t.Fatalf("ListPlaylists: %v", err)
	}
	if len(playlists) != 1 || playlists[0].Name != "Mine" {
		t.Fatalf("expected only the owner's playlist, got %v", playlists)
	}
}
