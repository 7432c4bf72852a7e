package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"clipstream/internal/models"
)

// PlaylistUpdate represents the playlist fields that can be patched. Nil
// fields are left untouched.
type PlaylistUpdate struct {
	Name        *string
	Description *string
}

var (
	// ErrVideoInPlaylist reports an add of a video already present.
	ErrVideoInPlaylist = errors.New("video already in playlist")
	// ErrVideoNotInPlaylist reports a removal of a video not present.
	ErrVideoNotInPlaylist = errors.New("video not found in playlist")
)

func normalizePlaylistName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Storage) CreatePlaylist(ownerID, name, description string) (models.Playlist, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return models.Playlist{}, errors.New("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[ownerID]; !ok {
		return models.Playlist{}, fmt.Errorf("user %s: %w", ownerID, ErrNotFound)
	}
	normalized := normalizePlaylistName(trimmedName)
	for _, playlist := range s.data.Playlists {
		if playlist.OwnerID == ownerID && normalizePlaylistName(playlist.Name) == normalized {
			return models.Playlist{}, fmt.Errorf("playlist %q %w", trimmedName, ErrDuplicate)
		}
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:          generateID(),
		OwnerID:     ownerID,
		Name:        trimmedName,
		Description: strings.TrimSpace(description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.data.Playlists[playlist.ID] = playlist
	if err := s.persist(); err != nil {
		delete(s.data.Playlists, playlist.ID)
		return models.Playlist{}, err
	}
	return playlist, nil
}

func (s *Storage) GetPlaylist(id string) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playlist, ok := s.data.Playlists[id]
	return playlist, ok
}

func (s *Storage) UpdatePlaylist(id string, update PlaylistUpdate) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.data.Playlists[id]
	if !ok {
		return models.Playlist{}, fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}

	original := playlist
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return models.Playlist{}, errors.New("name cannot be empty")
		}
		normalized := normalizePlaylistName(name)
		for existingID, existing := range s.data.Playlists {
			if existingID != id && existing.OwnerID == playlist.OwnerID &&
				normalizePlaylistName(existing.Name) == normalized {
				return models.Playlist{}, fmt.Errorf("playlist %q %w", name, ErrDuplicate)
			}
		}
		playlist.Name = name
	}
	if update.Description != nil {
		playlist.Description = strings.TrimSpace(*update.Description)
	}

	playlist.UpdatedAt = time.Now().UTC()
	s.data.Playlists[id] = playlist
	if err := s.persist(); err != nil {
		s.data.Playlists[id] = original
		return models.Playlist{}, err
	}
	return playlist, nil
}

func (s *Storage) DeletePlaylist(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.data.Playlists[id]
	if !ok {
		return fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}

	delete(s.data.Playlists, id)
	if err := s.persist(); err != nil {
		s.data.Playlists[id] = playlist
		return err
	}
	return nil
}

// ListPlaylists returns a user's playlists, newest first.
func (s *Storage) ListPlaylists(ownerID string) ([]models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[ownerID]; !ok {
		return nil, fmt.Errorf("user %s: %w", ownerID, ErrNotFound)
	}

	playlists := make([]models.Playlist, 0)
	for _, playlist := range s.data.Playlists {
		if playlist.OwnerID == ownerID {
			playlists = append(playlists, playlist)
		}
	}
	sort.Slice(playlists, func(i, j int) bool {
		return playlists[i].CreatedAt.After(playlists[j].CreatedAt)
	})
	return playlists, nil
}

// AddPlaylistVideo appends the video to the playlist. Adding a video already
// present fails with ErrVideoInPlaylist.
func (s *Storage) AddPlaylistVideo(id, videoID string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.data.Playlists[id]
	if !ok {
		return models.Playlist{}, fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}
	if _, ok := s.data.Videos[videoID]; !ok {
		return models.Playlist{}, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	for _, existing := range playlist.VideoIDs {
		if existing == videoID {
			return models.Playlist{}, ErrVideoInPlaylist
		}
	}

	original := playlist
	playlist.VideoIDs = append(append([]string(nil), playlist.VideoIDs...), videoID)
	playlist.UpdatedAt = time.Now().UTC()
	s.data.Playlists[id] = playlist
	if err := s.persist(); err != nil {
		s.data.Playlists[id] = original
		return models.Playlist{}, err
	}
	return playlist, nil
}

// RemovePlaylistVideo removes the video from the playlist. Removing a video
// not present fails with ErrVideoNotInPlaylist.
func (s *Storage) RemovePlaylistVideo(id, videoID string) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.data.Playlists[id]
	if !ok {
		return models.Playlist{}, fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}

	filtered := make([]string, 0, len(playlist.VideoIDs))
	removed := false
	for _, existing := range playlist.VideoIDs {
		if existing == videoID {
			removed = true
			continue
		}
		filtered = append(filtered, existing)
	}
	if !removed {
		return models.Playlist{}, ErrVideoNotInPlaylist
	}

	original := playlist
	playlist.VideoIDs = filtered
	playlist.UpdatedAt = time.Now().UTC()
	s.data.Playlists[id] = playlist
	if err := s.persist(); err != nil {
		s.data.Playlists[id] = original
		return models.Playlist{}, err
	}
	return playlist, nil
}
