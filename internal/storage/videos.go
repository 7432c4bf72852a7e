package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clipstream/internal/models"
)

// CreateVideoParams captures the attributes set when publishing new media.
type CreateVideoParams struct {
	OwnerID      string
	Title        string
	Description  string
	MediaURL     string
	ThumbnailURL string
	Duration     float64
}

// VideoUpdate represents the metadata fields that can be patched. Nil fields
// are left untouched.
type VideoUpdate struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
}

func (s *Storage) CreateVideo(params CreateVideoParams) (models.Video, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return models.Video{}, errors.New("title is required")
	}
	if strings.TrimSpace(params.MediaURL) == "" {
		return models.Video{}, errors.New("media url is required")
	}
	if strings.TrimSpace(params.ThumbnailURL) == "" {
		return models.Video{}, errors.New("thumbnail url is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[params.OwnerID]; !ok {
		return models.Video{}, fmt.Errorf("user %s: %w", params.OwnerID, ErrNotFound)
	}

	now := time.Now().UTC()
	video := models.Video{
		ID:           generateID(),
		OwnerID:      params.OwnerID,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		MediaURL:     strings.TrimSpace(params.MediaURL),
		ThumbnailURL: strings.TrimSpace(params.ThumbnailURL),
		Duration:     params.Duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.data.Videos[video.ID] = video
	if err := s.persist(); err != nil {
		delete(s.data.Videos, video.ID)
		return models.Video{}, err
	}
	return video, nil
}

func (s *Storage) GetVideo(id string) (models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	video, ok := s.data.Videos[id]
	return video, ok
}

// AddVideoView bumps the monotonic view counter by one.
func (s *Storage) AddVideoView(id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.data.Videos[id]
	if !ok {
		return models.Video{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}

	original := video
	video.Views++
	s.data.Videos[id] = video
	if err := s.persist(); err != nil {
		s.data.Videos[id] = original
		return models.Video{}, err
	}
	return video, nil
}

func (s *Storage) UpdateVideo(id string, update VideoUpdate) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.data.Videos[id]
	if !ok {
		return models.Video{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}

	original := video
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return models.Video{}, errors.New("title cannot be empty")
		}
		video.Title = title
	}
	if update.Description != nil {
		video.Description = strings.TrimSpace(*update.Description)
	}
	if update.ThumbnailURL != nil {
		thumbnail := strings.TrimSpace(*update.ThumbnailURL)
		if thumbnail == "" {
			return models.Video{}, errors.New("thumbnail url cannot be empty")
		}
		video.ThumbnailURL = thumbnail
	}

	video.UpdatedAt = time.Now().UTC()
	s.data.Videos[id] = video
	if err := s.persist(); err != nil {
		s.data.Videos[id] = original
		return models.Video{}, err
	}
	return video, nil
}

// DeleteVideo removes the video and cascades to its likes, its comments and
// their likes, playlist memberships, and watch-history entries.
func (s *Storage) DeleteVideo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Videos[id]; !ok {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}

	updatedData := cloneDataset(s.data)
	delete(updatedData.Videos, id)

	for commentID, comment := range updatedData.Comments {
		if comment.VideoID != id {
			continue
		}
		delete(updatedData.Comments, commentID)
		for key, like := range updatedData.Likes {
			if like.Kind == models.LikeComment && like.TargetID == commentID {
				delete(updatedData.Likes, key)
			}
		}
	}
	for key, like := range updatedData.Likes {
		if like.Kind == models.LikeVideo && like.TargetID == id {
			delete(updatedData.Likes, key)
		}
	}
	for playlistID, playlist := range updatedData.Playlists {
		filtered := playlist.VideoIDs[:0]
		for _, videoID := range playlist.VideoIDs {
			if videoID != id {
				filtered = append(filtered, videoID)
			}
		}
		if len(filtered) != len(playlist.VideoIDs) {
			playlist.VideoIDs = filtered
			updatedData.Playlists[playlistID] = playlist
		}
	}
	for userID, user := range updatedData.Users {
		filtered := user.WatchHistory[:0]
		for _, videoID := range user.WatchHistory {
			if videoID != id {
				filtered = append(filtered, videoID)
			}
		}
		if len(filtered) != len(user.WatchHistory) {
			user.WatchHistory = filtered
			updatedData.Users[userID] = user
		}
	}

	if err := s.persistDataset(updatedData); err != nil {
		return err
	}
	s.data = updatedData
	return nil
}

func (s *Storage) ToggleVideoPublish(id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.data.Videos[id]
	if !ok {
		return models.Video{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}

	original := video
	video.IsPublished = !video.IsPublished
	video.UpdatedAt = time.Now().UTC()
	s.data.Videos[id] = video
	if err := s.persist(); err != nil {
		s.data.Videos[id] = original
		return models.Video{}, err
	}
	return video, nil
}
