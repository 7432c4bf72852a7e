package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"clipstream/internal/models"
)

const maxContentLength = 2000

func validateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", errors.New("content is required")
	}
	if len(trimmed) > maxContentLength {
		return "", fmt.Errorf("content exceeds %d characters", maxContentLength)
	}
	return trimmed, nil
}

func (s *Storage) CreateComment(videoID, ownerID, content string) (models.Comment, error) {
	trimmed, err := validateContent(content)
	if err != nil {
		return models.Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Videos[videoID]; !ok {
		return models.Comment{}, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	if _, ok := s.data.Users[ownerID]; !ok {
		return models.Comment{}, fmt.Errorf("user %s: %w", ownerID, ErrNotFound)
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        generateID(),
		VideoID:   videoID,
		OwnerID:   ownerID,
		Content:   trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data.Comments[comment.ID] = comment
	if err := s.persist(); err != nil {
		delete(s.data.Comments, comment.ID)
		return models.Comment{}, err
	}
	return comment, nil
}

func (s *Storage) GetComment(id string) (models.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.data.Comments[id]
	return comment, ok
}

func (s *Storage) UpdateComment(id, content string) (models.Comment, error) {
	trimmed, err := validateContent(content)
	if err != nil {
		return models.Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.data.Comments[id]
	if !ok {
		return models.Comment{}, fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}

	original := comment
	comment.Content = trimmed
	comment.UpdatedAt = time.Now().UTC()
	s.data.Comments[id] = comment
	if err := s.persist(); err != nil {
		s.data.Comments[id] = original
		return models.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes the comment and any likes pointing at it.
func (s *Storage) DeleteComment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Comments[id]; !ok {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}

	updatedData := cloneDataset(s.data)
	delete(updatedData.Comments, id)
	for key, like := range updatedData.Likes {
		if like.Kind == models.LikeComment && like.TargetID == id {
			delete(updatedData.Likes, key)
		}
	}

	if err := s.persistDataset(updatedData); err != nil {
		return err
	}
	s.data = updatedData
	return nil
}

// ListComments returns one page of a video's comments, newest first, plus the
// total comment count for the video.
func (s *Storage) ListComments(videoID string, skip, limit int) ([]CommentWithOwner, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Videos[videoID]; !ok {
		return nil, 0, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}

	comments := make([]models.Comment, 0)
	for _, comment := range s.data.Comments {
		if comment.VideoID == videoID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})

	total := len(comments)
	comments = pageSlice(comments, skip, limit)

	items := make([]CommentWithOwner, 0, len(comments))
	for _, comment := range comments {
		item := CommentWithOwner{
			Comment:    comment,
			LikesCount: s.countLikesLocked(models.LikeComment, comment.ID),
		}
		if owner, ok := s.data.Users[comment.OwnerID]; ok {
			item.Owner = models.OwnerProjection(owner)
		}
		items = append(items, item)
	}
	return items, total, nil
}

func (s *Storage) CreateTweet(ownerID, content string) (models.Tweet, error) {
	trimmed, err := validateContent(content)
	if err != nil {
		return models.Tweet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[ownerID]; !ok {
		return models.Tweet{}, fmt.Errorf("user %s: %w", ownerID, ErrNotFound)
	}

	now := time.Now().UTC()
	tweet := models.Tweet{
		ID:        generateID(),
		OwnerID:   ownerID,
		Content:   trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data.Tweets[tweet.ID] = tweet
	if err := s.persist(); err != nil {
		delete(s.data.Tweets, tweet.ID)
		return models.Tweet{}, err
	}
	return tweet, nil
}

func (s *Storage) GetTweet(id string) (models.Tweet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tweet, ok := s.data.Tweets[id]
	return tweet, ok
}

func (s *Storage) UpdateTweet(id, content string) (models.Tweet, error) {
	trimmed, err := validateContent(content)
	if err != nil {
		return models.Tweet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tweet, ok := s.data.Tweets[id]
	if !ok {
		return models.Tweet{}, fmt.Errorf("tweet %s: %w", id, ErrNotFound)
	}

	original := tweet
	tweet.Content = trimmed
	tweet.UpdatedAt = time.Now().UTC()
	s.data.Tweets[id] = tweet
	if err := s.persist(); err != nil {
		s.data.Tweets[id] = original
		return models.Tweet{}, err
	}
	return tweet, nil
}

// DeleteTweet removes the tweet and any likes pointing at it.
func (s *Storage) DeleteTweet(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Tweets[id]; !ok {
		return fmt.Errorf("tweet %s: %w", id, ErrNotFound)
	}

	updatedData := cloneDataset(s.data)
	delete(updatedData.Tweets, id)
	for key, like := range updatedData.Likes {
		if like.Kind == models.LikeTweet && like.TargetID == id {
			delete(updatedData.Likes, key)
		}
	}

	if err := s.persistDataset(updatedData); err != nil {
		return err
	}
	s.data = updatedData
	return nil
}

// ListTweets returns a user's tweets, newest first.
func (s *Storage) ListTweets(ownerID string) ([]TweetWithOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.data.Users[ownerID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", ownerID, ErrNotFound)
	}
	projection := models.OwnerProjection(owner)

	tweets := make([]models.Tweet, 0)
	for _, tweet := range s.data.Tweets {
		if tweet.OwnerID == ownerID {
			tweets = append(tweets, tweet)
		}
	}
	sort.Slice(tweets, func(i, j int) bool { return tweets[i].CreatedAt.After(tweets[j].CreatedAt) })

	items := make([]TweetWithOwner, 0, len(tweets))
	for _, tweet := range tweets {
		items = append(items, TweetWithOwner{
			Tweet:      tweet,
			Owner:      projection,
			LikesCount: s.countLikesLocked(models.LikeTweet, tweet.ID),
		})
	}
	return items, nil
}

func pageSlice[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
