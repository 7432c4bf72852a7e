package storage

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"clipstream/internal/models"
)

func subscriptionKeyMatch(sub models.Subscription, subscriberID, channelID string) bool {
	return sub.SubscriberID == subscriberID && sub.ChannelID == channelID
}

// Subscribe links the subscriber to the channel. Subscribing twice is a
// no-op; the original row is kept.
func (s *Storage) Subscribe(subscriberID, channelID string) error {
	if subscriberID == channelID {
		return errors.New("cannot subscribe to your own channel")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}
	for _, sub := range s.data.Subscriptions {
		if subscriptionKeyMatch(sub, subscriberID, channelID) {
			return nil
		}
	}

	sub := models.Subscription{
		ID:           generateID(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    time.Now().UTC(),
	}
	s.data.Subscriptions[sub.ID] = sub
	if err := s.persist(); err != nil {
		delete(s.data.Subscriptions, sub.ID)
		return err
	}
	return nil
}

// Unsubscribe removes the link if present. Removing an absent link is a
// no-op.
func (s *Storage) Unsubscribe(subscriberID, channelID string) error {
	if subscriberID == channelID {
		return errors.New("cannot unsubscribe from your own channel")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}

	for id, sub := range s.data.Subscriptions {
		if !subscriptionKeyMatch(sub, subscriberID, channelID) {
			continue
		}
		delete(s.data.Subscriptions, id)
		if err := s.persist(); err != nil {
			s.data.Subscriptions[id] = sub
			return err
		}
		return nil
	}
	return nil
}

func (s *Storage) IsSubscribed(subscriberID, channelID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.data.Subscriptions {
		if subscriptionKeyMatch(sub, subscriberID, channelID) {
			return true
		}
	}
	return false
}

func (s *Storage) CountSubscribers(channelID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countSubscribersLocked(channelID)
}

func (s *Storage) countSubscribersLocked(channelID string) int {
	count := 0
	for _, sub := range s.data.Subscriptions {
		if sub.ChannelID == channelID {
			count++
		}
	}
	return count
}

// ListSubscribers returns the users subscribed to the channel, newest first.
func (s *Storage) ListSubscribers(channelID string) ([]models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[channelID]; !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, ErrNotFound)
	}

	subs := make([]models.Subscription, 0)
	for _, sub := range s.data.Subscriptions {
		if sub.ChannelID == channelID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })

	owners := make([]models.Owner, 0, len(subs))
	for _, sub := range subs {
		user, ok := s.data.Users[sub.SubscriberID]
		if !ok {
			continue
		}
		owners = append(owners, models.OwnerProjection(user))
	}
	return owners, nil
}

// ListSubscribedChannels returns the channels the subscriber follows, newest
// first.
func (s *Storage) ListSubscribedChannels(subscriberID string) ([]models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.data.Users[subscriberID]; !ok {
		return nil, fmt.Errorf("user %s: %w", subscriberID, ErrNotFound)
	}

	subs := make([]models.Subscription, 0)
	for _, sub := range s.data.Subscriptions {
		if sub.SubscriberID == subscriberID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })

	owners := make([]models.Owner, 0, len(subs))
	for _, sub := range subs {
		user, ok := s.data.Users[sub.ChannelID]
		if !ok {
			continue
		}
		owners = append(owners, models.OwnerProjection(user))
	}
	return owners, nil
}

func likeKey(likerID string, kind models.LikeKind, targetID string) string {
	return likerID + "|" + string(kind) + "|" + targetID
}

// ToggleLike flips the caller's like on the target. The returned bool is the
// resulting liked state.
func (s *Storage) ToggleLike(likerID string, kind models.LikeKind, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case models.LikeVideo:
		if _, ok := s.data.Videos[targetID]; !ok {
			return false, fmt.Errorf("video %s: %w", targetID, ErrNotFound)
		}
	case models.LikeComment:
		if _, ok := s.data.Comments[targetID]; !ok {
			return false, fmt.Errorf("comment %s: %w", targetID, ErrNotFound)
		}
	case models.LikeTweet:
		if _, ok := s.data.Tweets[targetID]; !ok {
			return false, fmt.Errorf("tweet %s: %w", targetID, ErrNotFound)
		}
	default:
		return false, fmt.Errorf("unsupported like kind %q", kind)
	}

	key := likeKey(likerID, kind, targetID)
	if existing, ok := s.data.Likes[key]; ok {
		delete(s.data.Likes, key)
		if err := s.persist(); err != nil {
			s.data.Likes[key] = existing
			return false, err
		}
		return false, nil
	}

	like := models.Like{
		ID:        generateID(),
		LikerID:   likerID,
		Kind:      kind,
		TargetID:  targetID,
		CreatedAt: time.Now().UTC(),
	}
	s.data.Likes[key] = like
	if err := s.persist(); err != nil {
		delete(s.data.Likes, key)
		return false, err
	}
	return true, nil
}

func (s *Storage) CountLikes(kind models.LikeKind, targetID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLikesLocked(kind, targetID)
}

func (s *Storage) countLikesLocked(kind models.LikeKind, targetID string) int {
	count := 0
	for _, like := range s.data.Likes {
		if like.Kind == kind && like.TargetID == targetID {
			count++
		}
	}
	return count
}

// ListLikedVideos returns the videos the user has liked, newest like first.
// Likes on since-deleted or unpublished videos are skipped.
func (s *Storage) ListLikedVideos(likerID string) ([]models.FeedVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	likes := make([]models.Like, 0)
	for _, like := range s.data.Likes {
		if like.LikerID == likerID && like.Kind == models.LikeVideo {
			likes = append(likes, like)
		}
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })

	items := make([]models.FeedVideo, 0, len(likes))
	for _, like := range likes {
		video, ok := s.data.Videos[like.TargetID]
		if !ok || !video.IsPublished {
			continue
		}
		items = append(items, s.enrichVideoLocked(video))
	}
	return items, nil
}
