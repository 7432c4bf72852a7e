package storage

import (
	"testing"

	"clipstream/internal/models"
)

func TestSubscribeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	subscriberID := createTestUser(t, store, "fan")
	channelID := createTestUser(t, store, "creator")

	for i := 0; i < 2; i++ {
		if err := store.Subscribe(subscriberID, channelID); err != nil {
			t.Fatalf("Subscribe attempt %d: %v", i+1, err)
		}
	}
	if count := store.CountSubscribers(channelID); count != 1 {
		t.Fatalf("expected 1 subscriber, got %d", count)
	}
	if !store.IsSubscribed(subscriberID, channelID) {
		t.Fatalf("expected IsSubscribed to be true")
	}

	for i := 0; i < 2; i++ {
		if err := store.Unsubscribe(subscriberID, channelID); err != nil {
			t.Fatalf("Unsubscribe attempt %d: %v", i+1, err)
		}
	}
	if store.IsSubscribed(subscriberID, channelID) {
		t.Fatalf("expected IsSubscribed to be false after unsubscribe")
	}
}

func TestSubscribeToOwnChannelFails(t *testing.T) {
	store := newTestStore(t)
	userID := createTestUser(t, store, "selfsub")

	if err := store.Subscribe(userID, userID); err == nil {
		t.Fatalf("expected self-subscribe to fail")
	}
}

func TestListSubscribersAndChannels(t *testing.T) {
	store := newTestStore(t)
	fanID := createTestUser(t, store, "listener")
	firstChannel := createTestUser(t, store, "alpha")
	secondChannel := createTestUser(t, store, "beta")

	if err := store.Subscribe(fanID, firstChannel); err != nil {
		t.Fatalf("Subscribe first: %v", err)
	}
	if err := store.Subscribe(fanID, secondChannel); err != nil {
		t.Fatalf("Subscribe second: %v", err)
	}

	subscribers, err := store.ListSubscribers(firstChannel)
	if err != nil {
		t.Fatalf("ListSubscribers: %v", err)
	}
	if len(subscribers) != 1 || subscribers[0].ID != fanID {
		t.Fatalf("expected fan as sole subscriber, got %v", subscribers)
	}

	channels, err := store.ListSubscribedChannels(fanID)
	if err != nil {
		t.Fatalf("ListSubscribedChannels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 subscribed channels, got %d", len(channels))
	}
}

func TestToggleLikeDoubleToggleRestoresState(t *testing.T) {
	store := newTestStore(t)
	likerID := createTestUser(t, store, "liker")
	ownerID := createTestUser(t, store, "likee")
	videoID := createTestVideo(t, store, ownerID, "likeable")

	liked, err := store.ToggleLike(likerID, models.LikeVideo, videoID)
	if err != nil {
		t.Fatalf("ToggleLike first: %v", err)
	}
	if !liked {
		t.Fatalf("expected first toggle to like")
	}
	if count := store.CountLikes(models.LikeVideo, videoID); count != 1 {
		t.Fatalf("expected 1 like, got %d", count)
	}

	liked, err = store.ToggleLike(likerID, models.LikeVideo, videoID)
	if err != nil {
		t.Fatalf("ToggleLike second: %v", err)
	}
	if liked {
		t.Fatalf("expected second toggle to unlike")
	}
	if count := store.CountLikes(models.LikeVideo, videoID); count != 0 {
		t.Fatalf("expected 0 likes, got %d", count)
	}
}

func TestToggleLikeUnknownTarget(t *testing.T) {
	store := newTestStore(t)
	likerID := createTestUser(t, store, "lost")

	if _, err := store.ToggleLike(likerID, models.LikeVideo, "missing"); err == nil {
		t.Fatalf("expected error for unknown target")
	}
	if _, err := store.ToggleLike(likerID, models.LikeTweet, "missing"); err == nil {
		t.Fatalf("expected error for unknown tweet target")
	}
}

func TestListLikedVideosSkipsUnpublished(t *testing.T) {
	store := newTestStore(t)
	likerID := createTestUser(t, store, "curator")
	ownerID := createTestUser(t, store, "producer")
	publicID := createTestVideo(t, store, ownerID, "public")
	hiddenID := createTestVideo(t, store, ownerID, "hidden")

	if _, err := store.ToggleLike(likerID, models.LikeVideo, publicID); err != nil {
		t.Fatalf("ToggleLike public: %v", err)
	}
	if _, err := store.ToggleLike(likerID, models.LikeVideo, hiddenID); err != nil {
		t.Fatalf("ToggleLike hidden: %v", err)
	}
	if _, err := store.ToggleVideoPublish(hiddenID); err != nil {
		t.Fatalf("ToggleVideoPublish: %v", err)
	}

	videos, err := store.ListLikedVideos(likerID)
	if err != nil {
		t.Fatalf("ListLikedVideos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != publicID {
		t.Fatalf("expected only the published video, got %v", videos)
	}
	if videos[0].LikesCount != 1 {
		t.Fatalf("expected likes count 1, got %d", videos[0].LikesCount)
	}
}
