package storage

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"clipstream/internal/models"
)

func TestCreateCommentValidatesContent(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "host")
	videoID := createTestVideo(t, store, ownerID, "discussed")

	if _, err := store.CreateComment(videoID, ownerID, "   "); err == nil {
		t.Fatalf("expected empty content to fail")
	}
	long := strings.Repeat("x", maxContentLength+1)
	if _, err := store.CreateComment(videoID, ownerID, long); err == nil {
		t.Fatalf("expected oversized content to fail")
	}
	if _, err := store.CreateComment("missing", ownerID, "hello"); err == nil {
		t.Fatalf("expected unknown video to fail")
	}
	comment, err := store.CreateComment(videoID, ownerID, "  hello  ")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.Content != "hello" {
		t.Fatalf("expected trimmed content, got %q", comment.Content)
	}
}

func TestListCommentsPaginatesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "talker")
	videoID := createTestVideo(t, store, ownerID, "threaded")

	for i := 0; i < 5; i++ {
		if _, err := store.CreateComment(videoID, ownerID, fmt.Sprintf("comment %d", i)); err != nil {
			t.Fatalf("CreateComment %d: %v", i, err)
		}
		time.Sleep(time.Millisecond)
	}

	comments, total, err := store.ListComments(videoID, 0, 2)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Content != "comment 4" {
		t.Fatalf("expected newest comment first, got %q", comments[0].Content)
	}
	if comments[0].Owner.ID != ownerID {
		t.Fatalf("expected owner projection, got %v", comments[0].Owner)
	}

	tail, _, err := store.ListComments(videoID, 4, 2)
	if err != nil {
		t.Fatalf("ListComments tail: %v", err)
	}
	if len(tail) != 1 || tail[0].Content != "comment 0" {
		t.Fatalf("expected oldest comment on last page, got %v", tail)
	}
}

func TestDeleteCommentCascadesLikes(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "author")
	videoID := createTestVideo(t, store, ownerID, "commented")
	comment, err := store.CreateComment(videoID, ownerID, "fleeting")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if _, err := store.ToggleLike(ownerID, models.LikeComment, comment.ID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	if err := store.DeleteComment(comment.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if _, ok := store.GetComment(comment.ID); ok {
		t.Fatalf("expected comment to be gone")
	}
	if count := store.CountLikes(models.LikeComment, comment.ID); count != 0 {
		t.Fatalf("expected comment likes removed, got %d", count)
	}
}

func TestTweetLifecycle(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "poster")

	tweet, err := store.CreateTweet(ownerID, "first post")
	if err != nil {
		t.Fatalf("CreateTweet: %v", err)
	}
	if _, err := store.UpdateTweet(tweet.ID, "edited post"); err != nil {
		t.Fatalf("UpdateTweet: %v", err)
	}

	tweets, err := store.ListTweets(ownerID)
	if err != nil {
		t.Fatalf("ListTweets: %v", err)
	}
	if len(tweets) != 1 {
		t.Fatalf("expected 1 tweet, got %d", len(tweets))
	}
	if tweets[0].Content != "edited post" {
		t.Fatalf("expected edited content, got %q", tweets[0].Content)
	}
	if tweets[0].Owner.ID != ownerID {
		t.Fatalf("expected owner projection, got %v", tweets[0].Owner)
	}

	if err := store.DeleteTweet(tweet.ID); err != nil {
		t.Fatalf("DeleteTweet: %v", err)
	}
	if _, ok := store.GetTweet(tweet.ID); ok {
		t.Fatalf("expected tweet to be gone")
	}
}
