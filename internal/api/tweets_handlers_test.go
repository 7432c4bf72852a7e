package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipstream/internal/models"
	"clipstream/internal/storage"
)

func TestTweetCreateAndList(t *testing.T) {
	handler, store := newTestHandler(t)
	author := registerTestUser(t, store, "announcer")

	req := authedRequest(jsonRequest(t, http.MethodPost, "/api/v1/tweets", map[string]string{
		"content": "going live soon",
	}), author)
	rec := httptest.NewRecorder()
	handler.Tweets(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var tweet models.Tweet
	if err := json.Unmarshal(env.Data, &tweet); err != nil {
		t.Fatalf("decode tweet: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tweets/user/"+author.ID, nil)
	rec = httptest.NewRecorder()
	handler.TweetRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	var tweets []storage.TweetWithOwner
	if err := json.Unmarshal(env.Data, &tweets); err != nil {
		t.Fatalf("decode tweets: %v", err)
	}
	if len(tweets) != 1 || tweets[0].ID != tweet.ID {
		t.Fatalf("unexpected tweets %v", tweets)
	}
	if tweets[0].Owner.Username != "announcer" {
		t.Fatalf("expected owner projection, got %+v", tweets[0].Owner)
	}
}

func TestTweetUpdateForbiddenForNonOwner(t *testing.T) {
	handler, store := newTestHandler(t)
	author := registerTestUser(t, store, "original")
	impostor := registerTestUser(t, store, "impostor")
	tweet, err := store.CreateTweet(author.ID, "mine")
	if err != nil {
		t.Fatalf("CreateTweet: %v", err)
	}

	req := authedRequest(jsonRequest(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID, map[string]string{
		"content": "hijacked",
	}), impostor)
	rec := httptest.NewRecorder()
	handler.TweetRoutes(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	req = authedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, nil), author)
	rec = httptest.NewRecorder()
	handler.TweetRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, ok := store.GetTweet(tweet.ID); ok {
		t.Fatalf("expected tweet to be deleted")
	}
}
