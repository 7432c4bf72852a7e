package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipstream/internal/models"
)

func TestSubscribeAndUnsubscribe(t *testing.T) {
	handler, store := newTestHandler(t)
	channel := registerTestUser(t, store, "streamer")
	fan := registerTestUser(t, store, "devotee")

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/"+channel.ID, nil), fan)
	rec := httptest.NewRecorder()
	handler.SubscriptionRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if env := decodeEnvelope(t, rec); env.Message != "subscribed successfully" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if !store.IsSubscribed(fan.ID, channel.ID) {
		t.Fatalf("expected subscription recorded")
	}

	req = authedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/subscriptions/"+channel.ID, nil), fan)
	rec = httptest.NewRecorder()
	handler.SubscriptionRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if store.IsSubscribed(fan.ID, channel.ID) {
		t.Fatalf("expected subscription removed")
	}
}

func TestSelfSubscribeRejected(t *testing.T) {
	handler, store := newTestHandler(t)
	user := registerTestUser(t, store, "narcissist")

	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/"+user.ID, nil), user)
	rec := httptest.NewRecorder()
	handler.SubscriptionRoutes(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestChannelSubscribersPublicListing(t *testing.T) {
	handler, store := newTestHandler(t)
	channel := registerTestUser(t, store, "popular")
	fan := registerTestUser(t, store, "follower")
	if err := store.Subscribe(fan.ID, channel.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/"+channel.ID+"/subscribers", nil)
	rec := httptest.NewRecorder()
	handler.SubscriptionRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var subscribers []models.Owner
	if err := json.Unmarshal(env.Data, &subscribers); err != nil {
		t.Fatalf("decode subscribers: %v", err)
	}
	if len(subscribers) != 1 || subscribers[0].Username != "follower" {
		t.Fatalf("unexpected subscribers %v", subscribers)
	}
}

func TestSubscribedChannelsRequiresAuth(t *testing.T) {
	handler, store := newTestHandler(t)
	fan := registerTestUser(t, store, "lurker")
	channel := registerTestUser(t, store, "watched")
	if err := store.Subscribe(fan.ID, channel.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/subscribed", nil)
	rec := httptest.NewRecorder()
	handler.SubscriptionRoutes(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	req = authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/subscribed", nil), fan)
	rec = httptest.NewRecorder()
	handler.SubscriptionRoutes(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var channels []models.Owner
	if err := json.Unmarshal(env.Data, &channels); err != nil {
		t.Fatalf("decode channels: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != channel.ID {
		t.Fatalf("unexpected channels %v", channels)
	}
}
