package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Storage {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	store, err := NewStorage(path)
	if err != nil {
		t.Fatalf("NewStorage error: %v", err)
	}
	return store
}

func createTestUser(t *testing.T, store *Storage, username string) string {
	t.Helper()
	user, err := store.CreateUser(CreateUserParams{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("CreateUser %s: %v", username, err)
	}
	return user.ID
}

func createTestVideo(t *testing.T, store *Storage, ownerID, title string) string {
	t.Helper()
	video, err := store.CreateVideo(CreateVideoParams{
		OwnerID:      ownerID,
		Title:        title,
		Description:  "about " + title,
		MediaURL:     "/media/" + title,
		ThumbnailURL: "/media/" + title + "-thumb",
		Duration:     42,
	})
	if err != nil {
		t.Fatalf("CreateVideo %s: %v", title, err)
	}
	return video.ID
}

func TestCreateUserNormalizesAndRejectsDuplicates(t *testing.T) {
	store := newTestStore(t)

	user, err := store.CreateUser(CreateUserParams{
		Username: "  Alice ",
		Email:    "Alice@Example.com",
		FullName: "Alice Smith",
		Password: "secret-password",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected lowercase username, got %q", user.Username)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercase email, got %q", user.Email)
	}
	if user.PasswordHash == "" {
		t.Fatalf("expected password hash to be set")
	}

	_, err = store.CreateUser(CreateUserParams{
		Username: "ALICE",
		Email:    "other@example.com",
		FullName: "Other",
		Password: "secret-password",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for username, got %v", err)
	}

	_, err = store.CreateUser(CreateUserParams{
		Username: "bob",
		Email:    "alice@example.com",
		FullName: "Bob",
		Password: "secret-password",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}
}

func TestAuthenticateUserByUsernameAndEmail(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreateUser(CreateUserParams{
		Username: "carol",
		Email:    "carol@example.com",
		FullName: "Carol",
		Password: "carols-password",
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := store.AuthenticateUser("carol", "carols-password"); err != nil {
		t.Fatalf("authenticate by username: %v", err)
	}
	if _, err := store.AuthenticateUser("CAROL@example.com", "carols-password"); err != nil {
		t.Fatalf("authenticate by email: %v", err)
	}
	if _, err := store.AuthenticateUser("carol", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.AuthenticateUser("nobody", "carols-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestChangeUserPassword(t *testing.T) {
	store := newTestStore(t)
	userID := createTestUser(t, store, "dave")

	if err := store.ChangeUserPassword(userID, "wrong", "new-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := store.ChangeUserPassword(userID, "correct-horse", "new-password"); err != nil {
		t.Fatalf("ChangeUserPassword: %v", err)
	}
	if _, err := store.AuthenticateUser("dave", "new-password"); err != nil {
		t.Fatalf("authenticate after change: %v", err)
	}
}

func TestUpdateUserEnforcesEmailUniqueness(t *testing.T) {
	store := newTestStore(t)
	firstID := createTestUser(t, store, "erin")
	createTestUser(t, store, "frank")

	taken := "frank@example.com"
	if _, err := store.UpdateUser(firstID, UserUpdate{Email: &taken}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	name := "Erin Updated"
	updated, err := store.UpdateUser(firstID, UserUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.FullName != name {
		t.Fatalf("expected full name %q, got %q", name, updated.FullName)
	}
}

func TestStorageReloadsPersistedState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	store, err := NewStorage(path)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	userID := createTestUser(t, store, "grace")
	videoID := createTestVideo(t, store, userID, "reload")

	reloaded, err := NewStorage(path)
	if err != nil {
		t.Fatalf("NewStorage reload: %v", err)
	}
	if _, ok := reloaded.GetUser(userID); !ok {
		t.Fatalf("expected user %s after reload", userID)
	}
	if _, ok := reloaded.GetVideo(videoID); !ok {
		t.Fatalf("expected video %s after reload", videoID)
	}
}

func TestDeleteVideoPersistFailureLeavesDataUntouched(t *testing.T) {
	store := newTestStore(t)
	ownerID := createTestUser(t, store, "heidi")
	videoID := createTestVideo(t, store, ownerID, "rollback")
	if _, err := store.CreateComment(videoID, ownerID, "first"); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	store.persistOverride = func(dataset) error {
		return errors.New("persist failed")
	}
	if err := store.DeleteVideo(videoID); err == nil {
		t.Fatalf("expected DeleteVideo error when persist fails")
	}
	store.persistOverride = nil

	if _, ok := store.GetVideo(videoID); !ok {
		t.Fatalf("expected video %s to remain", videoID)
	}
	if _, total, err := store.ListComments(videoID, 0, 10); err != nil {
		t.Fatalf("ListComments: %v", err)
	} else if total != 1 {
		t.Fatalf("expected comment to remain, got total %d", total)
	}
}

func TestWatchHistoryMovesRewatchedVideoToFront(t *testing.T) {
	store := newTestStore(t)
	viewerID := createTestUser(t, store, "ivan")
	ownerID := createTestUser(t, store, "judy")
	firstID := createTestVideo(t, store, ownerID, "first")
	secondID := createTestVideo(t, store, ownerID, "second")

	for _, id := range []string{firstID, secondID, firstID} {
		if err := store.RecordWatchHistory(viewerID, id); err != nil {
			t.Fatalf("RecordWatchHistory %s: %v", id, err)
		}
	}

	history, err := store.WatchHistory(viewerID)
	if err != nil {
		t.Fatalf("WatchHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].ID != firstID {
		t.Fatalf("expected rewatched video first, got %s", history[0].ID)
	}
	if history[1].ID != secondID {
		t.Fatalf("expected %s second, got %s", secondID, history[1].ID)
	}
}
