package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"clipstream/internal/models"
)

const (
	passwordHashSaltLength = 16
	passwordHashKeyLength  = 32
	passwordHashIterations = 120000

	watchHistoryLimit = 100
)

type dataset struct {
	Users         map[string]models.User         `json:"users"`
	Videos        map[string]models.Video        `json:"videos"`
	Subscriptions map[string]models.Subscription `json:"subscriptions"`
	// Likes is keyed by the composite (liker, kind, target) key so the
	// uniqueness constraint holds by construction.
	Likes     map[string]models.Like     `json:"likes"`
	Comments  map[string]models.Comment  `json:"comments"`
	Tweets    map[string]models.Tweet    `json:"tweets"`
	Playlists map[string]models.Playlist `json:"playlists"`
}

func newDataset() dataset {
	return dataset{
		Users:         make(map[string]models.User),
		Videos:        make(map[string]models.Video),
		Subscriptions: make(map[string]models.Subscription),
		Likes:         make(map[string]models.Like),
		Comments:      make(map[string]models.Comment),
		Tweets:        make(map[string]models.Tweet),
		Playlists:     make(map[string]models.Playlist),
	}
}

// Storage is the JSON-file document store. All durable state lives in a
// single dataset document persisted atomically on every mutation; a RWMutex
// serialises mutations so in-process check-then-act sequences are atomic.
type Storage struct {
	mu       sync.RWMutex
	filePath string
	data     dataset
	// persistOverride allows tests to intercept persist operations.
	persistOverride func(dataset) error
}

// Option mutates storage configuration.
type Option func(*Storage)

// NewStorage opens (or creates) the JSON datastore at path.
func NewStorage(path string, opts ...Option) (*Storage, error) {
	store := &Storage{filePath: path}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewJSONRepository opens the JSON datastore as a Repository.
func NewJSONRepository(path string, opts ...Option) (Repository, error) {
	return NewStorage(path, opts...)
}

func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	file, err := os.Open(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		s.data = newDataset()
		return nil
	} else if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s.data); err != nil {
		if errors.Is(err, io.EOF) {
			s.data = newDataset()
			return nil
		}
		return fmt.Errorf("decode store file: %w", err)
	}

	s.ensureDatasetInitializedLocked()
	return nil
}

func (s *Storage) ensureDatasetInitializedLocked() {
	if s.data.Users == nil {
		s.data.Users = make(map[string]models.User)
	}
	if s.data.Videos == nil {
		s.data.Videos = make(map[string]models.Video)
	}
	if s.data.Subscriptions == nil {
		s.data.Subscriptions = make(map[string]models.Subscription)
	}
	if s.data.Likes == nil {
		s.data.Likes = make(map[string]models.Like)
	}
	if s.data.Comments == nil {
		s.data.Comments = make(map[string]models.Comment)
	}
	if s.data.Tweets == nil {
		s.data.Tweets = make(map[string]models.Tweet)
	}
	if s.data.Playlists == nil {
		s.data.Playlists = make(map[string]models.Playlist)
	}
}

func (s *Storage) persist() error {
	return s.persistDataset(s.data)
}

func (s *Storage) persistDataset(data dataset) error {
	if s.persistOverride != nil {
		if err := s.persistOverride(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmpFile.Name()
	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("flush store file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	success = true
	return nil
}

func cloneDataset(src dataset) dataset {
	clone := newDataset()

	for id, user := range src.Users {
		cloned := user
		if user.WatchHistory != nil {
			cloned.WatchHistory = append([]string(nil), user.WatchHistory...)
		}
		clone.Users[id] = cloned
	}
	for id, video := range src.Videos {
		clone.Videos[id] = video
	}
	for id, sub := range src.Subscriptions {
		clone.Subscriptions[id] = sub
	}
	for key, like := range src.Likes {
		clone.Likes[key] = like
	}
	for id, comment := range src.Comments {
		clone.Comments[id] = comment
	}
	for id, tweet := range src.Tweets {
		clone.Tweets[id] = tweet
	}
	for id, playlist := range src.Playlists {
		cloned := playlist
		if playlist.VideoIDs != nil {
			cloned.VideoIDs = append([]string(nil), playlist.VideoIDs...)
		}
		clone.Playlists[id] = cloned
	}
	return clone
}

func generateID() string {
	return uuid.NewString()
}

// Ping verifies the datastore file remains writable.
func (s *Storage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := os.Stat(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	return nil
}

// User operations

// CreateUserParams captures the attributes that can be set when registering.
type CreateUserParams struct {
	Username  string
	Email     string
	FullName  string
	Password  string
	AvatarURL string
	CoverURL  string
}

// UserUpdate represents the account fields that can be patched. Nil fields
// are left untouched.
type UserUpdate struct {
	FullName  *string
	Email     *string
	AvatarURL *string
	CoverURL  *string
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Storage) CreateUser(params CreateUserParams) (models.User, error) {
	username := normalizeUsername(params.Username)
	if username == "" {
		return models.User{}, errors.New("username is required")
	}
	email := normalizeEmail(params.Email)
	if email == "" {
		return models.User{}, errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, fmt.Errorf("invalid email address %q", params.Email)
	}
	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		return models.User{}, errors.New("fullName is required")
	}
	if params.Password == "" {
		return models.User{}, errors.New("password is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.data.Users {
		if user.Username == username {
			return models.User{}, fmt.Errorf("username %s %w", username, ErrDuplicate)
		}
		if user.Email == email {
			return models.User{}, fmt.Errorf("email %s %w", email, ErrDuplicate)
		}
	}

	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           generateID(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		AvatarURL:    strings.TrimSpace(params.AvatarURL),
		CoverURL:     strings.TrimSpace(params.CoverURL),
		WatchHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.data.Users[user.ID] = user
	if err := s.persist(); err != nil {
		delete(s.data.Users, user.ID)
		return models.User{}, err
	}
	return user, nil
}

func (s *Storage) GetUser(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.data.Users[id]
	return user, ok
}

// FindUserByUsername looks up a user by their normalized username.
func (s *Storage) FindUserByUsername(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUserByUsernameLocked(normalizeUsername(username))
}

func (s *Storage) findUserByUsernameLocked(username string) (models.User, bool) {
	for _, user := range s.data.Users {
		if user.Username == username {
			return user, true
		}
	}
	return models.User{}, false
}

// AuthenticateUser verifies credentials against a username or email address.
func (s *Storage) AuthenticateUser(identifier, password string) (models.User, error) {
	if password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	normalized := strings.ToLower(strings.TrimSpace(identifier))

	s.mu.RLock()
	var match models.User
	found := false
	for _, user := range s.data.Users {
		if user.Username == normalized || user.Email == normalized {
			match = user
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		return models.User{}, ErrInvalidCredentials
	}
	if err := verifyPassword(match.PasswordHash, password); err != nil {
		return models.User{}, err
	}
	return match, nil
}

func (s *Storage) UpdateUser(id string, update UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updatedData := cloneDataset(s.data)

	user, ok := updatedData.Users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return models.User{}, errors.New("fullName cannot be empty")
		}
		user.FullName = name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return models.User{}, errors.New("email cannot be empty")
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return models.User{}, fmt.Errorf("invalid email address %q", *update.Email)
		}
		for existingID, existing := range updatedData.Users {
			if existingID != id && existing.Email == email {
				return models.User{}, fmt.Errorf("email %s %w", email, ErrDuplicate)
			}
		}
		user.Email = email
	}
	if update.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*update.AvatarURL)
	}
	if update.CoverURL != nil {
		user.CoverURL = strings.TrimSpace(*update.CoverURL)
	}

	user.UpdatedAt = time.Now().UTC()
	updatedData.Users[id] = user
	if err := s.persistDataset(updatedData); err != nil {
		return models.User{}, err
	}
	s.data = updatedData
	return user, nil
}

// ChangeUserPassword swaps the stored hash after verifying the current
// password.
func (s *Storage) ChangeUserPassword(id, current, next string) error {
	if strings.TrimSpace(next) == "" {
		return errors.New("new password is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.data.Users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err := verifyPassword(user.PasswordHash, current); err != nil {
		return err
	}
	hashed, err := hashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	original := user
	user.PasswordHash = hashed
	user.UpdatedAt = time.Now().UTC()
	s.data.Users[id] = user
	if err := s.persist(); err != nil {
		s.data.Users[id] = original
		return err
	}
	return nil
}

// RecordWatchHistory moves the video to the front of the user's watch
// history, trimming the list to the retained window.
func (s *Storage) RecordWatchHistory(userID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.data.Users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if _, ok := s.data.Videos[videoID]; !ok {
		return fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}

	history := make([]string, 0, len(user.WatchHistory)+1)
	history = append(history, videoID)
	for _, existing := range user.WatchHistory {
		if existing == videoID {
			continue
		}
		history = append(history, existing)
	}
	if len(history) > watchHistoryLimit {
		history = history[:watchHistoryLimit]
	}

	original := user
	user.WatchHistory = history
	s.data.Users[userID] = user
	if err := s.persist(); err != nil {
		s.data.Users[userID] = original
		return err
	}
	return nil
}

// WatchHistory returns the user's watched videos, most recent first.
func (s *Storage) WatchHistory(userID string) ([]models.FeedVideo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.data.Users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	items := make([]models.FeedVideo, 0, len(user.WatchHistory))
	for _, videoID := range user.WatchHistory {
		video, exists := s.data.Videos[videoID]
		if !exists {
			continue
		}
		items = append(items, s.enrichVideoLocked(video))
	}
	return items, nil
}

// Password hashing

func hashPassword(password string) (string, error) {
	salt := make([]byte, passwordHashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), salt, passwordHashIterations, passwordHashKeyLength, sha256.New)
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedKey := base64.RawStdEncoding.EncodeToString(derived)
	return fmt.Sprintf("pbkdf2$sha256$%d$%s$%s", passwordHashIterations, encodedSalt, encodedKey), nil
}

func verifyPassword(encodedHash, candidate string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 {
		return fmt.Errorf("verify password: invalid hash format")
	}
	if parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return fmt.Errorf("verify password: unsupported hash identifier")
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return fmt.Errorf("verify password: invalid iteration count")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return fmt.Errorf("verify password: decode salt: %w", err)
	}
	storedKey, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("verify password: decode hash: %w", err)
	}
	derived := pbkdf2.Key([]byte(candidate), salt, iterations, len(storedKey), sha256.New)
	if len(derived) != len(storedKey) || subtle.ConstantTimeCompare(derived, storedKey) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
