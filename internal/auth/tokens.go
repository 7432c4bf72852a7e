package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidUserID is returned when issuing tokens without a user identifier.
	ErrInvalidUserID = errors.New("userID is required")
	// ErrInvalidToken covers expired, malformed, and revoked tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the access-token claims. The user ID travels in the registered
// Subject claim.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenPair bundles a signed access token with its opaque refresh token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RefreshRecord captures a refresh-token row retrieved from the backing
// store. Token holds the SHA-256 hash, never the raw token.
type RefreshRecord struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// RefreshStore defines the persistence contract for refresh tokens. Tokens
// are hashed before they reach the store.
type RefreshStore interface {
	Save(tokenHash, userID string, expiresAt time.Time) error
	Get(tokenHash string) (RefreshRecord, bool, error)
	Delete(tokenHash string) error
	DeleteByUser(userID string) error
	PurgeExpired(now time.Time) error
}

// TokenOption configures a TokenManager instance.
type TokenOption func(*TokenManager)

// WithRefreshStore injects a custom RefreshStore implementation.
func WithRefreshStore(store RefreshStore) TokenOption {
	return func(m *TokenManager) {
		m.store = store
	}
}

// WithAccessTTL overrides the access-token lifetime.
func WithAccessTTL(ttl time.Duration) TokenOption {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh-token lifetime.
func WithRefreshTTL(ttl time.Duration) TokenOption {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.refreshTTL = ttl
		}
	}
}

// TokenManager issues HS256 access tokens and coordinates opaque refresh
// tokens against a backing store.
type TokenManager struct {
	secret       []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	tokenLength  int
	store        RefreshStore
	tokenFactory func(int) (string, error)
}

// NewTokenManager constructs a TokenManager. Access tokens default to a 1
// hour lifetime, refresh tokens to 7 days, with an in-memory refresh store
// for local development when no store is supplied.
func NewTokenManager(secret string, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 bytes")
	}
	manager := &TokenManager{
		secret:       []byte(secret),
		accessTTL:    time.Hour,
		refreshTTL:   7 * 24 * time.Hour,
		tokenLength:  32,
		tokenFactory: generateToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(manager)
		}
	}
	if manager.store == nil {
		manager.store = NewMemoryRefreshStore()
	}
	return manager, nil
}

// Issue mints a fresh access/refresh pair for the user.
func (m *TokenManager) Issue(userID, username string) (TokenPair, error) {
	if userID == "" {
		return TokenPair{}, ErrInvalidUserID
	}

	now := time.Now()
	accessExpiry := now.Add(m.accessTTL)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshHash, err := generateHashedToken(m.tokenLength)
	if err != nil {
		return TokenPair{}, err
	}
	refreshExpiry := now.Add(m.refreshTTL)
	if err := m.store.Save(refreshHash, userID, refreshExpiry.UTC()); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      signed,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// ValidateAccess checks the access token signature and expiry and returns
// the embedded claims.
func (m *TokenManager) ValidateAccess(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Redeem validates the refresh token and revokes it, returning the owning
// user. The caller issues the replacement pair.
func (m *TokenManager) Redeem(refreshToken string) (string, error) {
	hash, err := hashToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	record, ok, err := m.store.Get(hash)
	if err != nil {
		return "", fmt.Errorf("lookup refresh token: %w", err)
	}
	if !ok {
		return "", ErrInvalidToken
	}
	if time.Now().After(record.ExpiresAt) {
		_ = m.store.Delete(hash)
		return "", ErrInvalidToken
	}
	if err := m.store.Delete(hash); err != nil {
		return "", fmt.Errorf("revoke refresh token: %w", err)
	}
	return record.UserID, nil
}

// RevokeAll deletes every refresh token issued to the user.
func (m *TokenManager) RevokeAll(userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return m.store.DeleteByUser(userID)
}

// PurgeExpired removes any expired refresh tokens from the backing store.
func (m *TokenManager) PurgeExpired() error {
	return m.store.PurgeExpired(time.Now())
}

// Ping verifies the underlying refresh store is reachable when it exposes a
// ping method.
func (m *TokenManager) Ping(ctx context.Context) error {
	if m == nil || m.store == nil {
		return nil
	}
	if pinger, ok := m.store.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
