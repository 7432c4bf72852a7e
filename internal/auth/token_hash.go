package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var errRefreshTokenRequired = errors.New("refresh token required")

func hashToken(token string) (string, error) {
	if token == "" {
		return "", errRefreshTokenRequired
	}
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:]), nil
}

func generateHashedToken(length int) (string, string, error) {
	token, err := generateToken(length)
	if err != nil {
		return "", "", err
	}
	hashed, err := hashToken(token)
	if err != nil {
		return "", "", err
	}
	return token, hashed, nil
}
