package util

import (
	"crypto/rand"
	"encoding/base64"
)

// stateBytes is the entropy of an OAuth state value
const stateBytes = 32

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// GenerateOAuthState returns a URL-safe random value for the OAuth state parameter
func GenerateOAuthState() (string, error) {
	bytes, err := CryptoRandomBytes(stateBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
