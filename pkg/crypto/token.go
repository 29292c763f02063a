package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SecretBytes is the entropy of a generated API secret.
const SecretBytes = 32

var randomRead = rand.Read

// GenerateRandomToken returns length random bytes, hex encoded.
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateAPISecret returns a fresh raw API secret (64 hex characters).
func GenerateAPISecret() (string, error) {
	return GenerateRandomToken(SecretBytes)
}

// HashToken returns the SHA-256 hex digest stored in place of a raw secret.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
