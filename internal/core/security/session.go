package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateSessionToken creates a new bearer token and its hash.
// Returns: (realToken, hash). Only the hash is ever persisted.
func GenerateSessionToken() (string, string, error) {
	// 1. Generate 32 random bytes
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	// 2. Convert to hex string and add a recognizable prefix
	realToken := fmt.Sprintf("bt_session_%s", hex.EncodeToString(bytes))

	// 3. Hash it (SHA256) - this is what we save to the local store
	return realToken, HashToken(realToken), nil
}

// HashToken maps a presented token to its stored form. We never compare
// plain text.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
