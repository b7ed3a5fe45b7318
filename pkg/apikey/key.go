package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefix marks relay API keys.
const Prefix = "ntf_"

const randomBytes = 24

// Generate returns a new key: Prefix followed by 48 hex characters.
func Generate() (string, error) {
	b := make([]byte, randomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return Prefix + hex.EncodeToString(b), nil
}

// WellFormed reports whether key has the shape produced by Generate.
func WellFormed(key string) bool {
	rest, ok := strings.CutPrefix(key, Prefix)
	if !ok || len(rest) != randomBytes*2 {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}

// fingerprint is the cache key for an API key. Cached entries carry the
// application with its APIKey field cleared.
func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
