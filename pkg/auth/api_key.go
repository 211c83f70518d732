package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// APIKeyPrefix marks keys issued by this service
const APIKeyPrefix = "obs_"

// GenerateAPIKey returns a new random key. It is shown to the user once;
// only HashAPIKey(key) is stored.
func GenerateAPIKey() string {
	raw := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	return APIKeyPrefix + raw
}

// HashAPIKey returns the hex SHA-256 of key
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// KeyPrefix returns the visible head of a key for display and logs
func KeyPrefix(key string) string {
	const visible = len(APIKeyPrefix) + 6
	if len(key) <= visible {
		return key
	}
	return key[:visible]
}

// MatchesHash compares key against a stored hash in constant time
func MatchesHash(key, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashAPIKey(key)), []byte(hash)) == 1
}
