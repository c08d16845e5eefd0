package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short stable reference to a token id that is safe
// to log. The id itself is a bearer credential.
func Fingerprint(tokenID string) string {
	if tokenID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(tokenID))
	return hex.EncodeToString(sum[:6])
}
