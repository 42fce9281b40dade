package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the SHA-256 fingerprint of text as lowercase hex.
// It is used both for note-level change detection and for chunk identity.
// Collisions are treated as negligible; a collision would manifest as a
// missed update, which the next content change corrects.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
