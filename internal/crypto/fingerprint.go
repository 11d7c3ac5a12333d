package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"pairchat/internal/domain"
)

// Fingerprint returns a short hex tag identifying key in logs without
// revealing it. It hashes with SHA-256 and truncates to 8 bytes.
func Fingerprint(key domain.SessionKey) string {
	sum := sha256.Sum256(key[:])
	return hex.EncodeToString(sum[:8])
}
