// Package cryptox implements the cryptographic core of ClientPro: string
// hashing, the per-field cipher keyed by the session master key, and the
// authenticated backup envelope codec (plus the legacy passphrase format).
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// HashString returns the hex-encoded SHA-256 digest of s. It is used to
// derive the PIN/employee guards for master-key wrapping and to checksum
// backup payloads.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DeriveWrapKey derives a 256-bit key from a guard string (normally an
// already-hashed PIN or employee id) and a per-wrap random salt.
func DeriveWrapKey(guard string, salt []byte) []byte {
	return argon2.IDKey([]byte(guard), salt, 1, 64*1024, 4, 32)
}
