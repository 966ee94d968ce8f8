// Package token generates and fingerprints the opaque credentials used for
// sessions and single-use links.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// entropyBytes is the raw entropy per token. 32 bytes makes collisions a
// non-event; the hex encoding yields 64-character values.
const entropyBytes = 32

// Generate returns a new opaque token from the CSPRNG.
func Generate() (string, error) {
	buf := make([]byte, entropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the sha256 hex fingerprint of a raw token, the form in which
// session tokens are stored at rest.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
