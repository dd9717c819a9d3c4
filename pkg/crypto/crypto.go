// Package crypto provides the session secret and GM key derivation.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// NewSessionSecret generates a random session secret: 12 bytes of
// entropy, base64-encoded for storage alongside other string values.
func NewSessionSecret() (string, error) {
	b := make([]byte, 12)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("crypto: generate session secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// GMKeyDigest derives the comparison digest for a GM key using Argon2id,
// salted with the session secret so digests are per-installation.
func GMKeyDigest(key, secret string) []byte {
	return argon2.IDKey([]byte(key), []byte(secret), 1, 64*1024, 4, 32)
}

// VerifyGMKey compares a presented key against a stored digest in
// constant time.
func VerifyGMKey(presented, secret string, digest []byte) bool {
	return subtle.ConstantTimeCompare(GMKeyDigest(presented, secret), digest) == 1
}
