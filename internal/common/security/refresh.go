package security

import "github.com/google/uuid"

// NewRefreshToken returns an opaque random token (UUIDv4, crypto/rand backed).
func NewRefreshToken() string {
	return uuid.NewString()
}
