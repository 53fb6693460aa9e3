package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// PBKDF2KeyDeriver derives per-user keys with PBKDF2-HMAC-SHA256.
//
// The salt is SHA-256(userID), so it is reproducible from the identifier
// alone and no per-user material needs to be stored.
type PBKDF2KeyDeriver struct {
	iterations int
}

// NewPBKDF2KeyDeriver creates a key deriver with the given iteration count.
func NewPBKDF2KeyDeriver(iterations int) *PBKDF2KeyDeriver {
	return &PBKDF2KeyDeriver{iterations: iterations}
}

// Iterations returns the configured iteration count.
func (d *PBKDF2KeyDeriver) Iterations() int {
	return d.iterations
}

// DeriveKey returns a KeySize-byte key for userID. Callers should Zero it after use.
func (d *PBKDF2KeyDeriver) DeriveKey(masterSecret []byte, userID string) []byte {
	salt := sha256.Sum256([]byte(userID))
	return pbkdf2.Key(masterSecret, salt[:], d.iterations, cryptoDomain.KeySize, sha256.New)
}
