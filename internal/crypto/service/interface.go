// Package service implements the credential vault: per-user key derivation
// from the master secret and authenticated encryption of small secrets.
package service

import (
	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext (tag appended) and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext (tag appended) using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// KeyDeriver derives the per-user key from the master secret.
type KeyDeriver interface {
	// DeriveKey returns a KeySize-byte key. The same inputs always yield the same key.
	DeriveKey(masterSecret []byte, userID string) []byte
}

// Sealer seals and unseals credentials bound to a user identifier.
type Sealer interface {
	Seal(plaintext, userID string) (cryptoDomain.SealedSecret, error)
	Unseal(sealed cryptoDomain.SealedSecret, userID string) (string, error)
	IsValid(sealed cryptoDomain.SealedSecret, userID string) bool
}
