package service

import (
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// encoding is strict so that altering the unused trailing bits of the last
// base64 group is rejected instead of decoding to the same frame.
var encoding = base64.StdEncoding.Strict()

// Vault seals credentials for a single user so that only the holder of the
// master secret can open them, and only for that same user.
//
// Every call derives the user's key from the master secret, so the vault
// holds no per-user state and is safe for concurrent use. Key derivation is
// deliberately expensive; concurrent callers contend for CPU, not locks.
type Vault struct {
	masterSecret *cryptoDomain.MasterSecret
	deriver      KeyDeriver
	newCipher    func(key []byte) (AEAD, error)
}

// Option configures a Vault.
type Option func(*vaultOptions)

type vaultOptions struct {
	iterations int
}

// WithIterations sets the PBKDF2 iteration count. Values below
// DefaultKDFIterations are rejected by NewVault.
func WithIterations(iterations int) Option {
	return func(o *vaultOptions) {
		o.iterations = iterations
	}
}

// NewVault creates a Vault bound to masterSecret.
// Returns ErrConfiguration if the secret is missing, closed or too short, or
// if the iteration count is lower than DefaultKDFIterations.
func NewVault(masterSecret *cryptoDomain.MasterSecret, opts ...Option) (*Vault, error) {
	if err := masterSecret.Err(); err != nil {
		return nil, err
	}

	o := vaultOptions{iterations: cryptoDomain.DefaultKDFIterations}
	for _, opt := range opts {
		opt(&o)
	}
	if o.iterations < cryptoDomain.DefaultKDFIterations {
		return nil, fmt.Errorf(
			"%w: kdf iterations must be at least %d, got %d",
			cryptoDomain.ErrConfiguration,
			cryptoDomain.DefaultKDFIterations,
			o.iterations,
		)
	}

	return &Vault{
		masterSecret: masterSecret,
		deriver:      NewPBKDF2KeyDeriver(o.iterations),
		newCipher: func(key []byte) (AEAD, error) {
			return NewAESGCM(key)
		},
	}, nil
}

// Seal encrypts plaintext for userID and returns the encoded frame
// nonce || ciphertext || tag. Sealing the same input twice yields different
// results because the nonce is random.
//
// Callers are expected to reject empty plaintext before calling Seal; the
// vault itself accepts it.
func (v *Vault) Seal(plaintext, userID string) (cryptoDomain.SealedSecret, error) {
	if err := v.check(userID); err != nil {
		return "", err
	}

	key := v.deriver.DeriveKey(v.masterSecret.Bytes(), userID)
	defer cryptoDomain.Zero(key)

	aead, err := v.newCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrEncryption, err)
	}

	ciphertext, nonce, err := aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoDomain.ErrEncryption, err)
	}

	frame := make([]byte, 0, len(nonce)+len(ciphertext))
	frame = append(frame, nonce...)
	frame = append(frame, ciphertext...)

	return cryptoDomain.SealedSecret(encoding.EncodeToString(frame)), nil
}

// Unseal reverses Seal. It returns ErrDecryption for malformed input, a frame
// shorter than MinFrameSize, or a tag that does not verify, without telling
// which. No partial plaintext is ever returned.
func (v *Vault) Unseal(sealed cryptoDomain.SealedSecret, userID string) (string, error) {
	if err := v.check(userID); err != nil {
		return "", err
	}

	frame, err := encoding.DecodeString(string(sealed))
	if err != nil || len(frame) < cryptoDomain.MinFrameSize {
		return "", cryptoDomain.ErrDecryption
	}

	key := v.deriver.DeriveKey(v.masterSecret.Bytes(), userID)
	defer cryptoDomain.Zero(key)

	aead, err := v.newCipher(key)
	if err != nil {
		return "", cryptoDomain.ErrDecryption
	}

	plaintext, err := aead.Decrypt(frame[cryptoDomain.NonceSize:], frame[:cryptoDomain.NonceSize], nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryption
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), nil
}

// IsValid reports whether sealed unseals for userID.
func (v *Vault) IsValid(sealed cryptoDomain.SealedSecret, userID string) bool {
	_, err := v.Unseal(sealed, userID)
	return err == nil
}

// check runs before any cryptographic work.
func (v *Vault) check(userID string) error {
	if v == nil {
		return cryptoDomain.ErrMasterSecretNotSet
	}
	if err := v.masterSecret.Err(); err != nil {
		return err
	}
	if userID == "" {
		return cryptoDomain.ErrEmptyUserID
	}
	return nil
}
