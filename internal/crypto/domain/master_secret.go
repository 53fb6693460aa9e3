package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// MasterSecret is the process-wide secret every per-user key is derived from.
//
// It is loaded once at startup and injected into the vault. It implements
// fmt.Stringer and slog.LogValuer so that accidental formatting or logging
// never prints the secret.
type MasterSecret struct {
	value []byte
}

// KMSKeeper decrypts a KMS-wrapped master secret. *secrets.Keeper from
// gocloud.dev satisfies it.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens a KMSKeeper for a key URI.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// NewMasterSecret validates raw and returns a MasterSecret.
// Returns ErrMasterSecretNotSet for an empty value and ErrMasterSecretTooShort
// when raw has fewer than MinMasterSecretLength characters.
func NewMasterSecret(raw string) (*MasterSecret, error) {
	if raw == "" {
		return nil, ErrMasterSecretNotSet
	}
	if n := utf8.RuneCountInString(raw); n < MinMasterSecretLength {
		return nil, fmt.Errorf(
			"%w: got %d characters, need at least %d",
			ErrMasterSecretTooShort,
			n,
			MinMasterSecretLength,
		)
	}
	return &MasterSecret{value: []byte(raw)}, nil
}

// LoadMasterSecret builds the master secret from configuration.
//
// When keyURI is empty, raw is used as is. Otherwise raw must be the base64
// encoding of a KMS ciphertext, which is decrypted with the keeper opened for
// keyURI. The decrypted bytes are validated exactly like a plain secret.
func LoadMasterSecret(
	ctx context.Context,
	raw, keyURI string,
	kmsService KMSService,
	logger *slog.Logger,
) (*MasterSecret, error) {
	if keyURI == "" {
		return NewMasterSecret(raw)
	}
	if raw == "" {
		return nil, ErrMasterSecretNotSet
	}

	ciphertext, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: master secret is not valid base64: %v", ErrConfiguration, err)
	}

	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil && logger != nil {
			logger.Warn("failed to close kms keeper", slog.Any("error", closeErr))
		}
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt master secret with kms: %v", ErrConfiguration, err)
	}
	defer Zero(plaintext)

	if logger != nil {
		logger.Info("master secret decrypted with kms")
	}

	return NewMasterSecret(string(plaintext))
}

// Bytes returns the secret material. Callers must not retain or modify it.
func (m *MasterSecret) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.value
}

// Valid reports whether the secret is present and long enough to be used.
func (m *MasterSecret) Valid() bool {
	return m.Err() == nil
}

// Err returns ErrMasterSecretNotSet for a nil or closed secret,
// ErrMasterSecretTooShort for a short one and nil otherwise.
func (m *MasterSecret) Err() error {
	if m == nil || len(m.value) == 0 {
		return ErrMasterSecretNotSet
	}
	if utf8.RuneCount(m.value) < MinMasterSecretLength {
		return ErrMasterSecretTooShort
	}
	return nil
}

// Close wipes the secret from memory. A closed secret is no longer Valid.
func (m *MasterSecret) Close() {
	if m == nil {
		return
	}
	Zero(m.value)
	m.value = nil
}

// String implements fmt.Stringer without revealing the secret.
func (m *MasterSecret) String() string {
	return "[REDACTED]"
}

// LogValue implements slog.LogValuer without revealing the secret.
func (m *MasterSecret) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}
