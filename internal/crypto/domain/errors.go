package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Vault error taxonomy.
//
// ErrConfiguration is fatal and means the process must not serve requests.
// ErrEncryption is an unexpected cipher failure while sealing.
// ErrDecryption covers every unseal failure (bad encoding, short frame,
// tampering, wrong user, wrong master secret); the cause is deliberately
// not distinguished.
var (
	// ErrConfiguration indicates a missing or weak master secret, or an
	// invalid vault parameter such as a lowered KDF iteration count.
	ErrConfiguration = errors.New("vault configuration error")

	// ErrMasterSecretNotSet indicates the master secret was not provided.
	ErrMasterSecretNotSet = errors.Wrap(ErrConfiguration, "master secret is not set")

	// ErrMasterSecretTooShort indicates the master secret has fewer than
	// MinMasterSecretLength characters.
	ErrMasterSecretTooShort = errors.Wrap(ErrConfiguration, "master secret is too short")

	// ErrEncryption indicates the cipher failed while sealing.
	ErrEncryption = errors.New("encryption failed")

	// ErrDecryption indicates a sealed secret could not be opened.
	//
	// HTTP Status: 422 Unprocessable Entity (callers usually translate it first)
	ErrDecryption = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrEmptyUserID indicates an empty user identifier was supplied.
	ErrEmptyUserID = errors.Wrap(errors.ErrInvalidInput, "user identifier is required")
)
