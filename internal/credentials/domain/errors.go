package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Credential-specific error definitions.
var (
	// ErrCredentialNotFound indicates no credential is stored for the user and kind.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrCredentialUnusable indicates a stored credential could not be unsealed.
	// Callers see it as "no usable credential stored"; the cause is never exposed.
	ErrCredentialUnusable = errors.Wrap(errors.ErrNotFound, "no usable credential stored")

	// ErrCredentialChanged indicates the stored credential was replaced while it was
	// being verified. The newer value is kept and must be verified on its own.
	ErrCredentialChanged = errors.Wrap(errors.ErrConflict, "credential changed during verification")

	// ErrInvalidKind indicates an unsupported credential kind.
	ErrInvalidKind = errors.Wrap(errors.ErrInvalidInput, "unsupported credential kind")

	// ErrEmptyCredential indicates an empty API key was submitted.
	ErrEmptyCredential = errors.Wrap(errors.ErrInvalidInput, "credential value is required")

	// ErrCredentialRejected indicates the provider refused the API key.
	ErrCredentialRejected = errors.Wrap(errors.ErrInvalidInput, "credential rejected by provider")

	// ErrStoreUnavailable indicates neither credential store tier could serve the request.
	ErrStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "credential store unavailable")

	// ErrProviderUnavailable indicates the provider could not be reached to check a key.
	ErrProviderUnavailable = errors.Wrap(errors.ErrUnavailable, "credential provider unavailable")
)
