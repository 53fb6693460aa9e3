// Package usecase implements the credential vault operations offered to users:
// saving, revealing, verifying and deleting provider API keys, plus master
// secret rotation for operators.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
)

// CredentialRepository defines the interface for Credential persistence operations.
type CredentialRepository interface {
	Upsert(ctx context.Context, credential *credentialsDomain.Credential) error
	Get(ctx context.Context, userID string, kind credentialsDomain.Kind) (*credentialsDomain.Credential, error)
	ListByUser(ctx context.Context, userID string) ([]*credentialsDomain.Credential, error)
	ListAll(ctx context.Context) ([]*credentialsDomain.Credential, error)
	UpdateSealed(ctx context.Context, id uuid.UUID, sealed cryptoDomain.SealedSecret, updatedAt time.Time) error
	UpdateValidated(
		ctx context.Context,
		id uuid.UUID,
		expected cryptoDomain.SealedSecret,
		validated bool,
		updatedAt time.Time,
	) error
	Delete(ctx context.Context, userID string, kind credentialsDomain.Kind) error
}

// KeyChecker asks the provider whether an API key is accepted.
type KeyChecker interface {
	Check(ctx context.Context, kind credentialsDomain.Kind, apiKey, model string) error
}

// CredentialUseCase defines the per-user credential operations.
type CredentialUseCase interface {
	// Save seals plaintext for userID and replaces any stored credential of kind.
	// When validate is true the provider must accept the key first.
	Save(
		ctx context.Context,
		userID string,
		kind credentialsDomain.Kind,
		plaintext, model string,
		validate bool,
	) (*credentialsDomain.Status, error)

	// Reveal unseals the stored credential. A credential that does not open
	// yields ErrCredentialUnusable.
	Reveal(ctx context.Context, userID string, kind credentialsDomain.Kind) (*credentialsDomain.Revealed, error)

	// Status returns one entry per supported kind.
	Status(ctx context.Context, userID string) ([]*credentialsDomain.Status, error)

	// Delete removes the stored credential of kind.
	Delete(ctx context.Context, userID string, kind credentialsDomain.Kind) error

	// Verify re-checks the stored credential with its provider and records the result.
	// If the credential is replaced or deleted during the check, nothing is written
	// and ErrCredentialChanged is returned.
	Verify(ctx context.Context, userID string, kind credentialsDomain.Kind) (*credentialsDomain.Status, error)
}

// RotationUseCase re-seals stored credentials under a new master secret.
type RotationUseCase interface {
	Rotate(ctx context.Context, from, to cryptoService.Sealer) (*credentialsDomain.RotationReport, error)
}
