package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
)

// Store is a credential storage tier.
type Store interface {
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
	Ping(ctx context.Context) error
}

var (
	_ Store = (*PostgreSQLCredentialRepository)(nil)
	_ Store = (*MySQLCredentialRepository)(nil)
	_ Store = (*MemoryCredentialRepository)(nil)
	_ Store = (*RetryRepository)(nil)
	_ Store = (*RoutedRepository)(nil)
)
