package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
)

type memoryKey struct {
	userID string
	kind   credentialsDomain.Kind
}

// MemoryCredentialRepository keeps credentials in process memory.
// It backs the fallback tier and holds only sealed values. Contents are lost on restart.
type MemoryCredentialRepository struct {
	mu          sync.RWMutex
	credentials map[memoryKey]*credentialsDomain.Credential
}

// Upsert stores a copy of credential, keeping the id and created_at of an existing entry.
func (m *MemoryCredentialRepository) Upsert(
	ctx context.Context,
	credential *credentialsDomain.Credential,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{userID: credential.UserID, kind: credential.Kind}
	stored := *credential
	if existing, ok := m.credentials[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	m.credentials[key] = &stored
	return nil
}

// Get returns a copy of the credential stored for userID and kind.
func (m *MemoryCredentialRepository) Get(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	credential, ok := m.credentials[memoryKey{userID: userID, kind: kind}]
	if !ok {
		return nil, credentialsDomain.ErrCredentialNotFound
	}
	c := *credential
	return &c, nil
}

// ListByUser returns copies of every credential of userID ordered by kind.
func (m *MemoryCredentialRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]*credentialsDomain.Credential, error) {
	return m.list(
		func(c *credentialsDomain.Credential) bool { return c.UserID == userID },
		func(a, b *credentialsDomain.Credential) bool { return a.Kind < b.Kind },
	), nil
}

// ListAll returns copies of every credential ordered by id.
func (m *MemoryCredentialRepository) ListAll(ctx context.Context) ([]*credentialsDomain.Credential, error) {
	return m.list(
		func(*credentialsDomain.Credential) bool { return true },
		func(a, b *credentialsDomain.Credential) bool { return a.ID.String() < b.ID.String() },
	), nil
}

// UpdateSealed replaces the sealed value of the credential with id.
func (m *MemoryCredentialRepository) UpdateSealed(
	ctx context.Context,
	id uuid.UUID,
	sealed cryptoDomain.SealedSecret,
	updatedAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, credential := range m.credentials {
		if credential.ID == id {
			credential.Sealed = sealed
			credential.UpdatedAt = updatedAt
			return nil
		}
	}
	return credentialsDomain.ErrCredentialNotFound
}

// UpdateValidated records a key check result, provided the credential with id still holds expected.
func (m *MemoryCredentialRepository) UpdateValidated(
	ctx context.Context,
	id uuid.UUID,
	expected cryptoDomain.SealedSecret,
	validated bool,
	updatedAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, credential := range m.credentials {
		if credential.ID == id && credential.Sealed == expected {
			credential.Validated = validated
			credential.UpdatedAt = updatedAt
			return nil
		}
	}
	return credentialsDomain.ErrCredentialChanged
}

// Delete removes the credential of userID for kind.
func (m *MemoryCredentialRepository) Delete(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{userID: userID, kind: kind}
	if _, ok := m.credentials[key]; !ok {
		return credentialsDomain.ErrCredentialNotFound
	}
	delete(m.credentials, key)
	return nil
}

// Ping always succeeds.
func (m *MemoryCredentialRepository) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryCredentialRepository) list(
	match func(*credentialsDomain.Credential) bool,
	less func(a, b *credentialsDomain.Credential) bool,
) []*credentialsDomain.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()

	credentials := make([]*credentialsDomain.Credential, 0)
	for _, credential := range m.credentials {
		if match(credential) {
			c := *credential
			credentials = append(credentials, &c)
		}
	}
	sort.Slice(credentials, func(i, j int) bool { return less(credentials[i], credentials[j]) })
	return credentials
}

// NewMemoryCredentialRepository creates an empty in-memory Credential repository.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{credentials: make(map[memoryKey]*credentialsDomain.Credential)}
}
