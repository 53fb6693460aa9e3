// Package domain defines the stored credential records and their non-secret views.
// A user holds at most one credential per Kind; saving replaces the sealed value.
package domain

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// Kind identifies which third-party provider a credential belongs to.
type Kind string

const (
	// KindVideoProvider is a video platform data API key.
	KindVideoProvider Kind = "video-provider"
	// KindAssistantProvider is an AI note-generation API key. It carries a model name.
	KindAssistantProvider Kind = "assistant-provider"
)

// Kinds returns every supported Kind in display order.
func Kinds() []Kind {
	return []Kind{KindVideoProvider, KindAssistantProvider}
}

// ParseKind converts s to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	switch k {
	case KindVideoProvider, KindAssistantProvider:
		return true
	}
	return false
}

// RequiresModel reports whether credentials of this kind are bound to a model name.
func (k Kind) RequiresModel() bool {
	return k == KindAssistantProvider
}

func (k Kind) String() string {
	return string(k)
}

// Credential is a sealed provider API key owned by one user.
type Credential struct {
	ID     uuid.UUID
	UserID string
	Kind   Kind
	// Sealed is only valid for UserID; unsealing with another identifier fails.
	Sealed cryptoDomain.SealedSecret
	// Model is the assistant model name, empty for other kinds.
	Model string
	// Validated is true once the provider accepted the key.
	Validated bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status is the non-secret view of a user's credential for one kind.
type Status struct {
	Kind Kind
	// Configured is true when a credential is stored and opens with the current master secret.
	Configured bool
	Model      string
	Validated  bool
	UpdatedAt  *time.Time
}

// Revealed is an unsealed credential. APIKey is plaintext and must not be logged.
type Revealed struct {
	Kind   Kind
	APIKey string
	Model  string
}

// LogValue keeps the key out of structured logs.
func (r Revealed) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(r.Kind)),
		slog.String("model", r.Model),
	)
}

// RotationReport summarizes a master secret rotation.
type RotationReport struct {
	Total   int
	Rotated int
	// Skipped lists credentials that did not open with the current master secret.
	Skipped []uuid.UUID
}
