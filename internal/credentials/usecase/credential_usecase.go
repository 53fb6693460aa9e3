package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	"github.com/allisson/keyvault/internal/keycheck"
)

// credentialUseCase implements the CredentialUseCase interface.
type credentialUseCase struct {
	repo         CredentialRepository
	sealer       cryptoService.Sealer
	checker      KeyChecker
	defaultModel string
	logger       *slog.Logger
}

// NewCredentialUseCase creates a CredentialUseCase. defaultModel is used for
// assistant credentials saved without a model.
func NewCredentialUseCase(
	repo CredentialRepository,
	sealer cryptoService.Sealer,
	checker KeyChecker,
	defaultModel string,
	logger *slog.Logger,
) CredentialUseCase {
	return &credentialUseCase{
		repo:         repo,
		sealer:       sealer,
		checker:      checker,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (c *credentialUseCase) Save(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
	plaintext, model string,
	validate bool,
) (*credentialsDomain.Status, error) {
	if !kind.Valid() {
		return nil, credentialsDomain.ErrInvalidKind
	}
	if strings.TrimSpace(plaintext) == "" {
		return nil, credentialsDomain.ErrEmptyCredential
	}
	model = c.modelFor(kind, model)

	if validate {
		if err := c.check(ctx, kind, plaintext, model); err != nil {
			return nil, err
		}
	}

	sealed, err := c.sealer.Seal(plaintext, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	credential := &credentialsDomain.Credential{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		Kind:      kind,
		Sealed:    sealed,
		Model:     model,
		Validated: validate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.repo.Upsert(ctx, credential); err != nil {
		return nil, err
	}

	return configuredStatus(credential), nil
}

func (c *credentialUseCase) Reveal(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Revealed, error) {
	credential, err := c.load(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	plaintext, err := c.unseal(credential)
	if err != nil {
		return nil, err
	}

	return &credentialsDomain.Revealed{Kind: kind, APIKey: plaintext, Model: credential.Model}, nil
}

func (c *credentialUseCase) Status(ctx context.Context, userID string) ([]*credentialsDomain.Status, error) {
	stored, err := c.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byKind := make(map[credentialsDomain.Kind]*credentialsDomain.Credential, len(stored))
	for _, credential := range stored {
		byKind[credential.Kind] = credential
	}

	statuses := make([]*credentialsDomain.Status, 0, len(credentialsDomain.Kinds()))
	for _, kind := range credentialsDomain.Kinds() {
		credential, ok := byKind[kind]
		switch {
		case !ok:
			statuses = append(statuses, &credentialsDomain.Status{Kind: kind})
		case c.sealer.IsValid(credential.Sealed, userID):
			statuses = append(statuses, configuredStatus(credential))
		default:
			updatedAt := credential.UpdatedAt
			statuses = append(statuses, &credentialsDomain.Status{Kind: kind, UpdatedAt: &updatedAt})
		}
	}
	return statuses, nil
}

func (c *credentialUseCase) Delete(ctx context.Context, userID string, kind credentialsDomain.Kind) error {
	if !kind.Valid() {
		return credentialsDomain.ErrInvalidKind
	}
	return c.repo.Delete(ctx, userID, kind)
}

func (c *credentialUseCase) Verify(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Status, error) {
	credential, err := c.load(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	plaintext, err := c.unseal(credential)
	if err != nil {
		return nil, err
	}

	checkErr := c.check(ctx, kind, plaintext, credential.Model)
	if checkErr != nil && !errors.Is(checkErr, credentialsDomain.ErrCredentialRejected) {
		return nil, checkErr
	}

	// Only the check result is written, and only while the sealed value is unchanged.
	credential.Validated = checkErr == nil
	credential.UpdatedAt = time.Now().UTC()
	err = c.repo.UpdateValidated(ctx, credential.ID, credential.Sealed, credential.Validated, credential.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if checkErr != nil {
		return nil, checkErr
	}
	return configuredStatus(credential), nil
}

func (c *credentialUseCase) load(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Credential, error) {
	if !kind.Valid() {
		return nil, credentialsDomain.ErrInvalidKind
	}
	return c.repo.Get(ctx, userID, kind)
}

func (c *credentialUseCase) unseal(credential *credentialsDomain.Credential) (string, error) {
	plaintext, err := c.sealer.Unseal(credential.Sealed, credential.UserID)
	if err == nil {
		return plaintext, nil
	}
	if errors.Is(err, cryptoDomain.ErrDecryption) {
		if c.logger != nil {
			c.logger.Warn("stored credential does not open",
				slog.String("credential_id", credential.ID.String()),
				slog.String("kind", credential.Kind.String()),
			)
		}
		return "", credentialsDomain.ErrCredentialUnusable
	}
	return "", err
}

func (c *credentialUseCase) check(ctx context.Context, kind credentialsDomain.Kind, apiKey, model string) error {
	err := c.checker.Check(ctx, kind, apiKey, model)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keycheck.ErrKeyRejected):
		return credentialsDomain.ErrCredentialRejected
	case errors.Is(err, keycheck.ErrProviderUnavailable):
		return credentialsDomain.ErrProviderUnavailable
	}
	return err
}

func (c *credentialUseCase) modelFor(kind credentialsDomain.Kind, model string) string {
	if !kind.RequiresModel() {
		return ""
	}
	if model = strings.TrimSpace(model); model == "" {
		return c.defaultModel
	}
	return model
}

func configuredStatus(credential *credentialsDomain.Credential) *credentialsDomain.Status {
	updatedAt := credential.UpdatedAt
	return &credentialsDomain.Status{
		Kind:       credential.Kind,
		Configured: true,
		Model:      credential.Model,
		Validated:  credential.Validated,
		UpdatedAt:  &updatedAt,
	}
}
