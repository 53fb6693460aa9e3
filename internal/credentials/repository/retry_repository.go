package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// RetryRepository retries transient Store errors with exponential backoff.
// Domain errors (not found, invalid input) and context cancellation are returned at once.
type RetryRepository struct {
	next       Store
	maxElapsed time.Duration
	logger     *slog.Logger
}

// NewRetryRepository wraps next. A zero maxElapsed disables retries.
func NewRetryRepository(next Store, maxElapsed time.Duration, logger *slog.Logger) *RetryRepository {
	return &RetryRepository{next: next, maxElapsed: maxElapsed, logger: logger}
}

func (r *RetryRepository) Upsert(ctx context.Context, credential *credentialsDomain.Credential) error {
	return r.do(ctx, "upsert", func() error {
		return r.next.Upsert(ctx, credential)
	})
}

func (r *RetryRepository) Get(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Credential, error) {
	var credential *credentialsDomain.Credential
	err := r.do(ctx, "get", func() error {
		var err error
		credential, err = r.next.Get(ctx, userID, kind)
		return err
	})
	return credential, err
}

func (r *RetryRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]*credentialsDomain.Credential, error) {
	var credentials []*credentialsDomain.Credential
	err := r.do(ctx, "list_by_user", func() error {
		var err error
		credentials, err = r.next.ListByUser(ctx, userID)
		return err
	})
	return credentials, err
}

func (r *RetryRepository) ListAll(ctx context.Context) ([]*credentialsDomain.Credential, error) {
	var credentials []*credentialsDomain.Credential
	err := r.do(ctx, "list_all", func() error {
		var err error
		credentials, err = r.next.ListAll(ctx)
		return err
	})
	return credentials, err
}

func (r *RetryRepository) UpdateSealed(
	ctx context.Context,
	id uuid.UUID,
	sealed cryptoDomain.SealedSecret,
	updatedAt time.Time,
) error {
	return r.do(ctx, "update_sealed", func() error {
		return r.next.UpdateSealed(ctx, id, sealed, updatedAt)
	})
}

func (r *RetryRepository) UpdateValidated(
	ctx context.Context,
	id uuid.UUID,
	expected cryptoDomain.SealedSecret,
	validated bool,
	updatedAt time.Time,
) error {
	return r.do(ctx, "update_validated", func() error {
		return r.next.UpdateValidated(ctx, id, expected, validated, updatedAt)
	})
}

func (r *RetryRepository) Delete(ctx context.Context, userID string, kind credentialsDomain.Kind) error {
	return r.do(ctx, "delete", func() error {
		return r.next.Delete(ctx, userID, kind)
	})
}

// Ping is not retried; the store selector needs a fast answer.
func (r *RetryRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *RetryRepository) do(ctx context.Context, operation string, fn func() error) error {
	if r.maxElapsed <= 0 {
		return fn()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = r.maxElapsed

	return backoff.RetryNotify(
		func() error {
			err := fn()
			if err != nil && !isTransient(ctx, err) {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(policy, ctx),
		func(err error, wait time.Duration) {
			if r.logger != nil {
				r.logger.Warn("credential store operation failed, retrying",
					slog.String("operation", operation),
					slog.Duration("wait", wait),
					slog.Any("error", err),
				)
			}
		},
	)
}

func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound),
		apperrors.Is(err, apperrors.ErrInvalidInput),
		apperrors.Is(err, apperrors.ErrConflict),
		apperrors.Is(err, context.Canceled),
		apperrors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
