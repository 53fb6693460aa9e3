package usecase

import (
	"context"
	"time"

	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	"github.com/allisson/keyvault/internal/metrics"
)

const metricsDomain = "credentials"

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *credentialUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	c.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Save records metrics for credential save operations.
func (c *credentialUseCaseWithMetrics) Save(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
	plaintext, model string,
	validate bool,
) (*credentialsDomain.Status, error) {
	start := time.Now()
	status, err := c.next.Save(ctx, userID, kind, plaintext, model, validate)
	c.record(ctx, "credential_save", start, err)
	return status, err
}

// Reveal records metrics for credential reveal operations.
func (c *credentialUseCaseWithMetrics) Reveal(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Revealed, error) {
	start := time.Now()
	revealed, err := c.next.Reveal(ctx, userID, kind)
	c.record(ctx, "credential_reveal", start, err)
	return revealed, err
}

// Status records metrics for credential status listing.
func (c *credentialUseCaseWithMetrics) Status(
	ctx context.Context,
	userID string,
) ([]*credentialsDomain.Status, error) {
	start := time.Now()
	statuses, err := c.next.Status(ctx, userID)
	c.record(ctx, "credential_status", start, err)
	return statuses, err
}

// Delete records metrics for credential deletion.
func (c *credentialUseCaseWithMetrics) Delete(ctx context.Context, userID string, kind credentialsDomain.Kind) error {
	start := time.Now()
	err := c.next.Delete(ctx, userID, kind)
	c.record(ctx, "credential_delete", start, err)
	return err
}

// Verify records metrics for credential verification.
func (c *credentialUseCaseWithMetrics) Verify(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Status, error) {
	start := time.Now()
	status, err := c.next.Verify(ctx, userID, kind)
	c.record(ctx, "credential_verify", start, err)
	return status, err
}
