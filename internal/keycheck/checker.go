// Package keycheck asks a credential's provider whether an API key is accepted.
//
// The check is a single cheap read call per provider. The key travels only in
// the request URL and is never logged or included in returned errors.
package keycheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/metrics"
)

var (
	// ErrKeyRejected indicates the provider answered 400, 401 or 403 for the key.
	ErrKeyRejected = apperrors.Wrap(apperrors.ErrInvalidInput, "api key rejected by provider")

	// ErrProviderUnavailable indicates the provider could not give an answer.
	ErrProviderUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "provider unavailable")
)

// Check results reported to metrics.
const (
	resultValid    = "valid"
	resultRejected = "rejected"
	resultError    = "error"
)

// Checker verifies an API key against its provider.
type Checker interface {
	Check(ctx context.Context, kind credentialsDomain.Kind, apiKey, model string) error
}

// Config holds provider endpoints and limits.
type Config struct {
	VideoBaseURL     string
	AssistantBaseURL string
	// VideoProbeID is a public video id read to exercise a video provider key.
	VideoProbeID string
	Timeout      time.Duration
	// MaxRetries bounds retries of 429 and 5xx answers.
	MaxRetries uint64
}

// HTTPChecker implements Checker over HTTP.
type HTTPChecker struct {
	client          *http.Client
	cfg             Config
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewHTTPChecker creates an HTTPChecker. A nil client means a client with cfg.Timeout.
func NewHTTPChecker(
	client *http.Client,
	cfg Config,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *HTTPChecker {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &HTTPChecker{client: client, cfg: cfg, businessMetrics: businessMetrics, logger: logger}
}

// Check returns nil when the provider accepts apiKey, ErrKeyRejected when it
// refuses it and a wrapped ErrProviderUnavailable otherwise.
func (h *HTTPChecker) Check(ctx context.Context, kind credentialsDomain.Kind, apiKey, model string) error {
	endpoint, err := h.endpoint(kind, apiKey, model)
	if err != nil {
		return err
	}

	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = 100 * time.Millisecond
	exponential.MaxInterval = time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(exponential, h.cfg.MaxRetries), ctx)

	err = backoff.Retry(func() error {
		return h.probe(ctx, endpoint)
	}, policy)

	switch {
	case err == nil:
		h.businessMetrics.RecordKeyCheck(ctx, kind.String(), resultValid)
	case errors.Is(err, ErrKeyRejected):
		h.businessMetrics.RecordKeyCheck(ctx, kind.String(), resultRejected)
	default:
		h.businessMetrics.RecordKeyCheck(ctx, kind.String(), resultError)
		if h.logger != nil {
			h.logger.Warn("provider key check failed",
				slog.String("kind", kind.String()),
				slog.Any("error", err),
			)
		}
	}
	return err
}

func (h *HTTPChecker) endpoint(kind credentialsDomain.Kind, apiKey, model string) (string, error) {
	query := url.Values{}
	query.Set("key", apiKey)

	switch kind {
	case credentialsDomain.KindVideoProvider:
		query.Set("part", "id")
		query.Set("id", h.cfg.VideoProbeID)
		return h.cfg.VideoBaseURL + "/videos?" + query.Encode(), nil
	case credentialsDomain.KindAssistantProvider:
		if model == "" {
			return "", apperrors.Wrap(apperrors.ErrInvalidInput, "model is required")
		}
		return h.cfg.AssistantBaseURL + "/models/" + url.PathEscape(model) + "?" + query.Encode(), nil
	}
	return "", credentialsDomain.ErrInvalidKind
}

// probe performs one request. Rejections and client errors are permanent;
// rate limiting and server errors are retried.
func (h *HTTPChecker) probe(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("%w: failed to build request", ErrProviderUnavailable))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		// *url.Error embeds the URL, which carries the key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		if ctx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrProviderUnavailable, ctx.Err()))
		}
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return backoff.Permanent(ErrKeyRejected)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return fmt.Errorf("%w: provider answered %d", ErrProviderUnavailable, resp.StatusCode)
	default:
		return backoff.Permanent(
			fmt.Errorf("%w: provider answered %d", ErrProviderUnavailable, resp.StatusCode),
		)
	}
}
