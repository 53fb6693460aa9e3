package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	"github.com/allisson/keyvault/internal/metrics"
)

// Store tier names reported in logs and metrics.
const (
	TierPrimary  = "primary"
	TierFallback = "fallback"
)

const defaultPingTimeout = 500 * time.Millisecond

type storeKey struct{}

type selectedStore struct {
	store Store
	tier  string
}

// StoreSelector decides once per request which tier serves it.
// The primary tier is used whenever its Ping succeeds. Otherwise the fallback
// tier is used if configured, else the request fails with ErrStoreUnavailable.
//
// The tiers are never reconciled. Credentials saved to the fallback during an
// outage stay there and are not visible once the primary answers again, so
// users see the older primary value (or none) and must save again. While the
// primary is down, reads and deletes only see what was saved to the fallback,
// so a key held by the primary is reported as not found.
type StoreSelector struct {
	primary         Store
	fallback        Store
	pingTimeout     time.Duration
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewStoreSelector creates a selector. fallback may be nil.
func NewStoreSelector(
	primary, fallback Store,
	pingTimeout time.Duration,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *StoreSelector {
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &StoreSelector{
		primary:         primary,
		fallback:        fallback,
		pingTimeout:     pingTimeout,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// Select probes the primary tier and returns ctx carrying the chosen store and its tier name.
func (s *StoreSelector) Select(ctx context.Context) (context.Context, string, error) {
	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	err := s.primary.Ping(pingCtx)
	cancel()

	if err == nil {
		s.businessMetrics.RecordStoreTier(ctx, TierPrimary)
		return WithStore(ctx, s.primary, TierPrimary), TierPrimary, nil
	}

	if s.fallback == nil {
		if s.logger != nil {
			s.logger.Error("primary credential store unavailable", slog.Any("error", err))
		}
		return ctx, "", credentialsDomain.ErrStoreUnavailable
	}

	if s.logger != nil {
		s.logger.Warn("primary credential store unavailable, using fallback", slog.Any("error", err))
	}
	s.businessMetrics.RecordStoreTier(ctx, TierFallback)
	return WithStore(ctx, s.fallback, TierFallback), TierFallback, nil
}

// Primary returns the primary tier.
func (s *StoreSelector) Primary() Store {
	return s.primary
}

// WithStore returns a copy of ctx that routes RoutedRepository calls to store.
func WithStore(ctx context.Context, store Store, tier string) context.Context {
	return context.WithValue(ctx, storeKey{}, selectedStore{store: store, tier: tier})
}

// TierFromContext returns the tier chosen for ctx, if any.
func TierFromContext(ctx context.Context) (string, bool) {
	selected, ok := ctx.Value(storeKey{}).(selectedStore)
	return selected.tier, ok
}

// RoutedRepository sends each call to the store chosen for the request context,
// or to the default store when the context carries none (CLI commands, background jobs).
type RoutedRepository struct {
	defaultStore Store
}

// NewRoutedRepository creates a RoutedRepository falling back to defaultStore.
func NewRoutedRepository(defaultStore Store) *RoutedRepository {
	return &RoutedRepository{defaultStore: defaultStore}
}

func (r *RoutedRepository) store(ctx context.Context) Store {
	if selected, ok := ctx.Value(storeKey{}).(selectedStore); ok {
		return selected.store
	}
	return r.defaultStore
}

func (r *RoutedRepository) Upsert(ctx context.Context, credential *credentialsDomain.Credential) error {
	return r.store(ctx).Upsert(ctx, credential)
}

func (r *RoutedRepository) Get(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Credential, error) {
	return r.store(ctx).Get(ctx, userID, kind)
}

func (r *RoutedRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]*credentialsDomain.Credential, error) {
	return r.store(ctx).ListByUser(ctx, userID)
}

func (r *RoutedRepository) ListAll(ctx context.Context) ([]*credentialsDomain.Credential, error) {
	return r.store(ctx).ListAll(ctx)
}

func (r *RoutedRepository) UpdateSealed(
	ctx context.Context,
	id uuid.UUID,
	sealed cryptoDomain.SealedSecret,
	updatedAt time.Time,
) error {
	return r.store(ctx).UpdateSealed(ctx, id, sealed, updatedAt)
}

func (r *RoutedRepository) UpdateValidated(
	ctx context.Context,
	id uuid.UUID,
	expected cryptoDomain.SealedSecret,
	validated bool,
	updatedAt time.Time,
) error {
	return r.store(ctx).UpdateValidated(ctx, id, expected, validated, updatedAt)
}

func (r *RoutedRepository) Delete(ctx context.Context, userID string, kind credentialsDomain.Kind) error {
	return r.store(ctx).Delete(ctx, userID, kind)
}

func (r *RoutedRepository) Ping(ctx context.Context) error {
	return r.store(ctx).Ping(ctx)
}
