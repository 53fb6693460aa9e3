package usecase

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	"github.com/allisson/keyvault/internal/database"
)

type resealed struct {
	sealed cryptoDomain.SealedSecret
	ok     bool
}

// rotationUseCase implements the RotationUseCase interface.
type rotationUseCase struct {
	txManager   database.TxManager
	repo        CredentialRepository
	concurrency int
	logger      *slog.Logger
}

// NewRotationUseCase creates a RotationUseCase. concurrency bounds parallel key
// derivations; zero means GOMAXPROCS.
func NewRotationUseCase(
	txManager database.TxManager,
	repo CredentialRepository,
	concurrency int,
	logger *slog.Logger,
) RotationUseCase {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &rotationUseCase{txManager: txManager, repo: repo, concurrency: concurrency, logger: logger}
}

// Rotate re-seals every stored credential from the from sealer to the to sealer
// in a single serializable transaction. Credentials that do not open under from
// are left untouched and listed in the report. Any other failure rolls back
// the whole rotation.
func (r *rotationUseCase) Rotate(
	ctx context.Context,
	from, to cryptoService.Sealer,
) (*credentialsDomain.RotationReport, error) {
	report := &credentialsDomain.RotationReport{}

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	err := r.txManager.WithTxOptions(ctx, opts, func(txCtx context.Context) error {
		credentials, err := r.repo.ListAll(txCtx)
		if err != nil {
			return err
		}
		report.Total = len(credentials)

		results := make([]resealed, len(credentials))

		// Key derivation dominates the cost, so re-sealing runs in parallel
		// and the writes stay sequential on the transaction.
		g, gCtx := errgroup.WithContext(txCtx)
		g.SetLimit(r.concurrency)
		for i, credential := range credentials {
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				plaintext, err := from.Unseal(credential.Sealed, credential.UserID)
				if err != nil {
					if errors.Is(err, cryptoDomain.ErrDecryption) {
						return nil
					}
					return err
				}
				sealed, err := to.Seal(plaintext, credential.UserID)
				if err != nil {
					return err
				}
				results[i] = resealed{sealed: sealed, ok: true}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		now := time.Now().UTC()
		for i, credential := range credentials {
			if !results[i].ok {
				report.Skipped = append(report.Skipped, credential.ID)
				continue
			}
			if err := r.repo.UpdateSealed(txCtx, credential.ID, results[i].sealed, now); err != nil {
				return err
			}
			report.Rotated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Info("master secret rotation finished",
			slog.Int("total", report.Total),
			slog.Int("rotated", report.Rotated),
			slog.Int("skipped", len(report.Skipped)),
		)
		for _, id := range report.Skipped {
			r.logger.Warn("credential skipped during rotation", slog.String("credential_id", id.String()))
		}
	}
	return report, nil
}
