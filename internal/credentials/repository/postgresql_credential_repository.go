// Package repository implements credential persistence.
//
// PostgreSQL and MySQL repositories form the primary tier, MemoryCredentialRepository
// the optional fallback tier. StoreSelector picks a tier once per request and
// RoutedRepository sends every call of that request to it.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

const credentialColumns = `id, user_id, kind, sealed, model, validated, created_at, updated_at`

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL databases.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Upsert inserts the credential or replaces the stored one for the same user and kind.
// The existing row keeps its id and created_at.
func (p *PostgreSQLCredentialRepository) Upsert(
	ctx context.Context,
	credential *credentialsDomain.Credential,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO credentials (` + credentialColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (user_id, kind) DO UPDATE
			  SET sealed = EXCLUDED.sealed,
			      model = EXCLUDED.model,
			      validated = EXCLUDED.validated,
			      updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.UserID,
		string(credential.Kind),
		string(credential.Sealed),
		credential.Model,
		credential.Validated,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert credential")
	}
	return nil
}

// Get returns the credential stored for userID and kind.
func (p *PostgreSQLCredentialRepository) Get(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  WHERE user_id = $1 AND kind = $2`

	credential, err := scanPostgreSQLCredential(querier.QueryRowContext(ctx, query, userID, string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialsDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}
	return credential, nil
}

// ListByUser returns every credential of userID ordered by kind.
func (p *PostgreSQLCredentialRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]*credentialsDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  WHERE user_id = $1
			  ORDER BY kind`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	return collectPostgreSQLCredentials(rows)
}

// ListAll returns every stored credential ordered by id. Used by master secret rotation.
func (p *PostgreSQLCredentialRepository) ListAll(ctx context.Context) ([]*credentialsDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  ORDER BY id`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list all credentials")
	}
	return collectPostgreSQLCredentials(rows)
}

// UpdateSealed replaces the sealed value of one credential.
func (p *PostgreSQLCredentialRepository) UpdateSealed(
	ctx context.Context,
	id uuid.UUID,
	sealed cryptoDomain.SealedSecret,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET sealed = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, string(sealed), updatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update sealed credential")
	}
	return requireAffected(result)
}

// UpdateValidated records a key check result, provided the credential still holds expected.
// ErrCredentialChanged is returned when the row was replaced or removed meanwhile.
func (p *PostgreSQLCredentialRepository) UpdateValidated(
	ctx context.Context,
	id uuid.UUID,
	expected cryptoDomain.SealedSecret,
	validated bool,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET validated = $1, updated_at = $2 WHERE id = $3 AND sealed = $4`

	result, err := querier.ExecContext(ctx, query, validated, updatedAt, id, string(expected))
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential validation")
	}
	return requireUnchanged(result)
}

// Delete removes the credential of userID for kind.
func (p *PostgreSQLCredentialRepository) Delete(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM credentials WHERE user_id = $1 AND kind = $2`

	result, err := querier.ExecContext(ctx, query, userID, string(kind))
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}
	return requireAffected(result)
}

// Ping reports whether the database is reachable.
func (p *PostgreSQLCredentialRepository) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLCredential(row rowScanner) (*credentialsDomain.Credential, error) {
	var credential credentialsDomain.Credential
	var kind, sealed string

	err := row.Scan(
		&credential.ID,
		&credential.UserID,
		&kind,
		&sealed,
		&credential.Model,
		&credential.Validated,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	credential.Kind = credentialsDomain.Kind(kind)
	credential.Sealed = cryptoDomain.SealedSecret(sealed)
	return &credential, nil
}

func collectPostgreSQLCredentials(rows *sql.Rows) ([]*credentialsDomain.Credential, error) {
	defer func() {
		_ = rows.Close()
	}()

	credentials := make([]*credentialsDomain.Credential, 0)
	for rows.Next() {
		credential, err := scanPostgreSQLCredential(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}
	return credentials, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return credentialsDomain.ErrCredentialNotFound
	}
	return nil
}

func requireUnchanged(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return credentialsDomain.ErrCredentialChanged
	}
	return nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL Credential repository instance.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
