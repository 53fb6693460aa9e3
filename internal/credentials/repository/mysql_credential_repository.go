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

// MySQLCredentialRepository implements Credential persistence for MySQL databases.
// Ids are stored as BINARY(16).
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Upsert inserts the credential or replaces the stored one for the same user and kind.
func (m *MySQLCredentialRepository) Upsert(
	ctx context.Context,
	credential *credentialsDomain.Credential,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO credentials (` + credentialColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			      sealed = VALUES(sealed),
			      model = VALUES(model),
			      validated = VALUES(validated),
			      updated_at = VALUES(updated_at)`

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLCredentialRepository) Get(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) (*credentialsDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  WHERE user_id = ? AND kind = ?`

	credential, err := scanMySQLCredential(querier.QueryRowContext(ctx, query, userID, string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialsDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}
	return credential, nil
}

// ListByUser returns every credential of userID ordered by kind.
func (m *MySQLCredentialRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]*credentialsDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  WHERE user_id = ?
			  ORDER BY kind`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	return collectMySQLCredentials(rows)
}

// ListAll returns every stored credential ordered by id.
func (m *MySQLCredentialRepository) ListAll(ctx context.Context) ([]*credentialsDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  ORDER BY id`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list all credentials")
	}
	return collectMySQLCredentials(rows)
}

// UpdateSealed replaces the sealed value of one credential.
func (m *MySQLCredentialRepository) UpdateSealed(
	ctx context.Context,
	id uuid.UUID,
	sealed cryptoDomain.SealedSecret,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE credentials SET sealed = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, string(sealed), updatedAt, rawID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update sealed credential")
	}
	return requireAffected(result)
}

// UpdateValidated records a key check result, provided the credential still holds expected.
// ErrCredentialChanged is returned when the row was replaced or removed meanwhile.
func (m *MySQLCredentialRepository) UpdateValidated(
	ctx context.Context,
	id uuid.UUID,
	expected cryptoDomain.SealedSecret,
	validated bool,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE credentials SET validated = ?, updated_at = ? WHERE id = ? AND sealed = ?`

	result, err := querier.ExecContext(ctx, query, validated, updatedAt, rawID, string(expected))
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential validation")
	}
	return requireUnchanged(result)
}

// Delete removes the credential of userID for kind.
func (m *MySQLCredentialRepository) Delete(
	ctx context.Context,
	userID string,
	kind credentialsDomain.Kind,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM credentials WHERE user_id = ? AND kind = ?`

	result, err := querier.ExecContext(ctx, query, userID, string(kind))
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}
	return requireAffected(result)
}

// Ping reports whether the database is reachable.
func (m *MySQLCredentialRepository) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func scanMySQLCredential(row rowScanner) (*credentialsDomain.Credential, error) {
	var credential credentialsDomain.Credential
	var id []byte
	var kind, sealed string

	err := row.Scan(
		&id,
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

	if err := credential.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
	}
	credential.Kind = credentialsDomain.Kind(kind)
	credential.Sealed = cryptoDomain.SealedSecret(sealed)
	return &credential, nil
}

func collectMySQLCredentials(rows *sql.Rows) ([]*credentialsDomain.Credential, error) {
	defer func() {
		_ = rows.Close()
	}()

	credentials := make([]*credentialsDomain.Credential, 0)
	for rows.Next() {
		credential, err := scanMySQLCredential(rows)
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

// NewMySQLCredentialRepository creates a new MySQL Credential repository instance.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
