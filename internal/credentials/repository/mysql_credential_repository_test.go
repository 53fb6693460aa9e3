package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	credentialsDomain "github.com/allisson/keyvault/internal/credentials/domain"
)

func TestMySQLCredentialRepository_Upsert(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLCredentialRepository(db)
	credential := newTestCredential("user-42", credentialsDomain.KindVideoProvider)
	rawID, err := credential.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs(
			rawID,
			"user-42",
			"video-provider",
			string(credential.Sealed),
			"",
			false,
			credential.CreatedAt,
			credential.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), credential))
}

func TestMySQLCredentialRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewMySQLCredentialRepository(db)
		expected := newTestCredential("user-42", credentialsDomain.KindAssistantProvider)
		rawID, err := expected.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = ? AND kind = ?")).
			WithArgs("user-42", "assistant-provider").
			WillReturnRows(sqlmock.NewRows(credentialRowColumns).AddRow(
				rawID,
				expected.UserID,
				"assistant-provider",
				string(expected.Sealed),
				"gemini-1.5-flash",
				false,
				expected.CreatedAt,
				expected.UpdatedAt,
			))

		credential, err := repo.Get(context.Background(), "user-42", credentialsDomain.KindAssistantProvider)
		require.NoError(t, err)
		assert.Equal(t, expected.ID, credential.ID)
		assert.Equal(t, "gemini-1.5-flash", credential.Model)
	})

	t.Run("corrupt id", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewMySQLCredentialRepository(db)
		now := time.Now()

		mock.ExpectQuery("FROM credentials").
			WillReturnRows(sqlmock.NewRows(credentialRowColumns).
				AddRow([]byte{1, 2, 3}, "user-42", "video-provider", "x", "", false, now, now))

		credential, err := repo.Get(context.Background(), "user-42", credentialsDomain.KindVideoProvider)
		assert.Nil(t, credential)
		assert.ErrorContains(t, err, "failed to get credential")
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewMySQLCredentialRepository(db)

		mock.ExpectQuery("FROM credentials").WillReturnRows(sqlmock.NewRows(credentialRowColumns))

		_, err := repo.Get(context.Background(), "user-42", credentialsDomain.KindVideoProvider)
		assert.ErrorIs(t, err, credentialsDomain.ErrCredentialNotFound)
	})
}

func TestMySQLCredentialRepository_ListAll(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLCredentialRepository(db)
	c := newTestCredential("user-7", credentialsDomain.KindVideoProvider)
	rawID, err := c.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(credentialRowColumns).
			AddRow(rawID, c.UserID, string(c.Kind), string(c.Sealed), "", true, c.CreatedAt, c.UpdatedAt))

	credentials, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, credentials, 1)
	assert.Equal(t, c.ID, credentials[0].ID)
}

func TestMySQLCredentialRepository_UpdateSealed(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLCredentialRepository(db)
	id := uuid.Must(uuid.NewV7())
	rawID, err := id.MarshalBinary()
	require.NoError(t, err)
	updatedAt := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE credentials SET sealed = ?, updated_at = ? WHERE id = ?")).
		WithArgs("bmV3", updatedAt, rawID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateSealed(context.Background(), id, "bmV3", updatedAt))
}

func TestMySQLCredentialRepository_UpdateValidated(t *testing.T) {
	query := regexp.QuoteMeta("UPDATE credentials SET validated = ?, updated_at = ? WHERE id = ? AND sealed = ?")

	t.Run("sealed value unchanged", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewMySQLCredentialRepository(db)
		id := uuid.Must(uuid.NewV7())
		rawID, err := id.MarshalBinary()
		require.NoError(t, err)
		updatedAt := time.Now().UTC()

		mock.ExpectExec(query).
			WithArgs(false, updatedAt, rawID, "b2xk").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateValidated(context.Background(), id, "b2xk", false, updatedAt))
	})

	t.Run("replaced meanwhile", func(t *testing.T) {
		db, mock := newSQLMock(t)
		repo := NewMySQLCredentialRepository(db)

		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateValidated(context.Background(), uuid.Must(uuid.NewV7()), "b2xk", true, time.Now())
		assert.ErrorIs(t, err, credentialsDomain.ErrCredentialChanged)
	})
}

func TestMySQLCredentialRepository_Delete(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLCredentialRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM credentials WHERE user_id = ? AND kind = ?")).
		WithArgs("user-42", "assistant-provider").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-42", credentialsDomain.KindAssistantProvider)
	assert.ErrorIs(t, err, credentialsDomain.ErrCredentialNotFound)
}
