package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

type mockEncrypter struct {
	mock.Mock
}

func (m *mockEncrypter) Encrypt(ctx context.Context, keyURI string, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, keyURI, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestGenerateMasterSecret(t *testing.T) {
	first, err := GenerateMasterSecret(GeneratedMasterSecretLength)
	require.NoError(t, err)
	second, err := GenerateMasterSecret(GeneratedMasterSecretLength)
	require.NoError(t, err)

	assert.Len(t, first, GeneratedMasterSecretLength)
	assert.NotEqual(t, first, second)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_.~-]+$`), first)

	_, err = cryptoDomain.NewMasterSecret(first)
	assert.NoError(t, err)

	_, err = GenerateMasterSecret(cryptoDomain.MinMasterSecretLength - 1)
	assert.Error(t, err)
}

func TestRunCreateMasterSecret(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyURI := "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

	t.Run("plain", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCreateMasterSecret(ctx, nil, logger, &out, "")
		require.NoError(t, err)

		match := regexp.MustCompile(`MASTER_SECRET="([^"]+)"`).FindStringSubmatch(out.String())
		require.Len(t, match, 2)
		assert.Len(t, match[1], GeneratedMasterSecretLength)
		assert.NotContains(t, out.String(), "KMS_KEY_URI")
	})

	t.Run("kms", func(t *testing.T) {
		encrypter := &mockEncrypter{}
		encrypter.On("Encrypt", ctx, keyURI, mock.MatchedBy(func(p []byte) bool {
			return len(p) == GeneratedMasterSecretLength
		})).Return([]byte("wrapped-secret"), nil).Once()

		var out bytes.Buffer
		err := RunCreateMasterSecret(ctx, encrypter, logger, &out, keyURI)
		require.NoError(t, err)

		output := out.String()
		assert.Contains(t, output, `KMS_KEY_URI="`+keyURI+`"`)
		assert.Contains(t, output, `MASTER_SECRET="`+base64.StdEncoding.EncodeToString([]byte("wrapped-secret"))+`"`)
		assert.Equal(t, 1, strings.Count(output, "MASTER_SECRET="))
		encrypter.AssertExpectations(t)
	})

	t.Run("kms-error", func(t *testing.T) {
		encrypter := &mockEncrypter{}
		encrypter.On("Encrypt", ctx, keyURI, mock.Anything).Return(nil, errors.New("permission denied")).Once()

		var out bytes.Buffer
		err := RunCreateMasterSecret(ctx, encrypter, logger, &out, keyURI)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encrypt master secret with KMS")
		assert.Empty(t, out.String())
		encrypter.AssertExpectations(t)
	})
}
