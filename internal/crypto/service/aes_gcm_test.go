package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

func newTestAESGCM(t *testing.T) *AESGCMCipher {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	c, err := NewAESGCM(key)
	require.NoError(t, err)
	return c
}

func TestNewAESGCM(t *testing.T) {
	t.Run("Success_32ByteKey", func(t *testing.T) {
		c, err := NewAESGCM(make([]byte, 32))
		assert.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("Error_ShortKey", func(t *testing.T) {
		c, err := NewAESGCM(make([]byte, 16))
		assert.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("Error_LongKey", func(t *testing.T) {
		_, err := NewAESGCM(make([]byte, 64))
		assert.Error(t, err)
	})
}

func TestAESGCMCipher_EncryptDecrypt(t *testing.T) {
	c := newTestAESGCM(t)

	t.Run("Success_RoundTrip", func(t *testing.T) {
		plaintext := []byte("AIzaSy-example-key")

		ciphertext, nonce, err := c.Encrypt(plaintext, nil)
		require.NoError(t, err)
		assert.Len(t, nonce, cryptoDomain.NonceSize)
		assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

		decrypted, err := c.Decrypt(ciphertext, nonce, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("Success_FreshNonceEachCall", func(t *testing.T) {
		_, nonce1, err := c.Encrypt([]byte("same"), nil)
		require.NoError(t, err)
		_, nonce2, err := c.Encrypt([]byte("same"), nil)
		require.NoError(t, err)
		assert.NotEqual(t, nonce1, nonce2)
	})

	t.Run("Error_AADMismatch", func(t *testing.T) {
		ciphertext, nonce, err := c.Encrypt([]byte("data"), []byte("user-1"))
		require.NoError(t, err)

		_, err = c.Decrypt(ciphertext, nonce, []byte("user-2"))
		assert.Error(t, err)
	})

	t.Run("Error_TamperedTag", func(t *testing.T) {
		ciphertext, nonce, err := c.Encrypt([]byte("data"), nil)
		require.NoError(t, err)
		ciphertext[len(ciphertext)-1] ^= 0xFF

		decrypted, err := c.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
		assert.Nil(t, decrypted)
	})

	t.Run("Error_InvalidNonceSize", func(t *testing.T) {
		ciphertext, _, err := c.Encrypt([]byte("data"), nil)
		require.NoError(t, err)

		_, err = c.Decrypt(ciphertext, []byte("short"), nil)
		assert.Error(t, err)
	})
}
