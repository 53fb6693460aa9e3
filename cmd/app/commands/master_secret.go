package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// GeneratedMasterSecretLength is the length of secrets produced by create-master-secret.
const GeneratedMasterSecretLength = 48

const masterSecretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.~"

// MasterSecretEncrypter wraps a master secret with a KMS key.
type MasterSecretEncrypter interface {
	Encrypt(ctx context.Context, keyURI string, plaintext []byte) ([]byte, error)
}

// GenerateMasterSecret returns a random secret of length characters drawn from
// an alphabet that needs no quoting in .env files.
func GenerateMasterSecret(length int) (string, error) {
	if length < cryptoDomain.MinMasterSecretLength {
		return "", fmt.Errorf("master secret length must be at least %d", cryptoDomain.MinMasterSecretLength)
	}

	maxIndex := big.NewInt(int64(len(masterSecretAlphabet)))
	secret := make([]byte, length)
	for i := range secret {
		n, err := rand.Int(rand.Reader, maxIndex)
		if err != nil {
			return "", fmt.Errorf("failed to generate master secret: %w", err)
		}
		secret[i] = masterSecretAlphabet[n.Int64()]
	}
	return string(secret), nil
}

// RunCreateMasterSecret prints a new MASTER_SECRET line. When kmsKeyURI is set
// the secret is encrypted with that key and printed base64 encoded together
// with KMS_KEY_URI, so the plaintext never leaves the process.
func RunCreateMasterSecret(
	ctx context.Context,
	encrypter MasterSecretEncrypter,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	secret, err := GenerateMasterSecret(GeneratedMasterSecretLength)
	if err != nil {
		return err
	}
	plaintext := []byte(secret)
	defer cryptoDomain.Zero(plaintext)

	if kmsKeyURI == "" {
		_, _ = fmt.Fprintln(writer, "# Master secret (plain). Store it in your secrets manager.")
		_, _ = fmt.Fprintf(writer, "MASTER_SECRET=\"%s\"\n", plaintext)
		return nil
	}

	ciphertext, err := encrypter.Encrypt(ctx, kmsKeyURI, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt master secret with KMS: %w", err)
	}
	logger.Info("master secret encrypted with kms")

	_, _ = fmt.Fprintln(writer, "# Master secret (KMS encrypted)")
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "MASTER_SECRET=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))
	return nil
}
