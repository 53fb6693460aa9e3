package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
)

// KMSService returns the KMS service used to unwrap a KMS-encrypted master secret.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// MasterSecret returns the master secret loaded from configuration.
func (c *Container) MasterSecret() (*cryptoDomain.MasterSecret, error) {
	var err error
	c.masterSecretInit.Do(func() {
		c.masterSecret, err = c.initMasterSecret()
		if err != nil {
			c.initErrors["masterSecret"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterSecret"]; exists {
		return nil, storedErr
	}
	return c.masterSecret, nil
}

// Vault returns the credential vault bound to the configured master secret.
func (c *Container) Vault() (*cryptoService.Vault, error) {
	var err error
	c.vaultInit.Do(func() {
		c.vault, err = c.initVault()
		if err != nil {
			c.initErrors["vault"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vault"]; exists {
		return nil, storedErr
	}
	return c.vault, nil
}

// NewVault builds a vault for another raw master secret, decrypting it with the
// configured KMS key when one is set. It is used to rotate to a new secret.
// The returned secret must be closed by the caller.
func (c *Container) NewVault(
	ctx context.Context,
	rawMasterSecret string,
) (*cryptoService.Vault, *cryptoDomain.MasterSecret, error) {
	masterSecret, err := cryptoDomain.LoadMasterSecret(
		ctx,
		rawMasterSecret,
		c.config.KMSKeyURI,
		c.KMSService(),
		c.Logger(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load master secret: %w", err)
	}

	vault, err := cryptoService.NewVault(masterSecret, cryptoService.WithIterations(c.config.KDFIterations))
	if err != nil {
		masterSecret.Close()
		return nil, nil, fmt.Errorf("failed to create vault: %w", err)
	}
	return vault, masterSecret, nil
}

func (c *Container) initMasterSecret() (*cryptoDomain.MasterSecret, error) {
	masterSecret, err := cryptoDomain.LoadMasterSecret(
		context.Background(),
		c.config.MasterSecret,
		c.config.KMSKeyURI,
		c.KMSService(),
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load master secret: %w", err)
	}
	return masterSecret, nil
}

func (c *Container) initVault() (*cryptoService.Vault, error) {
	masterSecret, err := c.MasterSecret()
	if err != nil {
		return nil, err
	}

	vault, err := cryptoService.NewVault(masterSecret, cryptoService.WithIterations(c.config.KDFIterations))
	if err != nil {
		return nil, fmt.Errorf("failed to create vault: %w", err)
	}
	return vault, nil
}
