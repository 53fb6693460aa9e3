package app

import (
	"fmt"

	credentialsHTTP "github.com/allisson/keyvault/internal/credentials/http"
	credentialsRepository "github.com/allisson/keyvault/internal/credentials/repository"
	credentialsUseCase "github.com/allisson/keyvault/internal/credentials/usecase"
	"github.com/allisson/keyvault/internal/keycheck"
)

const keyCheckMaxRetries = 2

// CredentialStore returns the SQL credential repository for the configured driver.
// It is used directly by rotation, which must never reach the fallback tier.
func (c *Container) CredentialStore() (credentialsRepository.Store, error) {
	var err error
	c.credentialStoreInit.Do(func() {
		c.credentialStore, err = c.initCredentialStore()
		if err != nil {
			c.initErrors["credentialStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialStore"]; exists {
		return nil, storedErr
	}
	return c.credentialStore, nil
}

// PrimaryStore returns the SQL credential repository wrapped with retries.
func (c *Container) PrimaryStore() (credentialsRepository.Store, error) {
	var err error
	c.primaryStoreInit.Do(func() {
		c.primaryStore, err = c.initPrimaryStore()
		if err != nil {
			c.initErrors["primaryStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["primaryStore"]; exists {
		return nil, storedErr
	}
	return c.primaryStore, nil
}

// FallbackStore returns the in-memory tier, or nil when the fallback is disabled.
func (c *Container) FallbackStore() credentialsRepository.Store {
	c.fallbackStoreInit.Do(func() {
		if c.config.CredentialStoreFallback {
			c.fallbackStore = credentialsRepository.NewMemoryCredentialRepository()
		}
	})
	return c.fallbackStore
}

// StoreSelector returns the per-request store tier selector.
func (c *Container) StoreSelector() (*credentialsRepository.StoreSelector, error) {
	var err error
	c.storeSelectorInit.Do(func() {
		c.storeSelector, err = c.initStoreSelector()
		if err != nil {
			c.initErrors["storeSelector"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storeSelector"]; exists {
		return nil, storedErr
	}
	return c.storeSelector, nil
}

// CredentialRepository returns the repository that follows the tier chosen for each request.
func (c *Container) CredentialRepository() (*credentialsRepository.RoutedRepository, error) {
	var err error
	c.credentialRepositoryInit.Do(func() {
		var primary credentialsRepository.Store
		primary, err = c.PrimaryStore()
		if err != nil {
			c.initErrors["credentialRepository"] = err
			return
		}
		c.credentialRepository = credentialsRepository.NewRoutedRepository(primary)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// KeyChecker returns the provider key checker.
func (c *Container) KeyChecker() (keycheck.Checker, error) {
	var err error
	c.keyCheckerInit.Do(func() {
		c.keyChecker, err = c.initKeyChecker()
		if err != nil {
			c.initErrors["keyChecker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyChecker"]; exists {
		return nil, storedErr
	}
	return c.keyChecker, nil
}

// CredentialUseCase returns the credential use case.
func (c *Container) CredentialUseCase() (credentialsUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// RotationUseCase returns the master secret rotation use case.
func (c *Container) RotationUseCase() (credentialsUseCase.RotationUseCase, error) {
	var err error
	c.rotationUseCaseInit.Do(func() {
		c.rotationUseCase, err = c.initRotationUseCase()
		if err != nil {
			c.initErrors["rotationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationUseCase"]; exists {
		return nil, storedErr
	}
	return c.rotationUseCase, nil
}

// CredentialHandler returns the credential HTTP handler.
func (c *Container) CredentialHandler() (*credentialsHTTP.CredentialHandler, error) {
	var err error
	c.credentialHandlerInit.Do(func() {
		var useCase credentialsUseCase.CredentialUseCase
		useCase, err = c.CredentialUseCase()
		if err != nil {
			c.initErrors["credentialHandler"] = err
			return
		}
		c.credentialHandler = credentialsHTTP.NewCredentialHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialHandler"]; exists {
		return nil, storedErr
	}
	return c.credentialHandler, nil
}

func (c *Container) initCredentialStore() (credentialsRepository.Store, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential store: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return credentialsRepository.NewPostgreSQLCredentialRepository(db), nil
	case "mysql":
		return credentialsRepository.NewMySQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initPrimaryStore() (credentialsRepository.Store, error) {
	store, err := c.CredentialStore()
	if err != nil {
		return nil, err
	}
	return credentialsRepository.NewRetryRepository(store, c.config.StoreRetryMaxElapsed, c.Logger()), nil
}

func (c *Container) initStoreSelector() (*credentialsRepository.StoreSelector, error) {
	primary, err := c.PrimaryStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get primary store for store selector: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for store selector: %w", err)
	}

	return credentialsRepository.NewStoreSelector(
		primary,
		c.FallbackStore(),
		0,
		businessMetrics,
		c.Logger(),
	), nil
}

func (c *Container) initKeyChecker() (keycheck.Checker, error) {
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key checker: %w", err)
	}

	return keycheck.NewHTTPChecker(nil, keycheck.Config{
		VideoBaseURL:     c.config.KeyCheckVideoBaseURL,
		AssistantBaseURL: c.config.KeyCheckAssistantBaseURL,
		VideoProbeID:     c.config.KeyCheckVideoProbeID,
		Timeout:          c.config.KeyCheckTimeout,
		MaxRetries:       keyCheckMaxRetries,
	}, businessMetrics, c.Logger()), nil
}

func (c *Container) initCredentialUseCase() (credentialsUseCase.CredentialUseCase, error) {
	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}

	vault, err := c.Vault()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault for credential use case: %w", err)
	}

	checker, err := c.KeyChecker()
	if err != nil {
		return nil, fmt.Errorf("failed to get key checker for credential use case: %w", err)
	}

	baseUseCase := credentialsUseCase.NewCredentialUseCase(
		repo,
		vault,
		checker,
		c.config.DefaultAssistantModel,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		return credentialsUseCase.NewCredentialUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initRotationUseCase() (credentialsUseCase.RotationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for rotation use case: %w", err)
	}

	store, err := c.CredentialStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential store for rotation use case: %w", err)
	}

	return credentialsUseCase.NewRotationUseCase(txManager, store, 0, c.Logger()), nil
}
