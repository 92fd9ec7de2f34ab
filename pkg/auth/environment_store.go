package auth

import (
	"os"
	"time"
)

const (
	envAPIKey    = "TWTIMG_API_KEY"
	envAPISecret = "TWTIMG_API_SECRET"
	envAccount   = "env"
)

// EnvironmentStore exposes TWTIMG_API_KEY and TWTIMG_API_SECRET as a read-only account
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables. An empty name
// matches, otherwise only "env" does.
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	if name != "" && name != envAccount {
		return nil, ErrCredentialsNotFound
	}

	key := os.Getenv(envAPIKey)
	secret := os.Getenv(envAPISecret)
	if key == "" || secret == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Name:         envAccount,
		APIKey:       key,
		APISecret:    secret,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
