package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/reto21d/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Keyring stores secrets for one service under named users
type Keyring struct {
	Service string
}

// Default returns the keyring entry set of the application
func Default() *Keyring {
	return &Keyring{Service: constants.AppName}
}

// Get retrieves a secret. Returns ErrNotFound if nothing is stored.
func (k *Keyring) Get(user string) (string, error) {
	secret, err := keyring.Get(k.Service, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores a secret
func (k *Keyring) Set(user, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", user)
	}
	if err := keyring.Set(k.Service, user, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes a secret
func (k *Keyring) Delete(user string) error {
	if err := keyring.Delete(k.Service, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable is a best-effort probe of the OS keyring
func (k *Keyring) IsAvailable() bool {
	_, err := keyring.Get(k.Service, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// GetConnectionString retrieves the database connection string
func GetConnectionString() (string, error) {
	return Default().Get(constants.DefaultKeyringUser)
}

// SetConnectionString stores the database connection string
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return Default().Set(constants.DefaultKeyringUser, connStr)
}

// DeleteConnectionString removes the database connection string
func DeleteConnectionString() error {
	return Default().Delete(constants.DefaultKeyringUser)
}
