package keyring

import (
	"errors"
	"fmt"
	"os"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/jonandersen/etrade/pkg/etrade"
)

const (
	// ServiceName is the keyring service name for storing secrets.
	// Uses reverse domain notation for proper namespacing.
	ServiceName = "com.etrade.cli"

	// Keyring keys for the four OAuth credential parts.
	KeyConsumerKey    = "consumer_key"
	KeyConsumerSecret = "consumer_secret"
	KeyAccessToken    = "access_token"
	KeyAccessSecret   = "access_secret"
)

// Environment variable overrides for CI/headless environments. When
// set, they take precedence over keyring lookups.
var envOverrides = map[string]string{
	KeyConsumerKey:    "ETRADE_CONSUMER_KEY",
	KeyConsumerSecret: "ETRADE_CONSUMER_SECRET",
	KeyAccessToken:    "ETRADE_ACCESS_TOKEN",
	KeyAccessSecret:   "ETRADE_ACCESS_SECRET",
}

// ErrNotFound is returned when a secret is not found in the keyring.
var ErrNotFound = errors.New("secret not found")

// Store provides an interface for secure secret storage.
type Store interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SystemStore implements Store using the system keyring.
type SystemStore struct{}

// NewSystemStore creates a new system keyring store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// Get retrieves a secret from the system keyring.
func (s *SystemStore) Get(service, key string) (string, error) {
	secret, err := gokeyring.Get(service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return secret, nil
}

// Set stores a secret in the system keyring.
func (s *SystemStore) Set(service, key, value string) error {
	return gokeyring.Set(service, key, value)
}

// Delete removes a secret from the system keyring.
func (s *SystemStore) Delete(service, key string) error {
	err := gokeyring.Delete(service, key)
	if err != nil && errors.Is(err, gokeyring.ErrNotFound) {
		return nil // Deleting non-existent key is not an error
	}
	return err
}

// EnvStore wraps another Store and checks environment variables first.
// This enables CI/headless environments to provide credentials via env vars.
type EnvStore struct {
	underlying Store
}

// NewEnvStore creates a new EnvStore wrapping the given store.
func NewEnvStore(underlying Store) *EnvStore {
	return &EnvStore{underlying: underlying}
}

// Get retrieves a secret, checking the matching env var first.
func (e *EnvStore) Get(service, key string) (string, error) {
	if envName, ok := envOverrides[key]; ok {
		if envVal := os.Getenv(envName); envVal != "" {
			return envVal, nil
		}
	}
	return e.underlying.Get(service, key)
}

// Set stores a secret in the underlying store.
func (e *EnvStore) Set(service, key, value string) error {
	return e.underlying.Set(service, key, value)
}

// Delete removes a secret from the underlying store.
func (e *EnvStore) Delete(service, key string) error {
	return e.underlying.Delete(service, key)
}

// LoadCredentials reads all four OAuth credential parts from the store.
func LoadCredentials(store Store) (etrade.Credentials, error) {
	var creds etrade.Credentials
	for key, dst := range map[string]*string{
		KeyConsumerKey:    &creds.ConsumerKey,
		KeyConsumerSecret: &creds.ConsumerSecret,
		KeyAccessToken:    &creds.AccessToken,
		KeyAccessSecret:   &creds.AccessSecret,
	} {
		val, err := store.Get(ServiceName, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return etrade.Credentials{}, fmt.Errorf("%s not found, run 'etrade configure' and 'etrade login' first", key)
			}
			return etrade.Credentials{}, fmt.Errorf("failed to read %s: %w", key, err)
		}
		*dst = val
	}
	return creds, nil
}

// SaveConsumerCredentials stores the consumer key pair obtained from
// the E*TRADE developer portal.
func SaveConsumerCredentials(store Store, consumerKey, consumerSecret string) error {
	if err := store.Set(ServiceName, KeyConsumerKey, consumerKey); err != nil {
		return fmt.Errorf("failed to store consumer key: %w", err)
	}
	if err := store.Set(ServiceName, KeyConsumerSecret, consumerSecret); err != nil {
		return fmt.Errorf("failed to store consumer secret: %w", err)
	}
	return nil
}

// SaveAccessCredentials stores the access token pair obtained from the
// OAuth authorization flow.
func SaveAccessCredentials(store Store, accessToken, accessSecret string) error {
	if err := store.Set(ServiceName, KeyAccessToken, accessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := store.Set(ServiceName, KeyAccessSecret, accessSecret); err != nil {
		return fmt.Errorf("failed to store access secret: %w", err)
	}
	return nil
}

// DeleteAccessCredentials removes the access token pair, e.g. after a
// revoke. The consumer key pair is left in place.
func DeleteAccessCredentials(store Store) error {
	if err := store.Delete(ServiceName, KeyAccessToken); err != nil {
		return err
	}
	return store.Delete(ServiceName, KeyAccessSecret)
}
