package settings

import (
	"context"
	"errors"
	"slices"
)

// Option keys. Their names are part of the stored data and must not change.
const (
	KeyClientID        = "oauth2_client_id"
	KeyClientSecret    = "oauth2_client_secret"
	KeyScopes          = "oauth2_scopes"
	KeyBaseURL         = "oauth2_ipb_base_url"
	KeyAPIKey          = "oauth2_ipb_api_key"
	KeyAccountCreation = "oauth2_account_creation"
	KeyEmailDomains    = "oauth2_email_domains"
)

var knownKeys = []string{
	KeyClientID,
	KeyClientSecret,
	KeyScopes,
	KeyBaseURL,
	KeyAPIKey,
	KeyAccountCreation,
	KeyEmailDomains,
}

// secretKeys hold credentials that must not leave the process in a shared cache.
var secretKeys = []string{KeyClientSecret, KeyAPIKey}

var (
	// ErrNotFound is returned by Get when the option has never been set.
	ErrNotFound = errors.New("settings: option not found")

	// ErrUnknownKey is returned when seeding an option this service does not read.
	ErrUnknownKey = errors.New("settings: unknown option")

	// ErrInvalidValue is returned when a seed value is not a scalar.
	ErrInvalidValue = errors.New("settings: invalid option value")
)

// Reader reads options.
type Reader interface {
	// Get returns the value of key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// All returns every stored option.
	All(ctx context.Context) (map[string]string, error)
}

// Store reads and writes options.
type Store interface {
	Reader
	Set(ctx context.Context, key, value string) error
}

// Keys returns the option keys this service reads.
func Keys() []string {
	return slices.Clone(knownKeys)
}

// IsKnown reports whether key is one of Keys.
func IsKnown(key string) bool {
	return slices.Contains(knownKeys, key)
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return slices.Contains(secretKeys, key)
}
