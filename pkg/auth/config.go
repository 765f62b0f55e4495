package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrymomot/forumauth/pkg/identity"
	"github.com/dmitrymomot/forumauth/pkg/ipb"
	"github.com/dmitrymomot/forumauth/pkg/settings"
)

// Config is a snapshot of the provider settings for one attempt.
type Config struct {
	ClientID        string
	ClientSecret    string
	BaseURL         string
	APIKey          string
	RedirectURL     string
	Scopes          []string
	EmailDomains    []string
	AccountCreation bool
}

// LoadConfig reads the provider settings. Missing options are left empty;
// they are reported when the exchange client is built.
func LoadConfig(ctx context.Context, r settings.Reader) (Config, error) {
	values, err := r.All(ctx)
	if err != nil {
		return Config{}, fmt.Errorf("auth: load settings: %w", err)
	}

	return Config{
		ClientID:        values[settings.KeyClientID],
		ClientSecret:    values[settings.KeyClientSecret],
		BaseURL:         values[settings.KeyBaseURL],
		APIKey:          values[settings.KeyAPIKey],
		Scopes:          strings.Fields(values[settings.KeyScopes]),
		EmailDomains:    identity.ParseDomains(values[settings.KeyEmailDomains]),
		AccountCreation: strings.TrimSpace(values[settings.KeyAccountCreation]) == "1",
	}, nil
}

// Client returns the exchange client configuration.
func (c Config) Client() ipb.Config {
	return ipb.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		BaseURL:      c.BaseURL,
		APIKey:       c.APIKey,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
	}
}

// Policy returns the account creation policy.
func (c Config) Policy() identity.Policy {
	return identity.Policy{
		AccountCreation: c.AccountCreation,
		EmailDomains:    c.EmailDomains,
	}
}
