package ipb

import (
	"net/url"
	"strings"
)

const (
	authorizePath   = "oauth/authorize/"
	tokenPath       = "oauth/token/"
	currentUserPath = "api/core/me"
	membersPath     = "api/core/members/"
)

// Config holds the OAuth client registration and REST credentials for one community.
type Config struct {
	ClientID     string
	ClientSecret string

	// BaseURL is the community root including the trailing slash,
	// e.g. "https://forum.example/".
	BaseURL string

	// APIKey is the REST API key used for the member lookup.
	APIKey string

	// RedirectURL is the registered callback URL. Optional when the forum
	// has exactly one redirect URI registered for the client.
	RedirectURL string

	Scopes []string
}

// Validate reports the first missing or malformed field.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		return ErrInvalidBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// AuthorizeURL returns the authorization endpoint.
func (c Config) AuthorizeURL() string {
	return c.BaseURL + authorizePath
}

// TokenURL returns the token endpoint.
func (c Config) TokenURL() string {
	return c.BaseURL + tokenPath
}

// CurrentUserURL returns the endpoint describing the token owner.
func (c Config) CurrentUserURL() string {
	return c.BaseURL + currentUserPath
}

// MemberURL returns the member profile endpoint for the given id, without the API key.
func (c Config) MemberURL(id string) string {
	return c.BaseURL + membersPath + url.PathEscape(id)
}
