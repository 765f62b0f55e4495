package ipb

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("ipb: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("ipb: missing client secret")

	// ErrMissingBaseURL is returned when the community base URL is not provided.
	ErrMissingBaseURL = errors.New("ipb: missing base URL")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http(s) URL ending with a slash.
	ErrInvalidBaseURL = errors.New("ipb: base URL must be an absolute http(s) URL ending with /")

	// ErrMissingAPIKey is returned when the REST API key is not provided.
	ErrMissingAPIKey = errors.New("ipb: missing API key")

	// ErrTokenExchange is returned when the authorization code cannot be
	// exchanged for an access token.
	ErrTokenExchange = errors.New("ipb: token exchange failed")

	// ErrProfileFetch is returned when the current member id or the member
	// profile cannot be retrieved.
	ErrProfileFetch = errors.New("ipb: profile fetch failed")

	// ErrMissingUserID is returned, joined with ErrProfileFetch, when the
	// current user response carries no id.
	ErrMissingUserID = errors.New("ipb: missing member id")
)
