package auth

import "errors"

var (
	// ErrNoCode is returned when Authenticate runs before an authorization code was set.
	ErrNoCode = errors.New("auth: no authorization code set")

	// ErrCodeUsed is returned when Authenticate runs a second time in the same attempt.
	ErrCodeUsed = errors.New("auth: authorization code already used")

	// ErrEmptyProfile is returned when the forum answers with a member profile
	// that has no id.
	ErrEmptyProfile = errors.New("auth: empty member profile")

	// ErrInvalidConfig is returned when the settings snapshot cannot build an
	// exchange client. It is joined with the ipb configuration error.
	ErrInvalidConfig = errors.New("auth: invalid provider configuration")

	// ErrUnlinkUnsupported is returned by Unlink when no Unlinker was configured.
	ErrUnlinkUnsupported = errors.New("auth: unlink not configured")
)
