package identity

import "errors"

var (
	// ErrCreationDenied is returned by account resolvers when a member has no
	// linked local account and the policy does not allow creating one.
	ErrCreationDenied = errors.New("identity: account creation not permitted")

	// ErrEmptyProfile is returned by Map when the profile is nil or carries no id.
	ErrEmptyProfile = errors.New("identity: empty profile")

	// ErrGroupRegistration is returned when an external group cannot be registered.
	ErrGroupRegistration = errors.New("identity: group registration failed")
)
