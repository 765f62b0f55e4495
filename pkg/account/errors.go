package account

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("account: user not found")

	// ErrMissingExternalID is returned when an identity carries no external id.
	ErrMissingExternalID = errors.New("account: missing external id")

	// ErrAlreadyLinked is returned by Create when another user already holds
	// the external id.
	ErrAlreadyLinked = errors.New("account: external id already linked")

	// ErrEmptyGroupID is returned when an external group id is empty.
	ErrEmptyGroupID = errors.New("account: empty external group id")
)
