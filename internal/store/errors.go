package store

import "errors"

var (
	// ErrVersionConflict is returned when a conditional write finds the object
	// present (create-if-absent) or at a different version (compare-and-swap).
	ErrVersionConflict = errors.New("storage version conflict")

	// ErrInvalidObject is returned when a write is missing its collection or key
	ErrInvalidObject = errors.New("storage object requires collection and key")

	// ErrAccountNotFound is returned when no account matches the lookup
	ErrAccountNotFound = errors.New("account not found")

	// ErrUsernameConflict is returned when a username already exists
	ErrUsernameConflict = errors.New("username already exists")

	// ErrCredentialNotLinked is returned by UnlinkCustom when the account has
	// no custom credential.
	ErrCredentialNotLinked = errors.New("credential not linked")

	// ErrInvalidCredential is returned for an empty credential
	ErrInvalidCredential = errors.New("credential must not be empty")
)
