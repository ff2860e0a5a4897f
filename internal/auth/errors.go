package auth

import "errors"

var (
	// ErrInvalidGrant is returned when the provider rejects an authorization
	// code or refresh token as invalid or expired.
	ErrInvalidGrant = errors.New("provider rejected the grant")

	// ErrDecodeResponse is returned when a provider response does not match
	// the expected schema.
	ErrDecodeResponse = errors.New("could not decode provider response")

	// ErrProviderStatus is returned for an unexpected HTTP status.
	ErrProviderStatus = errors.New("unexpected provider response status")

	// ErrProviderUnavailable is returned when the provider cannot be reached
	// or does not answer in time.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMissingRefreshToken is returned when a stored token has no refresh token.
	ErrMissingRefreshToken = errors.New("token has no refresh token")
)
