package models

import (
	"math"
	"time"
)

// OAuthToken is the provider token pair as returned by the token endpoint,
// plus the times recorded when it was obtained.
type OAuthToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	Scope        string    `json:"scope"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	ObtainedAt   time.Time `json:"obtained_at,omitzero"`
}

// IssuedAt returns when the token was obtained. Tokens stored without an
// obtained time fall back to ExpiresAt minus ExpiresIn.
func (t *OAuthToken) IssuedAt() time.Time {
	if !t.ObtainedAt.IsZero() {
		return t.ObtainedAt
	}
	if !t.ExpiresAt.IsZero() {
		return t.ExpiresAt.Add(-time.Duration(t.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// Age returns how long ago the token was obtained. An unknown issue time is
// reported as the maximum duration so the token is treated as stale.
func (t *OAuthToken) Age(now time.Time) time.Duration {
	issued := t.IssuedAt()
	if issued.IsZero() {
		return time.Duration(math.MaxInt64)
	}
	return now.Sub(issued)
}

// CustomCredential is the account credential derived from this token.
func (t *OAuthToken) CustomCredential() string {
	return t.AccessToken
}
