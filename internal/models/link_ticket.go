package models

import (
	"time"
)

// LinkTicket is a pending request to bind a device credential to a provider
// account. It is stored under CollectionLinkTicket keyed by Code.
type LinkTicket struct {
	Code             string    `json:"code"`
	DeviceCredential string    `json:"device_credential"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

func (t *LinkTicket) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the ticket is past its expiry at now.
// A zero ExpiresAt never expires.
func (t *LinkTicket) IsExpiredAt(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
