package models

import (
	"time"
)

// Account is a persistent identity in the account directory.
type Account struct {
	ID          string  `gorm:"primaryKey"`
	Username    string  `gorm:"uniqueIndex;not null"`
	DisplayName string
	Metadata    JSONMap `gorm:"type:text"`

	DeviceCredentials []DeviceCredential `gorm:"foreignKey:AccountID"`
	CustomCredential  *CustomCredential  `gorm:"foreignKey:AccountID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeviceCredential binds a device-side secret to an account. An account may
// hold several, a credential belongs to at most one account.
type DeviceCredential struct {
	Credential string `gorm:"primaryKey"`
	AccountID  string `gorm:"not null;index"`
	CreatedAt  time.Time
}

// CustomCredential is the provider-derived secondary login of an account.
// Each account holds at most one.
type CustomCredential struct {
	Credential string `gorm:"primaryKey"`
	AccountID  string `gorm:"not null;uniqueIndex"`
	CreatedAt  time.Time
}

// DeviceIDs returns the device credentials bound to the account.
func (a *Account) DeviceIDs() []string {
	ids := make([]string, 0, len(a.DeviceCredentials))
	for _, d := range a.DeviceCredentials {
		ids = append(ids, d.Credential)
	}
	return ids
}

// CustomID returns the custom credential, or "" when none is linked.
func (a *Account) CustomID() string {
	if a.CustomCredential == nil {
		return ""
	}
	return a.CustomCredential.Credential
}
