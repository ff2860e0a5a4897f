package models

import (
	"time"
)

// SystemUserID owns objects that belong to the service rather than a player.
const SystemUserID = "00000000-0000-0000-0000-000000000000"

// Storage collections and keys.
const (
	CollectionLinkTicket = "Login:linkTicket"
	CollectionProvider   = "Discord"
	KeyAccessToken       = "accesstoken"
)

// Object permissions. Read 2 makes an object visible to every user; write
// has no public level.
const (
	ReadNoAccess  = 0
	ReadOwner     = 1
	ReadPublic    = 2
	WriteNoAccess = 0
	WriteOwner    = 1
)

// VersionIfAbsent makes a write succeed only when no live object exists.
const VersionIfAbsent = "*"

// StorageObject is a single stored value. Collection, Key and UserID form the
// identity of the object.
type StorageObject struct {
	Collection      string     `gorm:"primaryKey;size:128"`
	Key             string     `gorm:"primaryKey;size:128;column:object_key"`
	UserID          string     `gorm:"primaryKey;size:36"`
	Value           string     `gorm:"type:text;not null"`
	Version         string     `gorm:"size:36;not null"`
	PermissionRead  int        `gorm:"not null;default:0"`
	PermissionWrite int        `gorm:"not null;default:0"`
	ExpiresAt       *time.Time `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the table name used by StorageObject to `storage_objects`
func (StorageObject) TableName() string {
	return "storage_objects"
}

// IsExpiredAt reports whether the object carries an expiry that has passed.
func (o *StorageObject) IsExpiredAt(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}

// StorageWrite describes a conditional write.
//
// Version selects the condition: VersionIfAbsent only creates, "" writes
// unconditionally, and any other value must match the stored version.
type StorageWrite struct {
	Collection      string
	Key             string
	UserID          string
	Value           string
	Version         string
	PermissionRead  int
	PermissionWrite int
	ExpiresAt       time.Time
}

// StorageAck identifies the version produced by a successful write.
type StorageAck struct {
	Collection string
	Key        string
	UserID     string
	Version    string
}
