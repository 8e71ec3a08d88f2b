package models

import "time"

// StorageType identifies a physical storage tier.
type StorageType string

const (
	StorageTypeCache StorageType = "CACHE"
	StorageTypeNAS   StorageType = "NAS"
)

// Valid reports whether t is a known storage tier.
func (t StorageType) Valid() bool {
	return t == StorageTypeCache || t == StorageTypeNAS
}

// Availability states for a storage object.
const (
	AvailabilityAvailable = "available"
	AvailabilityPending   = "pending"
	AvailabilityLost      = "lost"
)

// StorageObject is one physical copy of a file in a storage tier.
type StorageObject struct {
	ID                 int         `json:"id"`
	FileID             string      `json:"file_id"`
	ObjectKey          string      `json:"object_key"`
	StorageType        StorageType `json:"storage_type"`
	AvailabilityStatus string      `json:"availability_status"`
	CreatedAt          time.Time   `json:"created_at"`
}
