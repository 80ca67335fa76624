package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeviceType is a coarse device class derived from the user agent.
type DeviceType string

const (
	DeviceComputer DeviceType = "computer"
	DeviceMobile   DeviceType = "mobile"
	DeviceTablet   DeviceType = "tablet"
	DeviceTV       DeviceType = "tv"
)

// DeviceSession is one authenticated device for an account. At most one row
// exists per (user_id, device_fingerprint); re-admitting the same device
// refreshes last_activity instead of creating a second row.
type DeviceSession struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	DeviceFingerprint string     `json:"device_fingerprint" db:"device_fingerprint"`
	DeviceName        string     `json:"device_name" db:"device_name"`
	DeviceType        DeviceType `json:"device_type" db:"device_type"`
	LastActivity      time.Time  `json:"last_activity" db:"last_activity"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}
