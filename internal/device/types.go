package device

import "time"

// Device represents one physical edge reporter unit.
//
// MACAddress is the globally unique hardware identifier; at most one
// record exists per address. UserID references the owning account and
// may be empty for unclaimed or legacy records.
type Device struct {
	// MACAddress is the unique hardware identifier (primary key).
	MACAddress string `json:"mac_address"`

	// FWVersion is the firmware version reported by the device.
	FWVersion string `json:"fw_version"`

	// FSVersion is the filesystem/software image version.
	FSVersion string `json:"fs_version"`

	// Uptime is the device uptime counter in seconds, monotonic per boot.
	Uptime int64 `json:"uptime"`

	// UpdatedAt is the timestamp of the last heartbeat (UTC).
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owning user's ID; empty if unclaimed.
	UserID string `json:"user_id,omitempty"`

	// OwnerUsername is populated only when the store is asked to
	// resolve owners (ListAll with resolveOwners). Not persisted on
	// the device row itself.
	OwnerUsername string `json:"owner_username,omitempty"`
}

// HasOwner reports whether the device record references an owning user.
func (d *Device) HasOwner() bool {
	return d.UserID != ""
}
