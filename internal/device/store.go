package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Store defines persistence operations for edge reporter devices.
type Store interface {
	// GetByMAC returns the device with the given hardware address, or
	// ErrDeviceNotFound if no such record exists.
	GetByMAC(ctx context.Context, mac string) (*Device, error)

	// Upsert creates the device record if the address is unseen,
	// otherwise replaces its mutable fields. An empty UserID on update
	// preserves the existing owner.
	Upsert(ctx context.Context, d *Device) error

	// ListAll returns every device record. When resolveOwners is true
	// the owning username is joined onto each device.
	ListAll(ctx context.Context, resolveOwners bool) ([]Device, error)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite device store.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteStore: Store instance ready for use
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByMAC retrieves a single device by its hardware address.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - mac: Hardware address of the device
//
// Returns:
//   - *Device: The device record, timestamps in UTC
//   - error: ErrDeviceNotFound if the address is unseen, otherwise the
//     underlying database error
func (s *SQLiteStore) GetByMAC(ctx context.Context, mac string) (*Device, error) {
	if mac == "" {
		return nil, fmt.Errorf("mac address is required")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT mac_address, fw_version, fs_version, uptime, updated_at, user_id
		 FROM ext_devices
		 WHERE mac_address = ?`,
		mac,
	)

	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}

	return d, nil
}

// Upsert inserts or updates a device record keyed by hardware address.
//
// On conflict the heartbeat fields (fw_version, fs_version, uptime,
// updated_at) are replaced. The owner is only written when the incoming
// record carries a UserID, so a later heartbeat cannot orphan a claimed
// device.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - d: Device record to persist; UpdatedAt must be set
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (s *SQLiteStore) Upsert(ctx context.Context, d *Device) error {
	if d == nil {
		return fmt.Errorf("device is required")
	}
	if d.MACAddress == "" {
		return fmt.Errorf("mac address is required")
	}
	if d.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}

	var userID any
	if d.UserID != "" {
		userID = d.UserID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ext_devices (mac_address, fw_version, fs_version, uptime, updated_at, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(mac_address) DO UPDATE SET
		     fw_version = excluded.fw_version,
		     fs_version = excluded.fs_version,
		     uptime = excluded.uptime,
		     updated_at = excluded.updated_at,
		     user_id = COALESCE(excluded.user_id, ext_devices.user_id)`,
		d.MACAddress,
		d.FWVersion,
		d.FSVersion,
		d.Uptime,
		d.UpdatedAt.UTC().Format(time.RFC3339),
		userID,
	)
	if err != nil {
		return fmt.Errorf("upserting device: %w", err)
	}

	return nil
}

// ListAll returns every device record, ordered by hardware address.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - resolveOwners: When true, joins the owning username onto each device
//
// Returns:
//   - []Device: All device records, timestamps in UTC
//   - error: nil on success, otherwise the underlying query error
func (s *SQLiteStore) ListAll(ctx context.Context, resolveOwners bool) ([]Device, error) {
	query := `SELECT mac_address, fw_version, fs_version, uptime, updated_at, user_id
	          FROM ext_devices
	          ORDER BY mac_address`
	if resolveOwners {
		query = `SELECT d.mac_address, d.fw_version, d.fs_version, d.uptime, d.updated_at, d.user_id,
		                u.username
		         FROM ext_devices d
		         LEFT JOIN users u ON u.id = d.user_id
		         ORDER BY d.mac_address`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		var updatedAt string
		var userID sql.NullString
		var owner sql.NullString

		if resolveOwners {
			err = rows.Scan(&d.MACAddress, &d.FWVersion, &d.FSVersion, &d.Uptime, &updatedAt, &userID, &owner)
		} else {
			err = rows.Scan(&d.MACAddress, &d.FWVersion, &d.FSVersion, &d.Uptime, &updatedAt, &userID)
		}
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}

		timestamp, err := parseDeviceTimestamp(updatedAt)
		if err != nil {
			return nil, err
		}
		d.UpdatedAt = timestamp
		d.UserID = userID.String
		d.OwnerUsername = owner.String

		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a single device row into a Device struct.
func scanDevice(row scanner) (*Device, error) {
	var d Device
	var updatedAt string
	var userID sql.NullString

	if err := row.Scan(&d.MACAddress, &d.FWVersion, &d.FSVersion, &d.Uptime, &updatedAt, &userID); err != nil {
		return nil, err
	}

	timestamp, err := parseDeviceTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt = timestamp
	d.UserID = userID.String

	return &d, nil
}

// parseDeviceTimestamp parses a timestamp stored in SQLite.
func parseDeviceTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("updated_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
}
