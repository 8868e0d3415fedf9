package device

import "errors"

// ErrDeviceNotFound is returned when no device exists for the requested
// hardware address.
var ErrDeviceNotFound = errors.New("device: not found")
