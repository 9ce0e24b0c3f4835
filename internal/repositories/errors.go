package repositories

import "errors"

var ErrNotFound = errors.New("not found")

// ErrDeviceReference is returned when a location log points at a device row
// that no longer exists.
var ErrDeviceReference = errors.New("referenced device does not exist")
