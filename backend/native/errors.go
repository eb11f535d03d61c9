package native

import "errors"

// Package errors for the HAL adapter.
var (
	// ErrNilDevice is returned when the adapter is built without a device or queue.
	ErrNilDevice = errors.New("native: nil device or queue")

	// ErrMapFailed is returned when a staging buffer cannot be mapped.
	ErrMapFailed = errors.New("native: buffer mapping failed")
)
