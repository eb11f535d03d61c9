package gpucore

import "errors"

var (
	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("gpucore: unknown resource")

	// ErrOutOfBounds is returned when an access exceeds the resource size.
	ErrOutOfBounds = errors.New("gpucore: access out of bounds")

	// ErrInvalidSize is returned when a resource is created with a
	// non-positive size.
	ErrInvalidSize = errors.New("gpucore: invalid size")
)
