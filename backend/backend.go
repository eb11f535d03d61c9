package backend

import (
	"errors"

	"github.com/gogpu/hitbox/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend supplies the gpucore.Adapter that hitbox point stores allocate
// their buffers on.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Init acquires the backend's device. It must be called before Adapter.
	Init() error

	// Close releases all backend resources. Stores allocated on the adapter
	// must be released first.
	Close()

	// Adapter returns the resource adapter, or nil before Init.
	Adapter() gpucore.Adapter
}
