package hitbox

import "errors"

// Errors reported by the editing core. None of them are fatal: the
// operation that produced them leaves all state unchanged.
var (
	// ErrCapacityExceeded is returned by AddPoint when the store is full.
	ErrCapacityExceeded = errors.New("hitbox: max size reached")

	// ErrIndexOutOfRange is returned when an insert cursor would land
	// past the end of the point sequence.
	ErrIndexOutOfRange = errors.New("hitbox: insert index outside the hitbox")

	// ErrOutsideViewport marks input that falls outside the panel. Most host
	// events fire window-wide, so callers usually drop it silently.
	ErrOutsideViewport = errors.New("hitbox: coordinate outside viewport")

	// ErrNoActiveHitbox is returned by session edits when no hitbox is selected.
	ErrNoActiveHitbox = errors.New("hitbox: no active hitbox")

	// ErrInvalidCapacity is returned when a store is created with capacity < 1.
	ErrInvalidCapacity = errors.New("hitbox: invalid capacity")

	// ErrStoreReleased is returned by operations on a released store.
	ErrStoreReleased = errors.New("hitbox: store released")
)
