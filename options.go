package hitbox

import "github.com/gogpu/hitbox/gpucore"

// SessionOption configures a Session during creation.
//
// Example:
//
//	// Headless session on host memory
//	s := hitbox.NewSession()
//
//	// GPU-backed session sharing the host's device
//	s := hitbox.NewSession(hitbox.WithAdapter(native.NewHALAdapter(device, queue)))
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	adapter   gpucore.Adapter
	capacity  int
	zoom      float64
	nudgeStep float64
}

func defaultSessionOptions() sessionOptions {
	return sessionOptions{
		capacity:  DefaultCapacity,
		zoom:      DefaultZoom,
		nudgeStep: DefaultNudgeStep,
	}
}

// WithAdapter sets the GPU adapter that backs point buffers.
// Without it the session keeps its buffers in host memory.
func WithAdapter(a gpucore.Adapter) SessionOption {
	return func(o *sessionOptions) {
		o.adapter = a
	}
}

// WithCapacity sets the point capacity of every hitbox the session creates.
func WithCapacity(n int) SessionOption {
	return func(o *sessionOptions) {
		o.capacity = n
	}
}

// WithZoom sets the initial zoom. Values outside (0, 2] fall back to
// DefaultZoom.
func WithZoom(z float64) SessionOption {
	return func(o *sessionOptions) {
		o.zoom = z
	}
}

// WithNudgeStep sets the keyboard pan step in sprite units.
func WithNudgeStep(step float64) SessionOption {
	return func(o *sessionOptions) {
		o.nudgeStep = step
	}
}
