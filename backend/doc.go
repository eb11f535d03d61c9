// Package backend selects where hitbox point buffers live.
//
// A backend supplies the gpucore.Adapter a hitbox.Session allocates its
// point and index buffers on. The software backend is registered on import
// and keeps buffers in host memory. The native backend in backend/native
// registers itself when imported and opens a device through gogpu/wgpu's
// HAL:
//
//	import _ "github.com/gogpu/hitbox/backend/native"
//
// # Backend Selection
//
// Use Open to initialise a backend by name, or with an empty name to take
// the best backend that initialises on this machine:
//
//	b, err := backend.Open("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	session := hitbox.NewSession(hitbox.WithAdapter(b.Adapter()))
//	defer session.Close()
//
// Sessions must be closed before the backend that supplied their adapter.
//
// # Available Backends
//
// - "software": host memory (always available)
// - "native": gogpu/wgpu HAL device (when backend/native is imported)
package backend
