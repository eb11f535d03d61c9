// Package gpucore provides the GPU resource abstraction used by the hitbox
// editing core.
//
// The [Adapter] interface hides the backend behind opaque resource IDs
// ([BufferID], [TextureID]) so the point store can mirror its CPU arena into
// GPU memory without importing a graphics API:
//
//	               +-----------------+
//	               |  hitbox.Store   |
//	               +--------+--------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|   HostAdapter   |          |   HALAdapter    |
//	|  (CPU memory)   |          | (backend/native)|
//	+-----------------+          +--------+--------+
//	                                      |
//	                             +--------v--------+
//	                             |   gogpu/wgpu    |
//	                             +-----------------+
//
// # Resource Management
//
// Resources are created and destroyed explicitly. Adapters track the mapping
// between IDs and backend resources; IDs are never reused.
//
// # Read-back
//
// [Adapter.ReadBuffer] copies GPU memory back to the host. On real hardware
// this stalls until the queue drains, so it must stay off per-frame paths.
package gpucore
