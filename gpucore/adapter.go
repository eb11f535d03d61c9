package gpucore

// Adapter abstracts over GPU backend implementations.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - IDs become invalid after destruction and are never reused
type Adapter interface {
	// CreateBuffer creates a GPU buffer of size bytes.
	CreateBuffer(label string, size int, usage BufferUsage) (BufferID, error)

	// DestroyBuffer releases a GPU buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// WriteBuffer copies data into a buffer at offset. The write is ordered
	// before any draw submitted afterwards on the same queue.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// ReadBuffer reads data back from a buffer.
	// This may cause a GPU-CPU synchronization stall.
	ReadBuffer(id BufferID, offset, size uint64) ([]byte, error)

	// CreateTexture creates a 2D texture.
	CreateTexture(label string, width, height int, format TextureFormat, usage TextureUsage) (TextureID, error)

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)

	// WriteTexture uploads tightly packed pixel rows covering the whole texture.
	WriteTexture(id TextureID, data []byte) error
}
