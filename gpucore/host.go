package gpucore

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// HostAdapter implements Adapter on plain host memory. It backs headless
// sessions, the software compositor and tests.
//
// HostAdapter is safe for concurrent use.
type HostAdapter struct {
	mu       sync.RWMutex
	nextID   atomic.Uint64
	reads    atomic.Uint64
	buffers  map[BufferID]*hostBuffer
	textures map[TextureID]*hostTexture
}

type hostBuffer struct {
	label string
	usage BufferUsage
	data  []byte
}

type hostTexture struct {
	label         string
	width, height int
	format        TextureFormat
	data          []byte
}

// NewHostAdapter creates an empty HostAdapter.
func NewHostAdapter() *HostAdapter {
	a := &HostAdapter{
		buffers:  make(map[BufferID]*hostBuffer),
		textures: make(map[TextureID]*hostTexture),
	}
	// 0 is InvalidID.
	a.nextID.Store(1)
	return a
}

func (a *HostAdapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// CreateBuffer allocates a zeroed buffer.
func (a *HostAdapter) CreateBuffer(label string, size int, usage BufferUsage) (BufferID, error) {
	if size <= 0 {
		return InvalidID, fmt.Errorf("%w: buffer %q size %d", ErrInvalidSize, label, size)
	}
	id := BufferID(a.newID())
	a.mu.Lock()
	a.buffers[id] = &hostBuffer{label: label, usage: usage, data: make([]byte, size)}
	a.mu.Unlock()
	return id, nil
}

// DestroyBuffer releases a buffer.
func (a *HostAdapter) DestroyBuffer(id BufferID) {
	a.mu.Lock()
	delete(a.buffers, id)
	a.mu.Unlock()
}

// WriteBuffer copies data into the buffer.
func (a *HostAdapter) WriteBuffer(id BufferID, offset uint64, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownResource, id)
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("%w: write %d bytes at %d into %q (%d bytes)",
			ErrOutOfBounds, len(data), offset, b.label, len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

// ReadBuffer returns a copy of the buffer range.
func (a *HostAdapter) ReadBuffer(id BufferID, offset, size uint64) ([]byte, error) {
	a.reads.Add(1)
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", ErrUnknownResource, id)
	}
	if offset+size > uint64(len(b.data)) {
		return nil, fmt.Errorf("%w: read %d bytes at %d from %q (%d bytes)",
			ErrOutOfBounds, size, offset, b.label, len(b.data))
	}
	out := make([]byte, size)
	copy(out, b.data[offset:offset+size])
	return out, nil
}

// ReadCount reports how many ReadBuffer calls the adapter has served.
func (a *HostAdapter) ReadCount() uint64 {
	return a.reads.Load()
}

// BufferCount reports the number of live buffers.
func (a *HostAdapter) BufferCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.buffers)
}

// CreateTexture allocates a zeroed texture.
func (a *HostAdapter) CreateTexture(label string, width, height int, format TextureFormat, _ TextureUsage) (TextureID, error) {
	bpp := format.BytesPerPixel()
	if width <= 0 || height <= 0 || bpp == 0 {
		return InvalidID, fmt.Errorf("%w: texture %q %dx%d format %d", ErrInvalidSize, label, width, height, format)
	}
	id := TextureID(a.newID())
	a.mu.Lock()
	a.textures[id] = &hostTexture{
		label:  label,
		width:  width,
		height: height,
		format: format,
		data:   make([]byte, width*height*bpp),
	}
	a.mu.Unlock()
	return id, nil
}

// DestroyTexture releases a texture.
func (a *HostAdapter) DestroyTexture(id TextureID) {
	a.mu.Lock()
	delete(a.textures, id)
	a.mu.Unlock()
}

// WriteTexture replaces the texture contents.
func (a *HostAdapter) WriteTexture(id TextureID, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", ErrUnknownResource, id)
	}
	if len(data) != len(t.data) {
		return fmt.Errorf("%w: texture %q expects %d bytes, got %d",
			ErrOutOfBounds, t.label, len(t.data), len(data))
	}
	copy(t.data, data)
	return nil
}

var _ Adapter = (*HostAdapter)(nil)
