package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/hitbox/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// copyAlignment is the WebGPU alignment for buffer sizes and copy ranges.
const copyAlignment = 4

// HALAdapter implements gpucore.Adapter using gogpu/wgpu/hal directly.
//
// Thread Safety: HALAdapter is safe for concurrent use from multiple
// goroutines. The resource maps are protected by a mutex; ordering of queue
// operations is the caller's responsibility.
type HALAdapter struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	// ID generation
	nextID atomic.Uint64

	// Resource tracking maps gpucore IDs to hal resources
	buffers  map[gpucore.BufferID]*halBuffer
	textures map[gpucore.TextureID]*halTexture
}

type halBuffer struct {
	buffer hal.Buffer
	size   uint64
}

type halTexture struct {
	texture hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
	format  gpucore.TextureFormat
}

// NewHALAdapter creates a new HALAdapter wrapping the given device and queue.
func NewHALAdapter(device hal.Device, queue hal.Queue) (*HALAdapter, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	a := &HALAdapter{
		device:   device,
		queue:    queue,
		buffers:  make(map[gpucore.BufferID]*halBuffer),
		textures: make(map[gpucore.TextureID]*halTexture),
	}
	// Start ID generation at 1 (0 is invalid)
	a.nextID.Store(1)
	return a, nil
}

func (a *HALAdapter) newID() uint64 {
	return a.nextID.Add(1) - 1
}

// Device returns the wrapped device.
func (a *HALAdapter) Device() hal.Device { return a.device }

// Queue returns the wrapped queue.
func (a *HALAdapter) Queue() hal.Queue { return a.queue }

// === Buffer Management ===

// CreateBuffer creates a GPU buffer. The size is rounded up to the copy
// alignment.
func (a *HALAdapter) CreateBuffer(label string, size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: buffer %q size %d", gpucore.ErrInvalidSize, label, size)
	}
	aligned := alignUp(uint64(size), copyAlignment)

	buffer, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  aligned,
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create buffer %q: %w", label, err)
	}

	id := gpucore.BufferID(a.newID())
	a.mu.Lock()
	a.buffers[id] = &halBuffer{buffer: buffer, size: aligned}
	a.mu.Unlock()

	hitbox.Logger().Debug("native: buffer created", "label", label, "size", aligned, "id", id)
	return id, nil
}

// DestroyBuffer releases a GPU buffer.
func (a *HALAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	b, ok := a.buffers[id]
	if ok {
		delete(a.buffers, id)
	}
	a.mu.Unlock()

	if ok {
		a.device.DestroyBuffer(b.buffer)
	}
}

// WriteBuffer writes data to a buffer through the queue.
func (a *HALAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	b, err := a.lookupBuffer(id)
	if err != nil {
		return err
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: write %d bytes at %d into %d-byte buffer",
			gpucore.ErrOutOfBounds, len(data), offset, b.size)
	}
	if len(data) == 0 {
		return nil
	}
	if err := a.queue.WriteBuffer(b.buffer, offset, data); err != nil {
		return fmt.Errorf("write buffer %d: %w", id, err)
	}
	return nil
}

// ReadBuffer reads data from a buffer.
// This operation requires a staging buffer and waits for the device to go
// idle; never call it per frame.
func (a *HALAdapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	b, err := a.lookupBuffer(id)
	if err != nil {
		return nil, err
	}
	if offset+size > b.size {
		return nil, fmt.Errorf("%w: read %d bytes at %d from %d-byte buffer",
			gpucore.ErrOutOfBounds, size, offset, b.size)
	}
	if size == 0 {
		return nil, nil
	}
	copySize := alignUp(size, copyAlignment)
	if offset+copySize > b.size {
		copySize = b.size - offset
	}

	staging, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "staging-readback",
		Size:  alignUp(copySize, copyAlignment),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(staging)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "buffer-read-encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("buffer-read"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b.buffer, staging, []hal.BufferCopy{
		{SrcOffset: offset, DstOffset: 0, Size: copySize},
	})
	cmdBuffer, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuffer)

	if _, err := a.queue.Submit([]hal.CommandBuffer{cmdBuffer}); err != nil {
		return nil, fmt.Errorf("submit readback: %w", err)
	}
	if err := a.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait for readback: %w", err)
	}

	mapping, err := a.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMapFailed, err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := a.device.UnmapBuffer(staging); err != nil {
		hitbox.Logger().Warn("native: unmap staging buffer", "err", err)
	}
	return out, nil
}

func (a *HALAdapter) lookupBuffer(id gpucore.BufferID) (*halBuffer, error) {
	a.mu.RLock()
	b, ok := a.buffers[id]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", gpucore.ErrUnknownResource, id)
	}
	return b, nil
}

// Buffer returns the hal buffer behind id.
func (a *HALAdapter) Buffer(id gpucore.BufferID) (hal.Buffer, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.buffers[id]
	if !ok {
		return nil, false
	}
	return b.buffer, true
}

// === Texture Management ===

// CreateTexture creates a 2D texture and a default view of it.
func (a *HALAdapter) CreateTexture(label string, width, height int, format gpucore.TextureFormat, usage gpucore.TextureUsage) (gpucore.TextureID, error) {
	if width <= 0 || height <= 0 || format.BytesPerPixel() == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %q %dx%d", gpucore.ErrInvalidSize, label, width, height)
	}
	halFormat := convertTextureFormat(format)

	texture, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(width),  //nolint:gosec // checked positive
			Height:             uint32(height), //nolint:gosec // checked positive
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        halFormat,
		Usage:         convertTextureUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create texture %q: %w", label, err)
	}

	view, err := a.device.CreateTextureView(texture, &hal.TextureViewDescriptor{
		Label:         label + "-view",
		Format:        halFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.device.DestroyTexture(texture)
		return gpucore.InvalidID, fmt.Errorf("create texture view %q: %w", label, err)
	}

	id := gpucore.TextureID(a.newID())
	a.mu.Lock()
	a.textures[id] = &halTexture{
		texture: texture,
		view:    view,
		width:   uint32(width),  //nolint:gosec // checked positive
		height:  uint32(height), //nolint:gosec // checked positive
		format:  format,
	}
	a.mu.Unlock()

	hitbox.Logger().Debug("native: texture created", "label", label, "width", width, "height", height, "id", id)
	return id, nil
}

// DestroyTexture releases a texture and its view.
func (a *HALAdapter) DestroyTexture(id gpucore.TextureID) {
	a.mu.Lock()
	t, ok := a.textures[id]
	if ok {
		delete(a.textures, id)
	}
	a.mu.Unlock()

	if ok {
		a.device.DestroyTextureView(t.view)
		a.device.DestroyTexture(t.texture)
	}
}

// WriteTexture uploads tightly packed rows covering the whole texture.
func (a *HALAdapter) WriteTexture(id gpucore.TextureID, data []byte) error {
	a.mu.RLock()
	t, ok := a.textures[id]
	a.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, id)
	}
	bpp := uint32(t.format.BytesPerPixel()) //nolint:gosec // 4
	if want := int(t.width * t.height * bpp); len(data) != want {
		return fmt.Errorf("%w: texture expects %d bytes, got %d", gpucore.ErrOutOfBounds, want, len(data))
	}
	err := a.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.texture, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: t.width * bpp, RowsPerImage: t.height},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write texture %d: %w", id, err)
	}
	return nil
}

// TextureView returns the default view of a texture.
func (a *HALAdapter) TextureView(id gpucore.TextureID) (hal.TextureView, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.textures[id]
	if !ok {
		return nil, false
	}
	return t.view, true
}

// Destroy releases every resource still owned by the adapter. The device
// and queue belong to the host and are left alone.
func (a *HALAdapter) Destroy() {
	a.mu.Lock()
	buffers, textures := a.buffers, a.textures
	a.buffers = make(map[gpucore.BufferID]*halBuffer)
	a.textures = make(map[gpucore.TextureID]*halTexture)
	a.mu.Unlock()

	for _, t := range textures {
		a.device.DestroyTextureView(t.view)
		a.device.DestroyTexture(t.texture)
	}
	for _, b := range buffers {
		a.device.DestroyBuffer(b.buffer)
	}
}

var _ gpucore.Adapter = (*HALAdapter)(nil)

// === Type Conversion Helpers ===

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// convertBufferUsage converts gpucore.BufferUsage to gputypes.BufferUsage.
func convertBufferUsage(usage gpucore.BufferUsage) gputypes.BufferUsage {
	var result gputypes.BufferUsage
	if usage&gpucore.BufferUsageMapRead != 0 {
		result |= gputypes.BufferUsageMapRead
	}
	if usage&gpucore.BufferUsageCopySrc != 0 {
		result |= gputypes.BufferUsageCopySrc
	}
	if usage&gpucore.BufferUsageCopyDst != 0 {
		result |= gputypes.BufferUsageCopyDst
	}
	if usage&gpucore.BufferUsageIndex != 0 {
		result |= gputypes.BufferUsageIndex
	}
	if usage&gpucore.BufferUsageVertex != 0 {
		result |= gputypes.BufferUsageVertex
	}
	if usage&gpucore.BufferUsageUniform != 0 {
		result |= gputypes.BufferUsageUniform
	}
	return result
}

// convertTextureUsage converts gpucore.TextureUsage to gputypes.TextureUsage.
func convertTextureUsage(usage gpucore.TextureUsage) gputypes.TextureUsage {
	var result gputypes.TextureUsage
	if usage&gpucore.TextureUsageCopySrc != 0 {
		result |= gputypes.TextureUsageCopySrc
	}
	if usage&gpucore.TextureUsageCopyDst != 0 {
		result |= gputypes.TextureUsageCopyDst
	}
	if usage&gpucore.TextureUsageTextureBinding != 0 {
		result |= gputypes.TextureUsageTextureBinding
	}
	if usage&gpucore.TextureUsageRenderAttachment != 0 {
		result |= gputypes.TextureUsageRenderAttachment
	}
	return result
}

// convertTextureFormat converts gpucore.TextureFormat to gputypes.TextureFormat.
func convertTextureFormat(format gpucore.TextureFormat) gputypes.TextureFormat {
	switch format {
	case gpucore.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}
