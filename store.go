package hitbox

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/hitbox/gpucore"
)

// DefaultCapacity is the number of points a hitbox can hold.
const DefaultCapacity = 256

// GPU layout of a store.
const (
	// PointStride is the size of one point in the point buffer (2 x float32).
	PointStride = 8
	// IndexStride is the size of one entry in the index buffer (uint32).
	IndexStride = 4
)

// StoreConfig describes a new Store.
type StoreConfig struct {
	// Label prefixes the GPU buffer labels.
	Label string
	// Capacity is the fixed maximum point count. Zero means DefaultCapacity.
	Capacity int
	// Color is the outline and point color.
	Color RGBA
	// SpriteSize is the size of the sprite the hitbox belongs to.
	SpriteSize image.Point
	// Initial is the starting point list. It is ignored, with a warning,
	// when it does not fit in Capacity.
	Initial []Point
}

// Store is the point list of one hitbox: a fixed-capacity CPU arena
// mirrored into a GPU point buffer and a GPU index buffer.
//
// The index buffer holds Len()+1 entries, 0..Len()-1 followed by 0, so a
// single indexed line strip draws the closed outline.
//
// Every mutation writes the GPU buffers before it commits the CPU length,
// so a draw recorded after any call observes matching count and contents.
// Store is not safe for concurrent use.
type Store struct {
	adapter    gpucore.Adapter
	label      string
	points     []Point
	cursor     int // -1 when unset
	color      RGBA
	spriteSize image.Point
	pointBuf   gpucore.BufferID
	indexBuf   gpucore.BufferID
	scratch    []byte
	released   bool
}

// NewStore allocates the GPU buffers for a hitbox and uploads the initial
// points. Allocation failures are returned wrapped.
func NewStore(adapter gpucore.Adapter, cfg StoreConfig) (*Store, error) {
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	label := cfg.Label
	if label == "" {
		label = "hitbox"
	}

	s := &Store{
		adapter:    adapter,
		label:      label,
		points:     make([]Point, 0, capacity),
		cursor:     -1,
		color:      cfg.Color,
		spriteSize: cfg.SpriteSize,
		scratch:    make([]byte, 0, (capacity+1)*PointStride),
	}

	var err error
	s.pointBuf, err = adapter.CreateBuffer(label+"-points", capacity*PointStride,
		gpucore.BufferUsageVertex|gpucore.BufferUsageCopyDst|gpucore.BufferUsageCopySrc)
	if err != nil {
		return nil, fmt.Errorf("create point buffer: %w", err)
	}
	s.indexBuf, err = adapter.CreateBuffer(label+"-indices", (capacity+1)*IndexStride,
		gpucore.BufferUsageIndex|gpucore.BufferUsageCopyDst)
	if err != nil {
		adapter.DestroyBuffer(s.pointBuf)
		return nil, fmt.Errorf("create index buffer: %w", err)
	}

	switch {
	case len(cfg.Initial) > capacity:
		Logger().Warn("hitbox: initial points exceed capacity, starting empty",
			"hitbox", label, "points", len(cfg.Initial), "capacity", capacity)
	case len(cfg.Initial) > 0:
		if err := s.load(cfg.Initial); err != nil {
			s.Release()
			return nil, err
		}
	}

	Logger().Debug("hitbox: store created", "hitbox", label, "capacity", capacity, "points", len(s.points))
	return s, nil
}

// load uploads a complete point list into an empty store.
func (s *Store) load(pts []Point) error {
	if err := s.writePoints(0, pts); err != nil {
		return fmt.Errorf("upload initial points: %w", err)
	}
	indices := make([]byte, (len(pts)+1)*IndexStride)
	for i := range pts {
		binary.LittleEndian.PutUint32(indices[i*IndexStride:], uint32(i)) //nolint:gosec // i < capacity
	}
	if err := s.adapter.WriteBuffer(s.indexBuf, 0, indices); err != nil {
		return fmt.Errorf("upload initial indices: %w", err)
	}
	s.points = append(s.points, pts...)
	return nil
}

// AddPoint adds p to the hitbox. With no insert cursor, or a cursor at the
// end, p is appended. Otherwise p is written at the cursor and the points
// from the cursor onwards move one slot right; the cursor stays where it is.
//
// AddPoint returns ErrCapacityExceeded when the store is full. Rejected
// calls leave the store unchanged.
func (s *Store) AddPoint(p Point) error {
	if s.released {
		return ErrStoreReleased
	}
	n := len(s.points)
	if n == cap(s.points) {
		Logger().Warn("hitbox: max size reached", "hitbox", s.label, "capacity", cap(s.points))
		return fmt.Errorf("%w: %s holds %d points", ErrCapacityExceeded, s.label, n)
	}

	at := n
	if s.cursor >= 0 && s.cursor < n {
		at = s.cursor
	}

	// New tail: p followed by the points it displaces.
	tail := make([]Point, 0, n-at+1)
	tail = append(tail, p)
	tail = append(tail, s.points[at:]...)

	if err := s.writePoints(at, tail); err != nil {
		return fmt.Errorf("write points: %w", err)
	}
	if err := s.writeClosingIndex(n + 1); err != nil {
		// Put the previous tail back so the GPU matches the CPU again.
		if restoreErr := s.writePoints(at, s.points[at:]); restoreErr != nil {
			Logger().Warn("hitbox: restore after failed add", "hitbox", s.label, "err", restoreErr)
		}
		return fmt.Errorf("write indices: %w", err)
	}

	s.points = s.points[:n+1]
	copy(s.points[at:], tail)
	return nil
}

// writePoints uploads pts starting at slot first.
func (s *Store) writePoints(first int, pts []Point) error {
	if len(pts) == 0 {
		return nil
	}
	buf := s.scratch[:len(pts)*PointStride]
	for i, p := range pts {
		binary.LittleEndian.PutUint32(buf[i*PointStride:], math.Float32bits(float32(p.X)))
		binary.LittleEndian.PutUint32(buf[i*PointStride+4:], math.Float32bits(float32(p.Y)))
	}
	return s.adapter.WriteBuffer(s.pointBuf, uint64(first*PointStride), buf) //nolint:gosec // first < capacity
}

// writeClosingIndex writes the last two entries of an n-point loop:
// n-1 at slot n-1 and 0 at slot n.
func (s *Store) writeClosingIndex(n int) error {
	var b [2 * IndexStride]byte
	binary.LittleEndian.PutUint32(b[0:], uint32(n-1)) //nolint:gosec // n <= capacity
	binary.LittleEndian.PutUint32(b[IndexStride:], 0)
	return s.adapter.WriteBuffer(s.indexBuf, uint64((n-1)*IndexStride), b[:]) //nolint:gosec // n <= capacity
}

// SetInsertCursor makes subsequent adds insert at index. It returns
// ErrIndexOutOfRange when index is negative or greater than Len().
func (s *Store) SetInsertCursor(index int) error {
	if index < 0 || index > len(s.points) {
		Logger().Warn("hitbox: attempting to insert to an index outside the hitbox",
			"hitbox", s.label, "index", index, "len", len(s.points))
		return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, index, len(s.points))
	}
	s.cursor = index
	return nil
}

// ClearInsertCursor makes subsequent adds append.
func (s *Store) ClearInsertCursor() {
	s.cursor = -1
}

// InsertCursor returns the insert cursor and whether it is set.
func (s *Store) InsertCursor() (int, bool) {
	return s.cursor, s.cursor >= 0
}

// Len returns the number of points.
func (s *Store) Len() int { return len(s.points) }

// Cap returns the fixed capacity.
func (s *Store) Cap() int { return cap(s.points) }

// Points returns a copy of the CPU mirror.
func (s *Store) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// At returns the i-th point.
func (s *Store) At(i int) Point { return s.points[i] }

// ReadBack reads the point list from GPU memory.
//
// ReadBack is expensive: on a hardware device it waits for the GPU to drain
// and maps a staging buffer. It exists for verification and export and
// must not run per frame; use Points for the CPU mirror.
func (s *Store) ReadBack() ([]Point, error) {
	if s.released {
		return nil, ErrStoreReleased
	}
	Logger().Warn("hitbox: expensive GPU read-back", "hitbox", s.label, "points", len(s.points))
	n := len(s.points)
	if n == 0 {
		return nil, nil
	}
	data, err := s.adapter.ReadBuffer(s.pointBuf, 0, uint64(n*PointStride)) //nolint:gosec // n <= capacity
	if err != nil {
		return nil, fmt.Errorf("read point buffer: %w", err)
	}
	out := make([]Point, n)
	for i := range out {
		x := math.Float32frombits(binary.LittleEndian.Uint32(data[i*PointStride:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(data[i*PointStride+4:]))
		out[i] = Pt(float64(x), float64(y))
	}
	return out, nil
}

// Label returns the store label.
func (s *Store) Label() string { return s.label }

// Color returns the outline color.
func (s *Store) Color() RGBA { return s.color }

// SetColor changes the outline color.
func (s *Store) SetColor(c RGBA) { s.color = c }

// SpriteSize returns the size of the owning sprite.
func (s *Store) SpriteSize() image.Point { return s.spriteSize }

// PointBuffer returns the GPU point buffer.
func (s *Store) PointBuffer() gpucore.BufferID { return s.pointBuf }

// IndexBuffer returns the GPU index buffer.
func (s *Store) IndexBuffer() gpucore.BufferID { return s.indexBuf }

// LoopIndexCount returns the number of indices that draw the closed outline.
func (s *Store) LoopIndexCount() int {
	if len(s.points) == 0 {
		return 0
	}
	return len(s.points) + 1
}

// Release frees the GPU buffers. The store must not be drawn afterwards.
func (s *Store) Release() {
	if s.released {
		return
	}
	s.released = true
	s.adapter.DestroyBuffer(s.indexBuf)
	s.adapter.DestroyBuffer(s.pointBuf)
}
