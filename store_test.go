package hitbox

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gogpu/hitbox/gpucore"
)

func newTestStore(t *testing.T, capacity int, initial []Point) *Store {
	t.Helper()
	s, err := NewStore(gpucore.NewHostAdapter(), StoreConfig{
		Label:      "test",
		Capacity:   capacity,
		Color:      Red,
		SpriteSize: image.Pt(32, 48),
		Initial:    initial,
	})
	if err != nil {
		t.Fatalf("NewStore() = %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

// assertMirrored checks that the GPU copy matches the CPU mirror.
func assertMirrored(t *testing.T, s *Store) {
	t.Helper()
	gpu, err := s.ReadBack()
	if err != nil {
		t.Fatalf("ReadBack() = %v", err)
	}
	if !slices.Equal(gpu, s.Points()) {
		t.Fatalf("GPU points %v != CPU points %v", gpu, s.Points())
	}
	if s.Len() == 0 {
		return
	}
	host := s.adapter.(*gpucore.HostAdapter)
	raw, err := host.ReadBuffer(s.IndexBuffer(), 0, uint64(s.LoopIndexCount()*IndexStride))
	if err != nil {
		t.Fatalf("read index buffer: %v", err)
	}
	for i := range s.LoopIndexCount() {
		got := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		want := uint32(i)
		if i == s.Len() {
			want = 0
		}
		if got != want {
			t.Fatalf("index[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestNewStoreDefaults(t *testing.T) {
	s := newTestStore(t, 0, nil)
	if s.Cap() != DefaultCapacity {
		t.Errorf("Cap() = %d, want %d", s.Cap(), DefaultCapacity)
	}
	if s.Len() != 0 || s.LoopIndexCount() != 0 {
		t.Errorf("new store has %d points, %d indices", s.Len(), s.LoopIndexCount())
	}
	if _, ok := s.InsertCursor(); ok {
		t.Error("new store has an insert cursor")
	}
	if s.Color() != Red || s.SpriteSize() != image.Pt(32, 48) {
		t.Errorf("Color/SpriteSize = %v/%v", s.Color(), s.SpriteSize())
	}
	if _, err := NewStore(gpucore.NewHostAdapter(), StoreConfig{Capacity: -1}); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("NewStore(-1) = %v, want ErrInvalidCapacity", err)
	}
}

func TestNewStoreInitialPoints(t *testing.T) {
	initial := []Point{Pt(-8, -8), Pt(8, -8), Pt(8, 8), Pt(-8, 8)}
	s := newTestStore(t, 8, initial)
	if !slices.Equal(s.Points(), initial) {
		t.Fatalf("Points() = %v, want %v", s.Points(), initial)
	}
	assertMirrored(t, s)

	// Too many initial points: start empty.
	over := newTestStore(t, 2, initial)
	if over.Len() != 0 {
		t.Errorf("Len() = %d, want 0 when initial points exceed capacity", over.Len())
	}
}

func TestAddPointAppends(t *testing.T) {
	s := newTestStore(t, 16, nil)
	want := []Point{Pt(1, 1), Pt(2, 2), Pt(-3, 4)}
	for _, p := range want {
		if err := s.AddPoint(p); err != nil {
			t.Fatalf("AddPoint(%v) = %v", p, err)
		}
	}
	if !slices.Equal(s.Points(), want) {
		t.Errorf("Points() = %v, want %v", s.Points(), want)
	}
	assertMirrored(t, s)
}

func TestAddPointInsertAtFront(t *testing.T) {
	s := newTestStore(t, 16, []Point{Pt(1, 1), Pt(2, 2)})
	if err := s.SetInsertCursor(0); err != nil {
		t.Fatalf("SetInsertCursor(0) = %v", err)
	}
	if err := s.AddPoint(Pt(9, 9)); err != nil {
		t.Fatalf("AddPoint() = %v", err)
	}
	want := []Point{Pt(9, 9), Pt(1, 1), Pt(2, 2)}
	if !slices.Equal(s.Points(), want) {
		t.Errorf("Points() = %v, want %v", s.Points(), want)
	}
	if c, ok := s.InsertCursor(); !ok || c != 0 {
		t.Errorf("InsertCursor() = %d, %v; want 0, true", c, ok)
	}
	assertMirrored(t, s)
}

func TestAddPointRepeatedInsertKeepsCursor(t *testing.T) {
	s := newTestStore(t, 16, []Point{Pt(0, 0), Pt(5, 5)})
	if err := s.SetInsertCursor(1); err != nil {
		t.Fatal(err)
	}
	for _, p := range []Point{Pt(1, 1), Pt(2, 2), Pt(3, 3)} {
		if err := s.AddPoint(p); err != nil {
			t.Fatal(err)
		}
	}
	// Each insert lands at 1 and pushes the earlier ones along.
	want := []Point{Pt(0, 0), Pt(3, 3), Pt(2, 2), Pt(1, 1), Pt(5, 5)}
	if !slices.Equal(s.Points(), want) {
		t.Errorf("Points() = %v, want %v", s.Points(), want)
	}
	assertMirrored(t, s)
}

func TestAddPointCursorAtEndAppends(t *testing.T) {
	s := newTestStore(t, 16, []Point{Pt(0, 0)})
	if err := s.SetInsertCursor(1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPoint(Pt(1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPoint(Pt(2, 2)); err != nil {
		t.Fatal(err)
	}
	// The cursor stays at 1, so the second add inserts before (1,1).
	want := []Point{Pt(0, 0), Pt(2, 2), Pt(1, 1)}
	if !slices.Equal(s.Points(), want) {
		t.Errorf("Points() = %v, want %v", s.Points(), want)
	}
	s.ClearInsertCursor()
	if err := s.AddPoint(Pt(3, 3)); err != nil {
		t.Fatal(err)
	}
	if got := s.At(s.Len() - 1); got != Pt(3, 3) {
		t.Errorf("last point = %v, want (3,3)", got)
	}
	assertMirrored(t, s)
}

func TestInsertShiftsSuffix(t *testing.T) {
	for n := 0; n <= 6; n++ {
		for k := 0; k <= n; k++ {
			t.Run(fmt.Sprintf("n=%d/k=%d", n, k), func(t *testing.T) {
				orig := make([]Point, n)
				for i := range orig {
					orig[i] = Pt(float64(i), float64(-i))
				}
				s := newTestStore(t, 8, orig)
				if err := s.SetInsertCursor(k); err != nil {
					t.Fatal(err)
				}
				p := Pt(100, 100)
				if err := s.AddPoint(p); err != nil {
					t.Fatal(err)
				}
				got := s.Points()
				if !slices.Equal(got[:k], orig[:k]) {
					t.Errorf("prefix changed: %v", got)
				}
				if got[k] != p {
					t.Errorf("got[%d] = %v, want %v", k, got[k], p)
				}
				if !slices.Equal(got[k+1:], orig[k:]) {
					t.Errorf("suffix = %v, want %v", got[k+1:], orig[k:])
				}
				assertMirrored(t, s)
			})
		}
	}
}

func TestAddPointCapacityExceeded(t *testing.T) {
	s := newTestStore(t, 3, []Point{Pt(1, 1), Pt(2, 2)})
	if err := s.AddPoint(Pt(3, 3)); err != nil {
		t.Fatalf("AddPoint() = %v", err)
	}
	before := s.Points()
	for _, cursor := range []int{-1, 0, 3} {
		if cursor >= 0 {
			if err := s.SetInsertCursor(cursor); err != nil {
				t.Fatal(err)
			}
		} else {
			s.ClearInsertCursor()
		}
		if err := s.AddPoint(Pt(4, 4)); !errors.Is(err, ErrCapacityExceeded) {
			t.Errorf("cursor %d: AddPoint() = %v, want ErrCapacityExceeded", cursor, err)
		}
		if !slices.Equal(s.Points(), before) {
			t.Errorf("cursor %d: rejected add changed points to %v", cursor, s.Points())
		}
	}
	assertMirrored(t, s)
}

func TestSetInsertCursorRange(t *testing.T) {
	s := newTestStore(t, 8, []Point{Pt(1, 1), Pt(2, 2)})
	for _, idx := range []int{0, 1, 2} {
		if err := s.SetInsertCursor(idx); err != nil {
			t.Errorf("SetInsertCursor(%d) = %v", idx, err)
		}
	}
	for _, idx := range []int{3, 100, -1} {
		if err := s.SetInsertCursor(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("SetInsertCursor(%d) = %v, want ErrIndexOutOfRange", idx, err)
		}
	}
	// A rejected cursor leaves the previous one in place.
	if c, ok := s.InsertCursor(); !ok || c != 2 {
		t.Errorf("InsertCursor() = %d, %v; want 2, true", c, ok)
	}
}

func TestAddPointRandomSequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := newTestStore(t, 64, nil)
	var model []Point
	successes := 0
	for i := range 200 {
		if rng.IntN(3) == 0 {
			k := rng.IntN(len(model) + 2)
			err := s.SetInsertCursor(k)
			if k > len(model) {
				if !errors.Is(err, ErrIndexOutOfRange) {
					t.Fatalf("SetInsertCursor(%d) with len %d = %v", k, len(model), err)
				}
			} else if err != nil {
				t.Fatal(err)
			}
		}
		p := Pt(float64(i), float64(rng.IntN(100)))
		err := s.AddPoint(p)
		if len(model) == 64 {
			if !errors.Is(err, ErrCapacityExceeded) {
				t.Fatalf("AddPoint() on full store = %v", err)
			}
			continue
		}
		if err != nil {
			t.Fatal(err)
		}
		successes++
		at := len(model)
		if c, ok := s.InsertCursor(); ok && c < len(model) {
			at = c
		}
		model = slices.Insert(model, at, p)
	}
	if s.Len() != successes {
		t.Errorf("Len() = %d, want %d", s.Len(), successes)
	}
	if !slices.Equal(s.Points(), model) {
		t.Errorf("Points() diverged from model")
	}
	assertMirrored(t, s)
}

// failingAdapter fails WriteBuffer calls for one buffer after a budget.
type failingAdapter struct {
	*gpucore.HostAdapter
	target gpucore.BufferID
	budget int
}

func (a *failingAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	if id == a.target {
		if a.budget == 0 {
			return errors.New("device lost")
		}
		a.budget--
	}
	return a.HostAdapter.WriteBuffer(id, offset, data)
}

func TestAddPointGPUFailureLeavesStoreUnchanged(t *testing.T) {
	fa := &failingAdapter{HostAdapter: gpucore.NewHostAdapter(), budget: -1}
	s, err := NewStore(fa, StoreConfig{Capacity: 8, Initial: []Point{Pt(1, 1), Pt(2, 2)}})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()

	// Fail the index write after the point write succeeded.
	fa.target, fa.budget = s.IndexBuffer(), 0
	if err := s.SetInsertCursor(0); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPoint(Pt(9, 9)); err == nil {
		t.Fatal("AddPoint() succeeded with failing index buffer")
	}
	want := []Point{Pt(1, 1), Pt(2, 2)}
	if !slices.Equal(s.Points(), want) {
		t.Errorf("Points() = %v, want %v", s.Points(), want)
	}
	gpu, err := s.ReadBack()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(gpu, want) {
		t.Errorf("GPU points = %v, want restored %v", gpu, want)
	}
}

func TestReleaseFreesBuffers(t *testing.T) {
	host := gpucore.NewHostAdapter()
	s, err := NewStore(host, StoreConfig{Capacity: 4})
	if err != nil {
		t.Fatal(err)
	}
	if host.BufferCount() != 2 {
		t.Fatalf("BufferCount() = %d, want 2", host.BufferCount())
	}
	s.Release()
	s.Release()
	if host.BufferCount() != 0 {
		t.Errorf("BufferCount() = %d after Release", host.BufferCount())
	}
	if err := s.AddPoint(Pt(1, 1)); !errors.Is(err, ErrStoreReleased) {
		t.Errorf("AddPoint() after Release = %v", err)
	}
}

func TestPointsDoesNotReadGPU(t *testing.T) {
	host := gpucore.NewHostAdapter()
	s, err := NewStore(host, StoreConfig{Capacity: 4, Initial: []Point{Pt(1, 2)}})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()
	for range 10 {
		_ = s.Points()
		_ = s.Len()
	}
	if host.ReadCount() != 0 {
		t.Errorf("ReadCount() = %d, want 0", host.ReadCount())
	}
}
