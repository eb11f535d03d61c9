package hitbox

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/gogpu/hitbox/gpucore"
)

type hitboxEvents struct {
	added, removed []string
}

func (h *hitboxEvents) HitboxAdded(s *Store)   { h.added = append(h.added, s.Label()) }
func (h *hitboxEvents) HitboxRemoved(s *Store) { h.removed = append(h.removed, s.Label()) }

// newTestSession returns a session with an 800x800 panel at the origin.
func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	s := NewSession(append([]SessionOption{WithZoom(1)}, opts...)...)
	s.Viewport().SetPanelRect(image.Rect(-1, -1, 801, 801))
	t.Cleanup(s.Close)
	return s
}

func TestNewSessionOptions(t *testing.T) {
	host := gpucore.NewHostAdapter()
	s := NewSession(WithAdapter(host), WithCapacity(4), WithZoom(0.5), WithNudgeStep(2))
	defer s.Close()

	if s.Adapter() != host {
		t.Error("WithAdapter not applied")
	}
	if got := s.Viewport().State().Zoom; got != 0.5 {
		t.Errorf("Zoom = %v, want 0.5", got)
	}
	st, err := s.AddSprite(Sprite{Name: "a", Size: image.Pt(8, 8)}, Red)
	if err != nil {
		t.Fatal(err)
	}
	if st.Cap() != 4 {
		t.Errorf("Cap() = %d, want 4", st.Cap())
	}
	s.Viewport().Nudge(NudgeUp)
	if got := s.Viewport().State().Shift; got != Pt(0, 2) {
		t.Errorf("Shift = %v, want (0,2)", got)
	}

	def := NewSession()
	defer def.Close()
	if got := def.Viewport().State().Zoom; got != DefaultZoom {
		t.Errorf("default Zoom = %v, want %v", got, DefaultZoom)
	}
}

func TestSessionSprites(t *testing.T) {
	s := newTestSession(t)
	ev := &hitboxEvents{}
	s.Subscribe(ev)

	if s.Active() != nil {
		t.Fatal("empty session has an active hitbox")
	}
	a, err := s.AddSprite(Sprite{Name: "a", Size: image.Pt(16, 16), Hitbox: []Point{Pt(1, 1)}}, Red)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSprite(Sprite{Name: "b", Size: image.Pt(8, 8)}, White); err != nil {
		t.Fatal(err)
	}
	if s.Active() != a {
		t.Error("first sprite is not active")
	}
	if a.Len() != 1 {
		t.Errorf("initial hitbox not loaded: %v", a.Points())
	}
	if err := s.SetActive("b"); err != nil {
		t.Fatal(err)
	}
	if s.Active().Label() != "b" {
		t.Errorf("Active() = %q, want b", s.Active().Label())
	}
	if err := s.SetActive("missing"); !errors.Is(err, ErrNoActiveHitbox) {
		t.Errorf("SetActive(missing) = %v", err)
	}

	s.RemoveSprite("b")
	if s.Active() != a {
		t.Error("removing the active sprite did not fall back to the first")
	}
	if _, ok := s.Hitbox("b"); ok {
		t.Error("Hitbox(b) still present")
	}
	if !slices.Equal(ev.added, []string{"a", "b"}) || !slices.Equal(ev.removed, []string{"b"}) {
		t.Errorf("events added=%v removed=%v", ev.added, ev.removed)
	}

	late := &hitboxEvents{}
	s.Subscribe(late)
	if !slices.Equal(late.added, []string{"a"}) {
		t.Errorf("late subscriber saw %v, want [a]", late.added)
	}
}

func TestSessionReplaceSprite(t *testing.T) {
	tests := []struct {
		name       string
		activate   string
		wantActive string
	}{
		{"active sprite stays selected", "a", "a"},
		{"inactive sprite leaves selection", "b", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			for _, name := range []string{"a", "b"} {
				if _, err := s.AddSprite(Sprite{Name: name, Size: image.Pt(16, 16)}, Red); err != nil {
					t.Fatal(err)
				}
			}
			if err := s.SetActive(tt.activate); err != nil {
				t.Fatal(err)
			}

			replaced, err := s.AddSprite(Sprite{Name: "a", Size: image.Pt(32, 32)}, White)
			if err != nil {
				t.Fatal(err)
			}
			if got := s.Active().Label(); got != tt.wantActive {
				t.Errorf("Active() = %q, want %q", got, tt.wantActive)
			}
			if st, _ := s.Hitbox("a"); st != replaced {
				t.Error("Hitbox(a) is not the replacement store")
			}
			if tt.wantActive == "a" {
				if _, err := s.AddPointAt(Pt(400, 400)); err != nil {
					t.Fatalf("AddPointAt() = %v", err)
				}
				if replaced.Len() != 1 {
					t.Errorf("click edited another hitbox, replacement has %d points", replaced.Len())
				}
			}
		})
	}
}

func TestSessionAddPointAtCenter(t *testing.T) {
	s := newTestSession(t)
	st, err := s.AddSprite(Sprite{Name: "hero", Size: image.Pt(32, 32)}, Red)
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.AddPointAt(Pt(400, 400))
	if err != nil {
		t.Fatalf("AddPointAt() = %v", err)
	}
	if p != (Point{}) || !slices.Equal(st.Points(), []Point{{}}) {
		t.Errorf("AddPointAt(center) = %v, points %v", p, st.Points())
	}
	if _, err := s.AddPointAt(Pt(900, 400)); !errors.Is(err, ErrOutsideViewport) {
		t.Errorf("AddPointAt(outside) = %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("outside click added a point")
	}
}

func TestSessionAddPointAtWithoutHitbox(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.AddPointAt(Pt(1, 1)); !errors.Is(err, ErrNoActiveHitbox) {
		t.Errorf("AddPointAt() = %v, want ErrNoActiveHitbox", err)
	}
}

func TestSessionCloseReleasesBuffers(t *testing.T) {
	host := gpucore.NewHostAdapter()
	s := NewSession(WithAdapter(host))
	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.AddSprite(Sprite{Name: name}, Red); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.AddSprite(Sprite{Name: "b"}, White); err != nil {
		t.Fatal(err)
	}
	if host.BufferCount() != 6 {
		t.Errorf("BufferCount() = %d, want 6 after replacing b", host.BufferCount())
	}
	s.Close()
	if host.BufferCount() != 0 {
		t.Errorf("BufferCount() = %d after Close", host.BufferCount())
	}
	if len(s.Hitboxes()) != 0 {
		t.Errorf("Hitboxes() = %d after Close", len(s.Hitboxes()))
	}
}

func TestSessionCursorMarker(t *testing.T) {
	s := newTestSession(t)
	s.SetMouse(Pt(410.5, 399))
	m, ok := s.CursorMarker()
	if !ok {
		t.Fatal("CursorMarker() ok = false")
	}
	if m != Pt(410, 399) {
		t.Errorf("CursorMarker() = %v, want (410,399)", m)
	}
	s.SetMouse(Pt(-5, 0))
	if _, ok := s.CursorMarker(); ok {
		t.Error("CursorMarker() ok = true outside the panel")
	}
}
