package hitbox

import (
	"fmt"
	"image"

	"github.com/gogpu/hitbox/gpucore"
)

// Sprite is a decoded sprite as delivered by the host's asset loader.
type Sprite struct {
	// Name identifies the sprite and its hitbox within a session.
	Name string
	// Size is the sprite size in pixels.
	Size image.Point
	// Hitbox is the initial point list, relative to the sprite centre.
	Hitbox []Point
}

// HitboxObserver is told when a session gains or loses a hitbox. The render
// pipeline registers one to keep its overlay list in step.
type HitboxObserver interface {
	HitboxAdded(s *Store)
	HitboxRemoved(s *Store)
}

// Session is the editing state of one panel: the viewport, one Store per
// sprite, the active hitbox and the last known mouse position.
//
// Session is not safe for concurrent use.
type Session struct {
	opts      sessionOptions
	adapter   gpucore.Adapter
	viewport  *Viewport
	stores    map[string]*Store
	order     []string
	active    string
	mouse     Point
	observers []HitboxObserver
}

// NewSession creates an empty session.
func NewSession(opts ...SessionOption) *Session {
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(&o)
	}
	adapter := o.adapter
	if adapter == nil {
		adapter = gpucore.NewHostAdapter()
	}
	vp := NewViewport(o.zoom)
	vp.SetNudgeStep(o.nudgeStep)

	Logger().Info("hitbox: session created", "capacity", o.capacity, "zoom", vp.State().Zoom)
	return &Session{
		opts:     o,
		adapter:  adapter,
		viewport: vp,
		stores:   make(map[string]*Store),
	}
}

// Viewport returns the session viewport.
func (s *Session) Viewport() *Viewport { return s.viewport }

// Adapter returns the adapter that backs the point buffers.
func (s *Session) Adapter() gpucore.Adapter { return s.adapter }

// Subscribe registers o for hitbox additions and removals. Hitboxes that
// already exist are reported to o immediately.
func (s *Session) Subscribe(o HitboxObserver) {
	s.observers = append(s.observers, o)
	for _, name := range s.order {
		o.HitboxAdded(s.stores[name])
	}
}

// AddSprite creates the hitbox store for a sprite. The first sprite added
// becomes the active one. Adding a name twice replaces the old hitbox.
func (s *Session) AddSprite(sp Sprite, color RGBA) (*Store, error) {
	store, err := NewStore(s.adapter, StoreConfig{
		Label:      sp.Name,
		Capacity:   s.opts.capacity,
		Color:      color,
		SpriteSize: sp.Size,
		Initial:    sp.Hitbox,
	})
	if err != nil {
		return nil, fmt.Errorf("sprite %q: %w", sp.Name, err)
	}
	// A replaced sprite keeps its selection.
	wasActive := s.active == sp.Name
	if _, ok := s.stores[sp.Name]; ok {
		s.RemoveSprite(sp.Name)
	}
	s.stores[sp.Name] = store
	s.order = append(s.order, sp.Name)
	if s.active == "" || wasActive {
		s.active = sp.Name
	}
	for _, o := range s.observers {
		o.HitboxAdded(store)
	}
	return store, nil
}

// RemoveSprite drops a sprite's hitbox and releases its buffers.
func (s *Session) RemoveSprite(name string) {
	store, ok := s.stores[name]
	if !ok {
		return
	}
	for _, o := range s.observers {
		o.HitboxRemoved(store)
	}
	delete(s.stores, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == name {
		s.active = ""
		if len(s.order) > 0 {
			s.active = s.order[0]
		}
	}
	store.Release()
}

// SetActive selects the hitbox that edits apply to.
func (s *Session) SetActive(name string) error {
	if _, ok := s.stores[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNoActiveHitbox, name)
	}
	s.active = name
	return nil
}

// Active returns the active hitbox, or nil.
func (s *Session) Active() *Store {
	if s.active == "" {
		return nil
	}
	return s.stores[s.active]
}

// Hitbox returns the hitbox of a sprite.
func (s *Session) Hitbox(name string) (*Store, bool) {
	st, ok := s.stores[name]
	return st, ok
}

// Hitboxes returns all hitboxes in insertion order.
func (s *Session) Hitboxes() []*Store {
	out := make([]*Store, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.stores[name])
	}
	return out
}

// SetMouse records the last screen position of the pointer.
func (s *Session) SetMouse(p Point) { s.mouse = p }

// Mouse returns the last screen position of the pointer.
func (s *Session) Mouse() Point { return s.mouse }

// CursorMarker returns the panel-local position of the cursor marker.
func (s *Session) CursorMarker() (Point, bool) {
	return CursorMarker(s.mouse, s.viewport.State())
}

// AddPointAt maps a screen position into the active sprite and adds a point
// there. It returns ErrOutsideViewport for clicks outside the panel.
func (s *Session) AddPointAt(screen Point) (Point, error) {
	p, err := ScreenToSprite(screen, s.viewport.State())
	if err != nil {
		return Point{}, err
	}
	store := s.Active()
	if store == nil {
		return Point{}, ErrNoActiveHitbox
	}
	if err := store.AddPoint(p); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Close releases every hitbox.
func (s *Session) Close() {
	for len(s.order) > 0 {
		s.RemoveSprite(s.order[len(s.order)-1])
	}
}
