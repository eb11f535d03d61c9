package hitbox

import (
	"image"
	"math"

	"github.com/gogpu/gpucontext"
)

// Default viewport parameters.
const (
	DefaultZoom      = 1.0 / 3.0
	DefaultNudgeStep = 16.0

	// zoomStep is the number of pixels of zoomed panel width removed per
	// scroll notch.
	zoomStep = 3
)

// Change is a bitmask describing which viewport fields a mutation touched.
type Change uint8

// Viewport change flags.
const (
	ChangePanel Change = 1 << iota
	ChangeZoom
	ChangeShift

	ChangeAll = ChangePanel | ChangeZoom | ChangeShift
)

// ViewportState is an immutable snapshot of the viewport. The coordinate
// mapper and all uniform builders take a snapshot, never the live Viewport.
type ViewportState struct {
	// Position is the bottom-left corner of the panel after the 1px inset.
	Position image.Point
	// Size is the panel size after the inset. Both components are >= 1.
	Size image.Point
	// Zoom maps panel pixels to sprite-local units. Always in (0, 2].
	Zoom float64
	// Shift is the pan offset in sprite-local units.
	Shift Point
}

// Contains reports whether p lies within [Position, Position+Size].
// Both edges are inclusive.
func (s ViewportState) Contains(p Point) bool {
	return p.X >= float64(s.Position.X) && p.X <= float64(s.Position.X+s.Size.X) &&
		p.Y >= float64(s.Position.Y) && p.Y <= float64(s.Position.Y+s.Size.Y)
}

// Rect returns the panel rectangle.
func (s ViewportState) Rect() image.Rectangle {
	return image.Rectangle{Min: s.Position, Max: s.Position.Add(s.Size)}
}

// ViewportObserver receives every viewport mutation. Observers are invoked
// synchronously, in registration order, after the state has been updated.
type ViewportObserver interface {
	ViewportChanged(state ViewportState, change Change)
}

// ViewportObserverFunc adapts a function to ViewportObserver.
type ViewportObserverFunc func(state ViewportState, change Change)

// ViewportChanged calls f(state, change).
func (f ViewportObserverFunc) ViewportChanged(state ViewportState, change Change) {
	f(state, change)
}

type observerEntry struct {
	id  int
	obs ViewportObserver
}

// Viewport holds the panel geometry and the pan/zoom transform of one
// editing session. Viewport is not safe for concurrent use; it belongs to
// the UI thread.
type Viewport struct {
	state     ViewportState
	nudgeStep float64
	observers []observerEntry
	nextObsID int
}

// NewViewport creates a viewport with a 1x1 panel at the origin.
// A zoom outside (0, 2] is replaced by DefaultZoom.
func NewViewport(zoom float64) *Viewport {
	if !(zoom > 0 && zoom <= 2) {
		zoom = DefaultZoom
	}
	return &Viewport{
		state: ViewportState{
			Size: image.Pt(1, 1),
			Zoom: zoom,
		},
		nudgeStep: DefaultNudgeStep,
	}
}

// State returns a snapshot of the current viewport.
func (v *Viewport) State() ViewportState {
	return v.state
}

// Subscribe registers o and returns a function that removes it.
func (v *Viewport) Subscribe(o ViewportObserver) (cancel func()) {
	id := v.nextObsID
	v.nextObsID++
	v.observers = append(v.observers, observerEntry{id: id, obs: o})
	return func() {
		for i, e := range v.observers {
			if e.id == id {
				v.observers = append(v.observers[:i], v.observers[i+1:]...)
				return
			}
		}
	}
}

func (v *Viewport) notify(change Change) {
	if change == 0 {
		return
	}
	for _, e := range v.observers {
		e.obs.ViewportChanged(v.state, change)
	}
}

// SetPanelRect applies a new host panel rectangle. The panel keeps a 1px
// border on every side, and its size never drops below 1x1.
func (v *Viewport) SetPanelRect(host image.Rectangle) {
	pos := host.Min.Add(image.Pt(1, 1))
	size := host.Size().Sub(image.Pt(2, 2))
	size.X = max(size.X, 1)
	size.Y = max(size.Y, 1)
	if pos == v.state.Position && size == v.state.Size {
		return
	}
	v.state.Position = pos
	v.state.Size = size
	v.notify(ChangePanel)
}

// SetZoom sets the zoom directly. Values outside (0, 2] are ignored.
func (v *Viewport) SetZoom(zoom float64) {
	if !(zoom > 0 && zoom <= 2) || zoom == v.state.Zoom {
		return
	}
	v.state.Zoom = zoom
	v.notify(ChangeZoom)
}

// SetShift sets the pan offset directly.
func (v *Viewport) SetShift(shift Point) {
	if shift == v.state.Shift {
		return
	}
	v.state.Shift = shift
	v.notify(ChangeShift)
}

// ApplyScrollZoom zooms about the cursor. It reports false, leaving the
// state untouched, when the cursor is outside the panel.
//
// The zoomed panel width shrinks by 3px per scroll notch and wraps modulo
// twice the panel width, so the zoom cycles through (0, 2]. A result of
// exactly zero becomes 2. The shift is corrected so the sprite point under
// the cursor stays put.
func (v *Viewport) ApplyScrollZoom(cursor Point, scrollDelta float64) bool {
	s := v.state
	if !s.Contains(cursor) {
		return false
	}
	rel := cursor.Sub(PtI(s.Position)).Sub(PtI(s.Size).Div(2))

	width := s.Size.X
	span := 2 * width
	n := int(math.Floor(float64(width)*s.Zoom)) - int(math.Floor(scrollDelta))*zoomStep
	n = ((n % span) + span) % span
	zoom := float64(n) / float64(width)
	if n == 0 {
		zoom = 2
	}

	change := Change(0)
	if zoom != s.Zoom {
		change |= ChangeZoom
	}
	shift := s.Shift.Add(rel.Mul(s.Zoom - zoom))
	if shift != s.Shift {
		change |= ChangeShift
	}
	v.state.Zoom = zoom
	v.state.Shift = shift
	v.notify(change)
	return true
}

// ApplyDragPan pans by a pointer drag delta while the middle button is held
// and the cursor is inside the panel. It reports whether the shift changed.
func (v *Viewport) ApplyDragPan(cursor, delta Point, buttons gpucontext.Buttons) bool {
	if !buttons.HasMiddle() || !v.state.Contains(cursor) {
		return false
	}
	if delta == (Point{}) {
		return false
	}
	v.state.Shift = v.state.Shift.Sub(delta.Mul(v.state.Zoom))
	v.notify(ChangeShift)
	return true
}

// NudgeDirection selects the axis and sign of a keyboard pan.
type NudgeDirection uint8

// Nudge directions.
const (
	NudgeUp NudgeDirection = iota
	NudgeDown
	NudgeLeft
	NudgeRight
)

// String returns the direction name.
func (d NudgeDirection) String() string {
	switch d {
	case NudgeUp:
		return "Up"
	case NudgeDown:
		return "Down"
	case NudgeLeft:
		return "Left"
	case NudgeRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// Nudge pans by one coarse step along a single axis.
func (v *Viewport) Nudge(d NudgeDirection) {
	var delta Point
	switch d {
	case NudgeUp:
		delta.Y = v.nudgeStep
	case NudgeDown:
		delta.Y = -v.nudgeStep
	case NudgeLeft:
		delta.X = -v.nudgeStep
	case NudgeRight:
		delta.X = v.nudgeStep
	default:
		return
	}
	v.state.Shift = v.state.Shift.Add(delta)
	v.notify(ChangeShift)
}

// SetNudgeStep changes the keyboard pan step. Non-positive values are ignored.
func (v *Viewport) SetNudgeStep(step float64) {
	if step > 0 {
		v.nudgeStep = step
	}
}
