package hitbox

import (
	"errors"

	"github.com/gogpu/gpucontext"
)

// State is the editor controller state.
type State uint8

// Controller states.
const (
	// StateIdle: clicks append points to the active hitbox.
	StateIdle State = iota
	// StatePanning: the pan button is held; clicks are ignored.
	StatePanning
	// StateInsertCursorActive: the active hitbox has an insert cursor;
	// clicks insert at the cursor.
	StateInsertCursorActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePanning:
		return "Panning"
	case StateInsertCursorActive:
		return "InsertCursorActive"
	default:
		return "Unknown"
	}
}

// Controller turns raw input into viewport and point store mutations.
//
// Screen coordinates use the panel rectangle's space: origin at the bottom
// left of the window, y growing upwards. Attach converts events from a
// gpucontext.EventSource, which reports y downwards.
//
// Controller is not safe for concurrent use; feed it from the UI thread.
type Controller struct {
	session *Session
	panning bool
	onClose func()

	// attach state
	windowHeight float64
	buttons      gpucontext.Buttons
	last         Point
	hasLast      bool
}

// NewController creates a controller driving s.
func NewController(s *Session) *Controller {
	return &Controller{session: s}
}

// Session returns the driven session.
func (c *Controller) Session() *Session { return c.session }

// OnClose sets the function called when the user asks to close the editor.
func (c *Controller) OnClose(fn func()) { c.onClose = fn }

// State returns the current state.
func (c *Controller) State() State {
	if c.panning {
		return StatePanning
	}
	if st := c.session.Active(); st != nil {
		if _, ok := st.InsertCursor(); ok {
			return StateInsertCursorActive
		}
	}
	return StateIdle
}

// SetInsertCursor sets the insert cursor of the active hitbox.
func (c *Controller) SetInsertCursor(index int) error {
	st := c.session.Active()
	if st == nil {
		return ErrNoActiveHitbox
	}
	return st.SetInsertCursor(index)
}

// ClearInsertCursor clears the insert cursor of the active hitbox.
func (c *Controller) ClearInsertCursor() {
	if st := c.session.Active(); st != nil {
		st.ClearInsertCursor()
	}
}

// KeyDown handles a key press. W and S nudge the view up and down, A and D
// left and right, Escape requests close.
func (c *Controller) KeyDown(key gpucontext.Key, _ gpucontext.Modifiers) {
	vp := c.session.Viewport()
	switch key {
	case gpucontext.KeyW:
		vp.Nudge(NudgeUp)
	case gpucontext.KeyS:
		vp.Nudge(NudgeDown)
	case gpucontext.KeyA:
		vp.Nudge(NudgeLeft)
	case gpucontext.KeyD:
		vp.Nudge(NudgeRight)
	case gpucontext.KeyEscape:
		if c.onClose != nil {
			c.onClose()
		}
	}
}

// Scroll zooms about (x, y) by the vertical scroll amount. It applies in
// every state.
func (c *Controller) Scroll(x, y, _, dy float64) {
	c.session.SetMouse(Pt(x, y))
	c.session.Viewport().ApplyScrollZoom(Pt(x, y), dy)
}

// Drag handles pointer motion with buttons held.
func (c *Controller) Drag(x, y, dx, dy float64, buttons gpucontext.Buttons, _ gpucontext.Modifiers) {
	c.session.SetMouse(Pt(x, y))
	c.session.Viewport().ApplyDragPan(Pt(x, y), Pt(dx, dy), buttons)
}

// Press handles a button press. The middle button starts panning; the left
// button adds a point to the active hitbox unless panning.
func (c *Controller) Press(x, y float64, button gpucontext.Button, _ gpucontext.Modifiers) {
	c.session.SetMouse(Pt(x, y))
	switch button {
	case gpucontext.ButtonMiddle:
		c.panning = true
	case gpucontext.ButtonLeft:
		if c.panning {
			return
		}
		p, err := c.session.AddPointAt(Pt(x, y))
		switch {
		case err == nil:
			Logger().Debug("hitbox: point added", "x", p.X, "y", p.Y)
		case errors.Is(err, ErrOutsideViewport):
			// Host events are window-wide.
		case errors.Is(err, ErrNoActiveHitbox):
			Logger().Warn("hitbox: click with no active hitbox")
		default:
			// Capacity and GPU errors are logged by the store.
		}
	}
}

// Release handles a button release.
func (c *Controller) Release(x, y float64, button gpucontext.Button, _ gpucontext.Modifiers) {
	c.session.SetMouse(Pt(x, y))
	if button == gpucontext.ButtonMiddle {
		c.panning = false
	}
}

// Move records the pointer position for the cursor marker.
func (c *Controller) Move(x, y float64) {
	c.session.SetMouse(Pt(x, y))
}

// SetWindowHeight sets the window height attached events are flipped
// against. Resize events replace it.
func (c *Controller) SetWindowHeight(height int) {
	c.windowHeight = float64(height)
}

// Attach subscribes the controller to a host event source. Window
// coordinates are flipped to y-up using the window height: taken from the
// source when it also implements gpucontext.WindowProvider, otherwise from
// SetWindowHeight, and updated by every resize.
// Sources that also implement gpucontext.ScrollEventSource deliver scroll
// positions directly; otherwise the last pointer position is used.
func (c *Controller) Attach(src gpucontext.EventSource) {
	if wp, ok := src.(gpucontext.WindowProvider); ok {
		_, height := wp.Size()
		c.SetWindowHeight(height)
	}
	src.OnResize(func(_, height int) {
		c.windowHeight = float64(height)
	})
	src.OnKeyPress(c.KeyDown)
	src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
		btn, mask := convertMouseButton(b)
		c.buttons |= mask
		p := c.flip(x, y)
		c.last, c.hasLast = p, true
		c.Press(p.X, p.Y, btn, 0)
	})
	src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
		btn, mask := convertMouseButton(b)
		c.buttons &^= mask
		p := c.flip(x, y)
		c.last, c.hasLast = p, true
		c.Release(p.X, p.Y, btn, 0)
	})
	src.OnMouseMove(func(x, y float64) {
		p := c.flip(x, y)
		if c.buttons != gpucontext.ButtonsNone && c.hasLast {
			d := p.Sub(c.last)
			c.Drag(p.X, p.Y, d.X, d.Y, c.buttons, 0)
		} else {
			c.Move(p.X, p.Y)
		}
		c.last, c.hasLast = p, true
	})
	if ss, ok := src.(gpucontext.ScrollEventSource); ok {
		ss.OnScrollEvent(func(ev gpucontext.ScrollEvent) {
			p := c.flip(ev.X, ev.Y)
			c.Scroll(p.X, p.Y, ev.DeltaX, -ev.DeltaY)
		})
		return
	}
	src.OnScroll(func(dx, dy float64) {
		c.Scroll(c.last.X, c.last.Y, dx, -dy)
	})
}

func (c *Controller) flip(x, y float64) Point {
	return Pt(x, c.windowHeight-y)
}

func convertMouseButton(b gpucontext.MouseButton) (gpucontext.Button, gpucontext.Buttons) {
	switch b {
	case gpucontext.MouseButtonLeft:
		return gpucontext.ButtonLeft, gpucontext.ButtonsLeft
	case gpucontext.MouseButtonMiddle:
		return gpucontext.ButtonMiddle, gpucontext.ButtonsMiddle
	case gpucontext.MouseButtonRight:
		return gpucontext.ButtonRight, gpucontext.ButtonsRight
	case gpucontext.MouseButton4:
		return gpucontext.ButtonX1, gpucontext.ButtonsX1
	case gpucontext.MouseButton5:
		return gpucontext.ButtonX2, gpucontext.ButtonsX2
	default:
		return gpucontext.ButtonNone, gpucontext.ButtonsNone
	}
}
