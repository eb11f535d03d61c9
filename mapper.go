package hitbox

import "image"

// halfSize returns the panel half-size with integer division. Sprite
// coordinates have always been centred this way; odd panel sizes put the
// centre half a pixel left of and below the geometric centre.
func (s ViewportState) halfSize() Point {
	return PtI(image.Pt(s.Size.X/2, s.Size.Y/2))
}

// ScreenToSprite converts a screen coordinate to a sprite-local editing
// coordinate. It returns ErrOutsideViewport when the point is not within
// the panel.
//
// This is the only click-to-point conversion; CursorMarker and
// SpriteToScreen invert it exactly.
func ScreenToSprite(screen Point, s ViewportState) (Point, error) {
	if !s.Contains(screen) {
		return Point{}, ErrOutsideViewport
	}
	rel := screen.Sub(PtI(s.Position))
	centered := rel.Sub(s.halfSize()).Mul(s.Zoom)
	return centered.Add(s.Shift).Floor(), nil
}

// SpriteToScreen projects a sprite-local coordinate to the screen.
func SpriteToScreen(sprite Point, s ViewportState) Point {
	return sprite.Sub(s.Shift).Div(s.Zoom).Add(s.halfSize()).Add(PtI(s.Position))
}

// SpriteToPanel projects a sprite-local coordinate into panel-local pixels,
// the coordinate space of the offscreen target.
func SpriteToPanel(sprite Point, s ViewportState) Point {
	return sprite.Sub(s.Shift).Div(s.Zoom).Add(s.halfSize())
}

// CursorMarker returns the panel-local pixel position of the sprite cell
// under the screen cursor. ok is false when the cursor is outside the panel.
func CursorMarker(screen Point, s ViewportState) (marker Point, ok bool) {
	sprite, err := ScreenToSprite(screen, s)
	if err != nil {
		return Point{}, false
	}
	return SpriteToPanel(sprite, s), true
}
