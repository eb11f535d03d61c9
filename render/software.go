// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/hitbox/internal/gpu"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Software is a CPU compositor producing the same layering as Pipeline:
// sprite, hitbox outlines, hitbox points and cursor marker in an offscreen
// image, composited over the repeating checkerboard.
//
// It needs no GPU and is used for snapshots and headless hosts.
//
// Example:
//
//	sw := render.NewSoftware()
//	sw.SetSprite(spriteImage)
//	dst := image.NewRGBA(image.Rect(0, 0, 800, 600))
//	sw.Render(dst, session.Viewport().State(), session.Hitboxes(), session.Mouse())
type Software struct {
	checker *image.RGBA
	sprite  image.Image

	// MarkerColor is the colour of the cursor marker.
	MarkerColor hitbox.RGBA
}

// NewSoftware creates a software compositor with the default checkerboard.
func NewSoftware() *Software {
	return &Software{
		checker:     DefaultCheckerboard(),
		MarkerColor: hitbox.OrangeRed,
	}
}

// SetCheckerboard replaces the checkerboard tile texture.
func (r *Software) SetCheckerboard(img image.Image) {
	if img == nil {
		r.checker = DefaultCheckerboard()
		return
	}
	r.checker = toRGBA(img)
}

// SetSprite replaces the sprite. A nil image removes it.
func (r *Software) SetSprite(img image.Image) { r.sprite = img }

// Render composites the panel into dst, a window-sized image. The y-up
// panel rectangle is flipped into dst's top-left coordinates; the panel is
// clipped to dst.
func (r *Software) Render(dst *image.RGBA, state hitbox.ViewportState, hitboxes []*hitbox.Store, cursor hitbox.Point) error {
	if dst == nil {
		return errors.New("render: nil destination")
	}
	panel := r.RenderPanel(state, hitboxes, cursor)
	h := dst.Bounds().Dy()
	top := h - state.Position.Y - state.Size.Y
	rect := image.Rect(state.Position.X, top, state.Position.X+state.Size.X, top+state.Size.Y).
		Add(dst.Bounds().Min)
	draw.Draw(dst, rect, panel, image.Point{}, draw.Src)
	return nil
}

// RenderPanel returns the composited panel image, panel-sized.
func (r *Software) RenderPanel(state hitbox.ViewportState, hitboxes []*hitbox.Store, cursor hitbox.Point) *image.RGBA {
	frame := r.RenderOffscreen(state, hitboxes, cursor)
	panel := r.checkerLayer(state)
	draw.Draw(panel, panel.Bounds(), frame, image.Point{}, draw.Over)
	return panel
}

// RenderOffscreen returns the transparent offscreen layer: sprite, hitbox
// outlines and points, then the cursor marker.
func (r *Software) RenderOffscreen(state hitbox.ViewportState, hitboxes []*hitbox.Store, cursor hitbox.Point) *image.RGBA {
	w, h := state.Size.X, state.Size.Y
	frame := image.NewRGBA(image.Rect(0, 0, w, h))

	if r.sprite != nil {
		r.drawSprite(frame, state)
	}

	dc := gg.NewContextForRGBA(frame)
	for _, st := range hitboxes {
		if st.Len() == 0 {
			continue
		}
		drawHitbox(dc, state, st)
	}

	if m, ok := hitbox.CursorMarker(cursor, state); ok {
		x, y := toImage(m, h)
		dc.SetColor(r.MarkerColor.Color())
		dc.DrawRectangle(math.Floor(x), math.Floor(y)-gpu.MarkerSize, gpu.MarkerSize, gpu.MarkerSize)
		dc.Fill()
	}
	return frame
}

// drawSprite maps sprite texels into the frame with nearest-neighbour
// sampling. The sprite is centred on the sprite origin; texel rows run
// top-down while sprite units run bottom-up.
func (r *Software) drawSprite(frame *image.RGBA, state hitbox.ViewportState) {
	b := r.sprite.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())
	half := hitbox.PtI(image.Pt(state.Size.X/2, state.Size.Y/2))
	inv := 1 / state.Zoom
	fh := float64(state.Size.Y)

	// frame.x = u/zoom + half.x - (sw/2 + shift.x)/zoom
	// frame.y = v/zoom + H - half.y - (sh/2 - shift.y)/zoom
	aff := f64.Aff3{
		inv, 0, half.X - (sw/2+state.Shift.X)*inv - float64(b.Min.X)*inv,
		0, inv, fh - half.Y - (sh/2-state.Shift.Y)*inv - float64(b.Min.Y)*inv,
	}
	draw.NearestNeighbor.Transform(frame, aff, r.sprite, b, draw.Over, nil)
}

// drawHitbox strokes the closed outline in the hitbox colour, then fills a
// PointSize square on every point.
func drawHitbox(dc *gg.Context, state hitbox.ViewportState, st *hitbox.Store) {
	h := state.Size.Y
	pts := st.Points()
	dc.SetColor(st.Color().Color())
	dc.SetLineWidth(1)
	for i, p := range pts {
		x, y := toImage(hitbox.SpriteToPanel(p, state), h)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.Stroke()

	half := gpu.PointSize / 2
	for _, p := range pts {
		x, y := toImage(hitbox.SpriteToPanel(p, state), h)
		dc.DrawRectangle(x-half, y-half, gpu.PointSize, gpu.PointSize)
	}
	dc.Fill()
}

// checkerLayer tiles the checkerboard across the panel with UV scale
// CheckerUV and nearest sampling, matching the composite shader.
func (r *Software) checkerLayer(state hitbox.ViewportState) *image.RGBA {
	w, h := state.Size.X, state.Size.Y
	panel := image.NewRGBA(image.Rect(0, 0, w, h))
	uv := gpu.CheckerUV(state)
	cb := r.checker.Bounds()
	tw, th := float64(cb.Dx()), float64(cb.Dy())
	for y := 0; y < h; y++ {
		v := (float64(y) + 0.5) / float64(h) * uv.Y
		ty := cb.Min.Y + wrap(v, th)
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / float64(w) * uv.X
			tx := cb.Min.X + wrap(u, tw)
			panel.SetRGBA(x, y, r.checker.RGBAAt(tx, ty))
		}
	}
	return panel
}

// wrap maps a repeating texture coordinate to a texel index.
func wrap(t, size float64) int {
	f := t - math.Floor(t)
	i := int(f * size)
	if i >= int(size) {
		i = int(size) - 1
	}
	return i
}

// toImage converts a y-up panel coordinate to top-down image coordinates.
func toImage(p hitbox.Point, height int) (float64, float64) {
	return p.X, float64(height) - p.Y
}
