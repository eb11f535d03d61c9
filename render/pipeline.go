// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/hitbox/backend/native"
	"github.com/gogpu/hitbox/gpucore"
	"github.com/gogpu/hitbox/internal/gpu"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
)

// ErrPipelineDestroyed is returned by Draw after Destroy.
var ErrPipelineDestroyed = errors.New("render: pipeline destroyed")

// Surface is the host colour target the editor panel is composited into.
// Width and Height are needed to place the y-up panel rectangle.
type Surface struct {
	View   hal.TextureView
	Width  uint32
	Height uint32
}

// Pipeline renders the editor panel on the GPU.
//
// It observes the viewport for zoom, shift and panel changes and the
// session for hitboxes entering and leaving the editor. Each Draw records
// an offscreen pass (sprite, hitbox outlines and points, cursor marker)
// and composites it over the checkerboard into the panel rectangle.
//
// Thread Safety: Pipeline is NOT thread-safe. Use it from the render
// goroutine only.
type Pipeline struct {
	adapter *native.HALAdapter
	frame   *gpu.FrameRenderer

	state  hitbox.ViewportState
	cancel func()

	hitboxes []*hitbox.Store

	checker    gpucore.TextureID
	sprite     gpucore.TextureID
	spriteSize image.Point

	destroyed bool
}

var (
	_ hitbox.ViewportObserver = (*Pipeline)(nil)
	_ hitbox.HitboxObserver   = (*Pipeline)(nil)
)

// NewPipeline creates a GPU pipeline drawing into surfaces of the given
// format. Hitbox stores drawn by the pipeline must be allocated through
// the same adapter. The default checkerboard is uploaded immediately.
func NewPipeline(adapter *native.HALAdapter, viewport *hitbox.Viewport, surfaceFormat gputypes.TextureFormat) (*Pipeline, error) {
	if adapter == nil || viewport == nil {
		return nil, fmt.Errorf("render: NewPipeline requires an adapter and a viewport")
	}
	p := &Pipeline{
		adapter: adapter,
		frame:   gpu.NewFrameRenderer(adapter.Device(), adapter.Queue(), surfaceFormat),
		state:   viewport.State(),
	}
	if err := p.frame.SetViewport(p.state, hitbox.ChangeAll); err != nil {
		p.frame.Destroy()
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := p.SetCheckerboard(DefaultCheckerboard()); err != nil {
		p.frame.Destroy()
		return nil, err
	}
	p.cancel = viewport.Subscribe(p)
	return p, nil
}

// ViewportChanged implements hitbox.ViewportObserver. It marks the
// uniform blocks the change touches as stale and resizes the offscreen
// target when the panel size changed; Draw uploads nothing else.
func (p *Pipeline) ViewportChanged(state hitbox.ViewportState, change hitbox.Change) {
	p.state = state
	if change&hitbox.ChangePanel != 0 {
		hitbox.Logger().Debug("render: panel changed",
			"x", state.Position.X, "y", state.Position.Y,
			"width", state.Size.X, "height", state.Size.Y)
	}
	if err := p.frame.SetViewport(state, change); err != nil {
		hitbox.Logger().Warn("render: offscreen resize failed, retrying on next draw", "err", err)
	}
}

// HitboxAdded implements hitbox.HitboxObserver.
func (p *Pipeline) HitboxAdded(st *hitbox.Store) { p.AddHitbox(st) }

// HitboxRemoved implements hitbox.HitboxObserver.
func (p *Pipeline) HitboxRemoved(st *hitbox.Store) { p.RemoveHitbox(st) }

// AddHitbox adds a hitbox to the overlay. Adding the same store twice has
// no effect.
func (p *Pipeline) AddHitbox(st *hitbox.Store) {
	if st == nil {
		return
	}
	for _, h := range p.hitboxes {
		if h == st {
			return
		}
	}
	p.hitboxes = append(p.hitboxes, st)
}

// RemoveHitbox removes a hitbox from the overlay.
func (p *Pipeline) RemoveHitbox(st *hitbox.Store) {
	for i, h := range p.hitboxes {
		if h == st {
			p.hitboxes = append(p.hitboxes[:i], p.hitboxes[i+1:]...)
			return
		}
	}
}

// Hitboxes returns the hitboxes currently drawn, in draw order.
func (p *Pipeline) Hitboxes() []*hitbox.Store {
	return append([]*hitbox.Store(nil), p.hitboxes...)
}

// SetCheckerboard replaces the checkerboard tile texture.
func (p *Pipeline) SetCheckerboard(img image.Image) error {
	id, _, err := p.upload("checkerboard", img)
	if err != nil {
		return err
	}
	if p.checker != gpucore.InvalidID {
		p.adapter.DestroyTexture(p.checker)
	}
	p.checker = id
	return nil
}

// SetSprite replaces the sprite texture. A nil image removes the sprite
// and skips the sprite pass.
func (p *Pipeline) SetSprite(img image.Image) error {
	if img == nil {
		p.clearSprite()
		return nil
	}
	id, size, err := p.upload("sprite", img)
	if err != nil {
		return err
	}
	p.clearSprite()
	p.sprite = id
	p.spriteSize = size
	return nil
}

func (p *Pipeline) clearSprite() {
	if p.sprite != gpucore.InvalidID {
		p.adapter.DestroyTexture(p.sprite)
		p.sprite = gpucore.InvalidID
	}
	p.spriteSize = image.Point{}
}

func (p *Pipeline) upload(label string, img image.Image) (gpucore.TextureID, image.Point, error) {
	rgba := toRGBA(img)
	size := rgba.Bounds().Size()
	id, err := p.adapter.CreateTexture(label, size.X, size.Y, gpucore.TextureFormatRGBA8Unorm,
		gpucore.TextureUsageTextureBinding|gpucore.TextureUsageCopyDst)
	if err != nil {
		return gpucore.InvalidID, image.Point{}, fmt.Errorf("upload %s: %w", label, err)
	}
	if err := p.adapter.WriteTexture(id, rgba.Pix); err != nil {
		p.adapter.DestroyTexture(id)
		return gpucore.InvalidID, image.Point{}, fmt.Errorf("upload %s: %w", label, err)
	}
	return id, size, nil
}

// Draw renders one frame into dst. cursor is the screen position of the
// mouse; the marker is hidden while it is outside the panel.
func (p *Pipeline) Draw(dst Surface, cursor hitbox.Point) error {
	if p.destroyed {
		return ErrPipelineDestroyed
	}
	checker, ok := p.adapter.TextureView(p.checker)
	if !ok {
		return fmt.Errorf("render: checkerboard: %w", gpucore.ErrUnknownResource)
	}
	f := &gpu.Frame{Checker: checker}
	if p.sprite != gpucore.InvalidID {
		view, ok := p.adapter.TextureView(p.sprite)
		if !ok {
			return fmt.Errorf("render: sprite: %w", gpucore.ErrUnknownResource)
		}
		f.Sprite = view
		f.SpriteSize = p.spriteSize
	}

	draws, err := p.hitboxDraws()
	if err != nil {
		return err
	}
	f.Hitboxes = draws

	if cell, err := hitbox.ScreenToSprite(cursor, p.state); err == nil {
		f.Marker = &cell
	}

	return p.frame.Render(gpu.Surface{View: dst.View, Width: dst.Width, Height: dst.Height}, f)
}

// hitboxDraws resolves the point and index buffers of every hitbox with at
// least one point.
func (p *Pipeline) hitboxDraws() ([]gpu.HitboxDraw, error) {
	draws := make([]gpu.HitboxDraw, 0, len(p.hitboxes))
	for _, st := range p.hitboxes {
		n := st.Len()
		if n == 0 {
			continue
		}
		points, ok := p.adapter.Buffer(st.PointBuffer())
		if !ok {
			return nil, fmt.Errorf("render: hitbox %q points: %w", st.Label(), gpucore.ErrUnknownResource)
		}
		indices, ok := p.adapter.Buffer(st.IndexBuffer())
		if !ok {
			return nil, fmt.Errorf("render: hitbox %q indices: %w", st.Label(), gpucore.ErrUnknownResource)
		}
		draws = append(draws, gpu.HitboxDraw{
			Points:  points,
			Indices: indices,
			Count:   uint32(n), //nolint:gosec // bounded by store capacity
			Color:   st.Color(),
		})
	}
	return draws, nil
}

// Frames returns the number of frames submitted so far.
func (p *Pipeline) Frames() uint64 { return p.frame.Frames() }

// Destroy stops observing the viewport and releases all GPU resources the
// pipeline owns. Hitbox stores are left to their session.
func (p *Pipeline) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	if p.cancel != nil {
		p.cancel()
	}
	p.frame.Destroy()
	p.clearSprite()
	if p.checker != gpucore.InvalidID {
		p.adapter.DestroyTexture(p.checker)
		p.checker = gpucore.InvalidID
	}
	p.hitboxes = nil
}

// toRGBA returns img as a tightly packed *image.RGBA with a zero origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
