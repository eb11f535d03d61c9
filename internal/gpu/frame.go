//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/wgpu/hal"
)

// Surface is the host colour target the panel is composited into.
type Surface struct {
	View   hal.TextureView
	Width  uint32
	Height uint32
}

// Frame is everything needed to record one editor frame. The viewport is
// not part of it; see FrameRenderer.SetViewport.
type Frame struct {
	// Checker is the checkerboard tile texture. Required.
	Checker hal.TextureView

	// Sprite is the sprite texture; nil skips the sprite pass.
	Sprite     hal.TextureView
	SpriteSize image.Point

	Hitboxes []HitboxDraw

	// Marker is the sprite-space cell under the cursor; nil hides it.
	Marker *hitbox.Point
}

// submission tracks a command buffer until the queue reports it complete.
type submission struct {
	index uint64
	cmd   hal.CommandBuffer
}

// FrameRenderer records the offscreen and composite passes of an editor
// frame and submits them.
type FrameRenderer struct {
	device hal.Device
	queue  hal.Queue

	target    *OffscreenTarget
	composite *CompositeRenderer
	sprite    *SpriteRenderer
	overlay   *OverlayRenderer

	// state is the last viewport passed to SetViewport. pending has
	// ChangePanel set until the offscreen target matches state.Size.
	state   hitbox.ViewportState
	pending hitbox.Change

	inFlight []submission
	frames   uint64
}

// NewFrameRenderer creates a frame renderer compositing into surfaces of
// the given format.
func NewFrameRenderer(device hal.Device, queue hal.Queue, surfaceFormat gputypes.TextureFormat) *FrameRenderer {
	return &FrameRenderer{
		device:    device,
		queue:     queue,
		target:    NewOffscreenTarget(device),
		composite: NewCompositeRenderer(device, queue, surfaceFormat),
		sprite:    NewSpriteRenderer(device, queue),
		overlay:   NewOverlayRenderer(device, queue),
	}
}

// Offscreen returns the panel-sized offscreen target.
func (r *FrameRenderer) Offscreen() *OffscreenTarget { return r.target }

// Overlay returns the hitbox overlay renderer.
func (r *FrameRenderer) Overlay() *OverlayRenderer { return r.overlay }

// Frames returns the number of frames submitted so far.
func (r *FrameRenderer) Frames() uint64 { return r.frames }

// SetViewport records a viewport change. Sprite and overlay uniforms go
// stale on any change, the checker UV on panel or zoom changes. A panel
// change resizes the offscreen target immediately; if that fails the
// resize is retried by the next Render.
func (r *FrameRenderer) SetViewport(state hitbox.ViewportState, change hitbox.Change) error {
	r.state = state
	if change == 0 {
		return nil
	}
	r.sprite.invalidate()
	r.overlay.invalidate()
	if change&(hitbox.ChangePanel|hitbox.ChangeZoom) != 0 {
		r.composite.invalidate()
	}
	if change&hitbox.ChangePanel != 0 {
		r.pending |= hitbox.ChangePanel
		return r.resize()
	}
	return nil
}

func (r *FrameRenderer) resize() error {
	if r.pending&hitbox.ChangePanel == 0 {
		return nil
	}
	w, h := uint32(r.state.Size.X), uint32(r.state.Size.Y) //nolint:gosec // panel size is clamped to >= 1
	if err := r.target.Resize(w, h); err != nil {
		return err
	}
	r.pending &^= hitbox.ChangePanel
	return nil
}

// Render records and submits one frame using the viewport from the last
// SetViewport. Only stale uniform blocks are uploaded. The panel rectangle
// is converted from the y-up editor convention to the surface's top-left
// origin.
func (r *FrameRenderer) Render(dst Surface, f *Frame) error {
	if dst.View == nil {
		return fmt.Errorf("render frame: nil surface view")
	}
	if f.Checker == nil {
		return fmt.Errorf("render frame: nil checkerboard view")
	}
	if r.target.View() == nil {
		r.pending |= hitbox.ChangePanel
	}
	if err := r.resize(); err != nil {
		return err
	}
	r.reclaim()

	state := r.state
	if f.Sprite != nil {
		if err := r.sprite.prepare(state, f.SpriteSize, f.Sprite); err != nil {
			return err
		}
	}
	if err := r.overlay.prepare(state, f.Hitboxes, f.Marker); err != nil {
		return err
	}
	if err := r.composite.prepare(state, f.Checker, r.target.View()); err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "hitbox_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("hitbox_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "hitbox_offscreen_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.target.View(),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	if f.Sprite != nil {
		r.sprite.record(rp)
	}
	r.overlay.recordHitboxes(rp, f.Hitboxes)
	if f.Marker != nil {
		r.overlay.recordMarker(rp)
	}
	rp.End()

	rp = encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "hitbox_composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    dst.View,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	x, y, sw, sh, ok := panelScissor(state, dst)
	if ok {
		top := float32(dst.Height) - float32(state.Position.Y) - float32(state.Size.Y)
		rp.SetViewport(float32(state.Position.X), top, float32(state.Size.X), float32(state.Size.Y), 0, 1)
		rp.SetScissorRect(x, y, sw, sh)
		r.composite.record(rp)
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	index, err := r.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		r.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("submit: %w", err)
	}
	r.inFlight = append(r.inFlight, submission{index: index, cmd: cmd})
	r.frames++
	return nil
}

// reclaim frees command buffers the queue has finished with.
func (r *FrameRenderer) reclaim() {
	if len(r.inFlight) == 0 {
		return
	}
	done := r.queue.PollCompleted()
	keep := r.inFlight[:0]
	for _, s := range r.inFlight {
		if s.index <= done {
			r.device.FreeCommandBuffer(s.cmd)
			continue
		}
		keep = append(keep, s)
	}
	r.inFlight = keep
}

// panelScissor returns the panel rectangle in surface pixels (top-left
// origin) clipped to the surface. ok is false when nothing is visible.
func panelScissor(s hitbox.ViewportState, dst Surface) (x, y, w, h uint32, ok bool) {
	surface := image.Rect(0, 0, int(dst.Width), int(dst.Height))
	top := int(dst.Height) - s.Position.Y - s.Size.Y
	r := image.Rect(s.Position.X, top, s.Position.X+s.Size.X, top+s.Size.Y).Intersect(surface)
	if r.Empty() {
		return 0, 0, 0, 0, false
	}
	//nolint:gosec // r is inside the surface, all values are non-negative
	return uint32(r.Min.X), uint32(r.Min.Y), uint32(r.Dx()), uint32(r.Dy()), true
}

// Destroy waits for the device to go idle and releases every resource.
func (r *FrameRenderer) Destroy() {
	if r.device == nil {
		return
	}
	if len(r.inFlight) > 0 {
		if err := r.device.WaitIdle(); err != nil {
			slogger().Warn("wait idle before destroy", "err", err)
		}
		for _, s := range r.inFlight {
			r.device.FreeCommandBuffer(s.cmd)
		}
		r.inFlight = nil
	}
	r.overlay.Destroy()
	r.sprite.Destroy()
	r.composite.Destroy()
	r.target.Destroy()
}
