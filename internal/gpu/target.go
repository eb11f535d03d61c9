//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// offscreenFormat is the pixel format of the panel-sized offscreen target.
const offscreenFormat = gputypes.TextureFormatRGBA8Unorm

// OffscreenTarget is the panel-sized colour target the sprite and hitbox
// passes render into. It is sampled by the composite pass.
type OffscreenTarget struct {
	device hal.Device

	texture hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
}

// NewOffscreenTarget creates an empty target. Call Resize before use.
func NewOffscreenTarget(device hal.Device) *OffscreenTarget {
	return &OffscreenTarget{device: device}
}

// Size returns the current target size in pixels.
func (t *OffscreenTarget) Size() (uint32, uint32) { return t.width, t.height }

// View returns the texture view, or nil before the first Resize.
func (t *OffscreenTarget) View() hal.TextureView { return t.view }

// Resize reallocates the target when the size changes. The previous
// contents are discarded.
func (t *OffscreenTarget) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("offscreen target: invalid size %dx%d", width, height)
	}
	if t.texture != nil && t.width == width && t.height == height {
		return nil
	}
	t.Destroy()

	tex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label: "hitbox_offscreen",
		Size: hal.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        offscreenFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("create offscreen texture: %w", err)
	}
	view, err := t.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "hitbox_offscreen_view",
		Format:        offscreenFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.device.DestroyTexture(tex)
		return fmt.Errorf("create offscreen view: %w", err)
	}
	t.texture = tex
	t.view = view
	t.width = width
	t.height = height
	slogger().Debug("offscreen target resized", "width", width, "height", height)
	return nil
}

// Destroy releases the texture and its view.
func (t *OffscreenTarget) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
	t.width, t.height = 0, 0
}
