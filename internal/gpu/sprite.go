//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/wgpu/hal"
)

// SpriteRenderer draws the edited sprite as a textured quad centred on the
// sprite origin, scaled and panned by the viewport.
type SpriteRenderer struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
	uniformBuf hal.Buffer

	bindGroup hal.BindGroup
	boundView hal.TextureView

	// current is true while uniformBuf holds the block for the last
	// viewport and uploadedSize.
	current      bool
	uploadedSize image.Point
}

// NewSpriteRenderer creates a sprite renderer. Pipelines are created on
// first use.
func NewSpriteRenderer(device hal.Device, queue hal.Queue) *SpriteRenderer {
	return &SpriteRenderer{device: device, queue: queue}
}

func (sr *SpriteRenderer) ensurePipeline() error {
	if sr.pipeline != nil {
		return nil
	}
	if err := sr.createPipeline(); err != nil {
		sr.Destroy()
		return err
	}
	return nil
}

func (sr *SpriteRenderer) createPipeline() error {
	shader, err := createShader(sr.device, "sprite", spriteShaderSource)
	if err != nil {
		return err
	}
	sr.shader = shader

	bindLayout, err := sr.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformLayoutEntry(0),
			textureLayoutEntry(1),
			samplerLayoutEntry(2),
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite bind layout: %w", err)
	}
	sr.bindLayout = bindLayout

	pipeLayout, err := sr.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{sr.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline layout: %w", err)
	}
	sr.pipeLayout = pipeLayout

	if sr.sampler, err = createNearestSampler(sr.device, "sprite_sampler", gputypes.AddressModeClampToEdge); err != nil {
		return err
	}
	if sr.uniformBuf, err = createUniformBuffer(sr.device, "sprite_uniforms", spriteUniformSize); err != nil {
		return err
	}

	pipeline, err := sr.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "sprite_pipeline",
		Layout: sr.pipeLayout,
		Vertex: hal.VertexState{
			Module:     sr.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     sr.shader,
			EntryPoint: "fs_main",
			Targets:    colorTarget(offscreenFormat),
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline: %w", err)
	}
	sr.pipeline = pipeline
	return nil
}

func (sr *SpriteRenderer) prepare(state hitbox.ViewportState, size image.Point, view hal.TextureView) error {
	if err := sr.ensurePipeline(); err != nil {
		return err
	}
	if !sr.current || sr.uploadedSize != size {
		if err := sr.queue.WriteBuffer(sr.uniformBuf, 0, spriteUniforms(state, size)); err != nil {
			return fmt.Errorf("write sprite uniforms: %w", err)
		}
		sr.current = true
		sr.uploadedSize = size
	}
	if sr.bindGroup != nil && sr.boundView == view {
		return nil
	}
	if sr.bindGroup != nil {
		sr.device.DestroyBindGroup(sr.bindGroup)
		sr.bindGroup = nil
	}
	bg, err := sr.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sprite_bind_group",
		Layout: sr.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: sr.uniformBuf.NativeHandle(), Size: spriteUniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: sr.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite bind group: %w", err)
	}
	sr.bindGroup = bg
	sr.boundView = view
	return nil
}

// invalidate marks the uniform block stale after a viewport change.
func (sr *SpriteRenderer) invalidate() { sr.current = false }

func (sr *SpriteRenderer) record(rp hal.RenderPassEncoder) {
	rp.SetPipeline(sr.pipeline)
	rp.SetBindGroup(0, sr.bindGroup, nil)
	rp.Draw(4, 1, 0, 0)
}

// Destroy releases all GPU resources in reverse creation order.
func (sr *SpriteRenderer) Destroy() {
	if sr.device == nil {
		return
	}
	if sr.bindGroup != nil {
		sr.device.DestroyBindGroup(sr.bindGroup)
		sr.bindGroup = nil
	}
	sr.boundView = nil
	sr.current = false
	if sr.pipeline != nil {
		sr.device.DestroyRenderPipeline(sr.pipeline)
		sr.pipeline = nil
	}
	if sr.uniformBuf != nil {
		sr.device.DestroyBuffer(sr.uniformBuf)
		sr.uniformBuf = nil
	}
	if sr.sampler != nil {
		sr.device.DestroySampler(sr.sampler)
		sr.sampler = nil
	}
	if sr.pipeLayout != nil {
		sr.device.DestroyPipelineLayout(sr.pipeLayout)
		sr.pipeLayout = nil
	}
	if sr.bindLayout != nil {
		sr.device.DestroyBindGroupLayout(sr.bindLayout)
		sr.bindLayout = nil
	}
	if sr.shader != nil {
		sr.device.DestroyShaderModule(sr.shader)
		sr.shader = nil
	}
}
