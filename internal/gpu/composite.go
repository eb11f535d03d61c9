//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/wgpu/hal"
)

// CompositeRenderer draws the offscreen frame over a repeating
// checkerboard into the panel rectangle of the host surface.
type CompositeRenderer struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	shader         hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipeLayout     hal.PipelineLayout
	pipeline       hal.RenderPipeline
	checkerSampler hal.Sampler
	frameSampler   hal.Sampler
	uniformBuf     hal.Buffer

	// bindGroup is rebuilt only when one of the bound views changes.
	bindGroup    hal.BindGroup
	boundChecker hal.TextureView
	boundFrame   hal.TextureView

	// current is true while uniformBuf holds the checker UV of the last
	// panel size and zoom.
	current bool
}

// NewCompositeRenderer creates a composite renderer targeting surfaces of
// the given format. Pipelines are created on first use.
func NewCompositeRenderer(device hal.Device, queue hal.Queue, format gputypes.TextureFormat) *CompositeRenderer {
	return &CompositeRenderer{device: device, queue: queue, format: format}
}

func (cr *CompositeRenderer) ensurePipeline() error {
	if cr.pipeline != nil {
		return nil
	}
	if err := cr.createPipeline(); err != nil {
		cr.Destroy()
		return err
	}
	return nil
}

func (cr *CompositeRenderer) createPipeline() error {
	shader, err := createShader(cr.device, "composite", compositeShaderSource)
	if err != nil {
		return err
	}
	cr.shader = shader

	bindLayout, err := cr.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "composite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniformLayoutEntry(0),
			textureLayoutEntry(1),
			samplerLayoutEntry(2),
			textureLayoutEntry(3),
			samplerLayoutEntry(4),
		},
	})
	if err != nil {
		return fmt.Errorf("create composite bind layout: %w", err)
	}
	cr.bindLayout = bindLayout

	pipeLayout, err := cr.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{cr.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create composite pipeline layout: %w", err)
	}
	cr.pipeLayout = pipeLayout

	if cr.checkerSampler, err = createNearestSampler(cr.device, "checker_sampler", gputypes.AddressModeRepeat); err != nil {
		return err
	}
	if cr.frameSampler, err = createNearestSampler(cr.device, "frame_sampler", gputypes.AddressModeClampToEdge); err != nil {
		return err
	}
	if cr.uniformBuf, err = createUniformBuffer(cr.device, "composite_uniforms", compositeUniformSize); err != nil {
		return err
	}

	pipeline, err := cr.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "composite_pipeline",
		Layout: cr.pipeLayout,
		Vertex: hal.VertexState{
			Module:     cr.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     cr.shader,
			EntryPoint: "fs_main",
			Targets:    colorTarget(cr.format),
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create composite pipeline: %w", err)
	}
	cr.pipeline = pipeline
	return nil
}

// prepare uploads the checker UV for the current viewport and binds the
// checkerboard and offscreen views.
func (cr *CompositeRenderer) prepare(state hitbox.ViewportState, checker, frame hal.TextureView) error {
	if err := cr.ensurePipeline(); err != nil {
		return err
	}
	if !cr.current {
		if err := cr.queue.WriteBuffer(cr.uniformBuf, 0, compositeUniforms(state)); err != nil {
			return fmt.Errorf("write composite uniforms: %w", err)
		}
		cr.current = true
	}
	if cr.bindGroup != nil && cr.boundChecker == checker && cr.boundFrame == frame {
		return nil
	}
	if cr.bindGroup != nil {
		cr.device.DestroyBindGroup(cr.bindGroup)
		cr.bindGroup = nil
	}
	bg, err := cr.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "composite_bind_group",
		Layout: cr.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: cr.uniformBuf.NativeHandle(), Size: compositeUniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: checker.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: cr.checkerSampler.NativeHandle()}},
			{Binding: 3, Resource: gputypes.TextureViewBinding{TextureView: frame.NativeHandle()}},
			{Binding: 4, Resource: gputypes.SamplerBinding{Sampler: cr.frameSampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("create composite bind group: %w", err)
	}
	cr.bindGroup = bg
	cr.boundChecker = checker
	cr.boundFrame = frame
	return nil
}

// invalidate marks the checker UV stale after a panel or zoom change.
func (cr *CompositeRenderer) invalidate() { cr.current = false }

// record draws the panel quad. The caller sets the viewport to the panel.
func (cr *CompositeRenderer) record(rp hal.RenderPassEncoder) {
	rp.SetPipeline(cr.pipeline)
	rp.SetBindGroup(0, cr.bindGroup, nil)
	rp.Draw(4, 1, 0, 0)
}

// Destroy releases all GPU resources in reverse creation order.
func (cr *CompositeRenderer) Destroy() {
	if cr.device == nil {
		return
	}
	if cr.bindGroup != nil {
		cr.device.DestroyBindGroup(cr.bindGroup)
		cr.bindGroup = nil
	}
	cr.boundChecker, cr.boundFrame = nil, nil
	cr.current = false
	if cr.uniformBuf != nil {
		cr.device.DestroyBuffer(cr.uniformBuf)
		cr.uniformBuf = nil
	}
	if cr.frameSampler != nil {
		cr.device.DestroySampler(cr.frameSampler)
		cr.frameSampler = nil
	}
	if cr.checkerSampler != nil {
		cr.device.DestroySampler(cr.checkerSampler)
		cr.checkerSampler = nil
	}
	if cr.pipeline != nil {
		cr.device.DestroyRenderPipeline(cr.pipeline)
		cr.pipeline = nil
	}
	if cr.pipeLayout != nil {
		cr.device.DestroyPipelineLayout(cr.pipeLayout)
		cr.pipeLayout = nil
	}
	if cr.bindLayout != nil {
		cr.device.DestroyBindGroupLayout(cr.bindLayout)
		cr.bindLayout = nil
	}
	if cr.shader != nil {
		cr.device.DestroyShaderModule(cr.shader)
		cr.shader = nil
	}
}
