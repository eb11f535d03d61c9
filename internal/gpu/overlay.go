//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/wgpu/hal"
)

// HitboxDraw references the GPU-resident geometry of one hitbox.
type HitboxDraw struct {
	// Points is the point buffer: Count packed vec2<f32> values.
	Points hal.Buffer

	// Indices is the closed-loop index buffer: 0..Count-1 followed by 0.
	Indices hal.Buffer

	// Count is the number of points. Hitboxes with no points are skipped.
	Count uint32

	Color hitbox.RGBA
}

// overlaySlot is the per-draw uniform block and its bind group.
type overlaySlot struct {
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	// color is the colour last written; current is false once the
	// viewport has moved since that write.
	color   hitbox.RGBA
	current bool
}

// write uploads the block unless it already holds c for the current
// viewport.
func (s *overlaySlot) write(queue hal.Queue, state hitbox.ViewportState, c hitbox.RGBA, size float64) error {
	if s.current && s.color == c {
		return nil
	}
	if err := queue.WriteBuffer(s.uniformBuf, 0, overlayUniforms(state, c, size)); err != nil {
		return err
	}
	s.color = c
	s.current = true
	return nil
}

// OverlayRenderer draws hitbox outlines and points plus the cursor marker.
//
// Every hitbox is drawn twice from the same point buffer: once as a line
// strip through the closed-loop index buffer, and once as PointSize quads
// instanced per point. The marker is a single MarkerSize quad.
type OverlayRenderer struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	bindLayout    hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	linePipeline  hal.RenderPipeline
	pointPipeline hal.RenderPipeline

	slots     []overlaySlot
	marker    overlaySlot
	markerBuf hal.Buffer

	// MarkerColor is the colour of the cursor marker.
	MarkerColor hitbox.RGBA
}

// NewOverlayRenderer creates an overlay renderer. Pipelines are created on
// first use.
func NewOverlayRenderer(device hal.Device, queue hal.Queue) *OverlayRenderer {
	return &OverlayRenderer{device: device, queue: queue, MarkerColor: hitbox.OrangeRed}
}

func (ov *OverlayRenderer) ensurePipelines() error {
	if ov.pointPipeline != nil {
		return nil
	}
	if err := ov.createPipelines(); err != nil {
		ov.Destroy()
		return err
	}
	return nil
}

func (ov *OverlayRenderer) createPipelines() error {
	shader, err := createShader(ov.device, "overlay", overlayShaderSource)
	if err != nil {
		return err
	}
	ov.shader = shader

	bindLayout, err := ov.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "overlay_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformLayoutEntry(0)},
	})
	if err != nil {
		return fmt.Errorf("create overlay bind layout: %w", err)
	}
	ov.bindLayout = bindLayout

	pipeLayout, err := ov.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "overlay_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{ov.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create overlay pipeline layout: %w", err)
	}
	ov.pipeLayout = pipeLayout

	ov.linePipeline, err = ov.createPipeline("overlay_line_pipeline", "vs_line",
		gputypes.PrimitiveTopologyLineStrip, gputypes.VertexStepModeVertex)
	if err != nil {
		return err
	}
	ov.pointPipeline, err = ov.createPipeline("overlay_point_pipeline", "vs_point",
		gputypes.PrimitiveTopologyTriangleStrip, gputypes.VertexStepModeInstance)
	if err != nil {
		return err
	}
	return nil
}

func (ov *OverlayRenderer) createPipeline(label, entry string, topology gputypes.PrimitiveTopology, step gputypes.VertexStepMode) (hal.RenderPipeline, error) {
	pipeline, err := ov.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: ov.pipeLayout,
		Vertex: hal.VertexState{
			Module:     ov.shader,
			EntryPoint: entry,
			Buffers:    pointVertexLayout(step),
		},
		Fragment: &hal.FragmentState{
			Module:     ov.shader,
			EntryPoint: "fs_main",
			Targets:    colorTarget(offscreenFormat),
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

func (ov *OverlayRenderer) newSlot(label string) (overlaySlot, error) {
	buf, err := createUniformBuffer(ov.device, label, overlayUniformSize)
	if err != nil {
		return overlaySlot{}, err
	}
	bg, err := ov.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind_group",
		Layout: ov.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Size: overlayUniformSize}},
		},
	})
	if err != nil {
		ov.device.DestroyBuffer(buf)
		return overlaySlot{}, fmt.Errorf("create %s bind group: %w", label, err)
	}
	return overlaySlot{uniformBuf: buf, bindGroup: bg}, nil
}

// prepare uploads the stale uniform blocks of the drawable hitboxes and
// the marker vertex. Slots are pooled across frames.
func (ov *OverlayRenderer) prepare(state hitbox.ViewportState, draws []HitboxDraw, marker *hitbox.Point) error {
	if err := ov.ensurePipelines(); err != nil {
		return err
	}
	for len(ov.slots) < len(draws) {
		slot, err := ov.newSlot(fmt.Sprintf("overlay_uniforms_%d", len(ov.slots)))
		if err != nil {
			return err
		}
		ov.slots = append(ov.slots, slot)
	}
	for i := range draws {
		if draws[i].Count == 0 {
			continue
		}
		if err := ov.slots[i].write(ov.queue, state, draws[i].Color, PointSize); err != nil {
			return fmt.Errorf("write overlay uniforms: %w", err)
		}
	}
	if marker == nil {
		return nil
	}
	if ov.marker.bindGroup == nil {
		slot, err := ov.newSlot("marker_uniforms")
		if err != nil {
			return err
		}
		ov.marker = slot
	}
	if ov.markerBuf == nil {
		buf, err := ov.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "marker_vertex",
			Size:  hitbox.PointStride,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create marker vertex: %w", err)
		}
		ov.markerBuf = buf
	}
	if err := ov.marker.write(ov.queue, state, ov.MarkerColor, MarkerSize); err != nil {
		return fmt.Errorf("write marker uniforms: %w", err)
	}
	if err := ov.queue.WriteBuffer(ov.markerBuf, 0, pointVertex(*marker)); err != nil {
		return fmt.Errorf("write marker vertex: %w", err)
	}
	return nil
}

// invalidate marks every uniform block stale after a viewport change.
func (ov *OverlayRenderer) invalidate() {
	for i := range ov.slots {
		ov.slots[i].current = false
	}
	ov.marker.current = false
}

// recordHitboxes draws every hitbox with at least one point: the closed
// outline first, then its points on top.
func (ov *OverlayRenderer) recordHitboxes(rp hal.RenderPassEncoder, draws []HitboxDraw) {
	for i := range draws {
		d := &draws[i]
		if d.Count == 0 {
			continue
		}
		rp.SetPipeline(ov.linePipeline)
		rp.SetBindGroup(0, ov.slots[i].bindGroup, nil)
		rp.SetVertexBuffer(0, d.Points, 0)
		rp.SetIndexBuffer(d.Indices, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(d.Count+1, 1, 0, 0, 0)

		rp.SetPipeline(ov.pointPipeline)
		rp.Draw(4, d.Count, 0, 0)
	}
}

func (ov *OverlayRenderer) recordMarker(rp hal.RenderPassEncoder) {
	rp.SetPipeline(ov.pointPipeline)
	rp.SetBindGroup(0, ov.marker.bindGroup, nil)
	rp.SetVertexBuffer(0, ov.markerBuf, 0)
	rp.Draw(4, 1, 0, 0)
}

// Destroy releases all GPU resources in reverse creation order.
func (ov *OverlayRenderer) Destroy() {
	if ov.device == nil {
		return
	}
	if ov.markerBuf != nil {
		ov.device.DestroyBuffer(ov.markerBuf)
		ov.markerBuf = nil
	}
	ov.destroySlot(&ov.marker)
	for i := len(ov.slots) - 1; i >= 0; i-- {
		ov.destroySlot(&ov.slots[i])
	}
	ov.slots = nil
	if ov.pointPipeline != nil {
		ov.device.DestroyRenderPipeline(ov.pointPipeline)
		ov.pointPipeline = nil
	}
	if ov.linePipeline != nil {
		ov.device.DestroyRenderPipeline(ov.linePipeline)
		ov.linePipeline = nil
	}
	if ov.pipeLayout != nil {
		ov.device.DestroyPipelineLayout(ov.pipeLayout)
		ov.pipeLayout = nil
	}
	if ov.bindLayout != nil {
		ov.device.DestroyBindGroupLayout(ov.bindLayout)
		ov.bindLayout = nil
	}
	if ov.shader != nil {
		ov.device.DestroyShaderModule(ov.shader)
		ov.shader = nil
	}
}

func (ov *OverlayRenderer) destroySlot(s *overlaySlot) {
	if s.bindGroup != nil {
		ov.device.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	if s.uniformBuf != nil {
		ov.device.DestroyBuffer(s.uniformBuf)
		s.uniformBuf = nil
	}
	s.current = false
}
