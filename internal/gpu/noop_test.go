//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice opens a device on the noop backend. Commands are
// accepted and discarded, so tests check resource bookkeeping and
// recorded draw calls rather than pixels.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// countingQueue counts buffer writes.
type countingQueue struct {
	hal.Queue
	writes int
}

func (q *countingQueue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	q.writes++
	return q.Queue.WriteBuffer(buffer, offset, data)
}

// drawCall is one draw recorded by recordingPass.
type drawCall struct {
	pipeline hal.RenderPipeline
	indexed  bool
	count    uint32
	inst     uint32
	vertex   hal.Buffer
}

// recordingPass records the draw calls made through a render pass.
// Methods the renderers never call are left to the nil embedded encoder.
type recordingPass struct {
	hal.RenderPassEncoder

	pipeline hal.RenderPipeline
	vertex   hal.Buffer
	index    hal.Buffer
	groups   int
	draws    []drawCall
}

func (p *recordingPass) SetPipeline(pl hal.RenderPipeline)              { p.pipeline = pl }
func (p *recordingPass) SetBindGroup(uint32, hal.BindGroup, []uint32)   { p.groups++ }
func (p *recordingPass) SetVertexBuffer(_ uint32, b hal.Buffer, _ uint64) { p.vertex = b }
func (p *recordingPass) SetIndexBuffer(b hal.Buffer, _ gputypes.IndexFormat, _ uint64) {
	p.index = b
}

func (p *recordingPass) Draw(vertexCount, instanceCount, _, _ uint32) {
	p.draws = append(p.draws, drawCall{pipeline: p.pipeline, count: vertexCount, inst: instanceCount, vertex: p.vertex})
}

func (p *recordingPass) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, _ uint32) {
	p.draws = append(p.draws, drawCall{pipeline: p.pipeline, indexed: true, count: indexCount, inst: instanceCount, vertex: p.vertex})
}

func createTestBuffer(t *testing.T, device hal.Device, label string, size uint64, usage gputypes.BufferUsage) hal.Buffer {
	t.Helper()
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		t.Fatalf("CreateBuffer(%s) failed: %v", label, err)
	}
	t.Cleanup(func() { device.DestroyBuffer(buf) })
	return buf
}

func createTestView(t *testing.T, device hal.Device, w, h uint32) hal.TextureView {
	t.Helper()
	target := NewOffscreenTarget(device)
	if err := target.Resize(w, h); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	t.Cleanup(target.Destroy)
	return target.View()
}
