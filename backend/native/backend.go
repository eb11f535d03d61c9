package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/hitbox/backend"
	"github.com/gogpu/hitbox/gpucore"
	"github.com/gogpu/wgpu/hal"
)

// halPriority is the order HAL backends are tried in. BackendEmpty is the
// noop backend and only opens when nothing else is linked in.
var halPriority = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
	gputypes.BackendEmpty,
}

func init() {
	backend.Register(backend.BackendNative, func() backend.Backend {
		return &Backend{}
	})
}

// Backend opens its own HAL device for headless use. Hosts that already
// own a device wrap it with NewHALAdapter instead.
//
// HAL implementations are linked by importing them, for example
// github.com/gogpu/wgpu/hal/noop or github.com/gogpu/wgpu/hal/allbackends.
type Backend struct {
	instance hal.Instance
	device   hal.Device
	adapter  *HALAdapter
	info     gputypes.AdapterInfo
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendNative }

// Init opens the first device offered by the registered HAL backends.
func (b *Backend) Init() error {
	if b.adapter != nil {
		return nil
	}
	for _, variant := range halPriority {
		api, ok := hal.GetBackend(variant)
		if !ok {
			continue
		}
		if err := b.open(api); err != nil {
			hitbox.Logger().Debug("native: backend unavailable", "backend", variant.String(), "error", err)
			continue
		}
		hitbox.Logger().Info("native: device opened", "backend", variant.String(), "adapter", b.info.Name)
		return nil
	}
	return backend.ErrBackendNotAvailable
}

func (b *Backend) open(api hal.Backend) error {
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("%w: no adapters", backend.ErrBackendNotAvailable)
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}
	a, err := NewHALAdapter(open.Device, open.Queue)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return err
	}
	b.instance = instance
	b.device = open.Device
	b.adapter = a
	b.info = adapters[0].Info
	return nil
}

// Close destroys the adapter's remaining resources, then the device.
func (b *Backend) Close() {
	if b.adapter != nil {
		b.adapter.Destroy()
		b.adapter = nil
	}
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
}

// Adapter returns the HAL adapter, or nil before Init.
func (b *Backend) Adapter() gpucore.Adapter {
	if b.adapter == nil {
		return nil
	}
	return b.adapter
}

// HALAdapter returns the concrete adapter, for use with render.NewPipeline.
func (b *Backend) HALAdapter() *HALAdapter { return b.adapter }

// Info describes the opened adapter.
func (b *Backend) Info() gputypes.AdapterInfo { return b.info }

var _ backend.Backend = (*Backend)(nil)
