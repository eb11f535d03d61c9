// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/hitbox/backend/native"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The editor RECEIVES the device from the host, it does NOT create one.
// Hitbox buffers, the offscreen target and the panel composite all live on
// the host's device and are drawn into the host's surface.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNoHAL is returned when a device provider does not expose wgpu hal
// objects.
var ErrNoHAL = errors.New("render: provider does not expose HAL types")

// halDevice extracts the hal device and queue from a provider. The provider
// must implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue, as gogpu's context does.
func halDevice(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return device, queue, nil
}

// NewAdapter builds the GPU resource adapter hitbox stores allocate their
// buffers through, on the host's shared device.
//
//	adapter, err := render.NewAdapter(gc.DeviceHandle())
//	session := hitbox.NewSession(hitbox.WithAdapter(adapter))
func NewAdapter(handle DeviceHandle) (*native.HALAdapter, error) {
	device, queue, err := halDevice(handle)
	if err != nil {
		return nil, err
	}
	return native.NewHALAdapter(device, queue)
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns an empty description for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
