// Package native implements gpucore.Adapter on top of gogpu/wgpu's HAL.
//
// HALAdapter receives the device and queue from the host application and
// never creates a device of its own. The render package looks up the hal
// resources behind gpucore IDs through [HALAdapter.Buffer] and
// [HALAdapter.TextureView] when it records draw passes.
//
// Importing the package also registers the "native" backend with the
// backend registry. That backend opens a device itself and is meant for
// headless tools and tests.
package native
