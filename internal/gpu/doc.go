// Package gpu records the hitbox editor frame on a wgpu hal device.
//
// A frame is two render passes:
//
//	offscreen: clear -> sprite quad -> hitbox outlines + points -> cursor marker
//	composite: checkerboard (repeat, nearest) under the offscreen texture
//
// The offscreen target is sized to the panel and recreated when the panel
// size changes. Hitbox geometry is read straight from the point and index
// buffers owned by each hitbox store; nothing is re-uploaded per frame
// except small uniform blocks and the marker vertex.
//
// All renderers build their pipelines lazily on first use and release them
// in reverse creation order from Destroy.
package gpu
