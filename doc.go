// Package hitbox provides the editing core of a polygonal hitbox editor for
// 2D sprites.
//
// # Overview
//
// A hitbox is an ordered polygon of sprite-local points. The editor shows a
// sprite inside a panel of a host GUI, lets the user pan and zoom, and turns
// clicks into points. Points live in a fixed-capacity [Store] that mirrors
// its CPU arena into GPU vertex and index buffers, so the overlay renderer
// in package render can draw straight from GPU memory.
//
// # Quick Start
//
//	s := hitbox.NewSession()
//	s.Viewport().SetPanelRect(image.Rect(0, 0, 802, 802))
//	s.AddSprite(hitbox.Sprite{Name: "hero", Size: image.Pt(64, 64)}, hitbox.Red)
//
//	c := hitbox.NewController(s)
//	c.Attach(app.EventSource()) // gpucontext.EventSource
//
// # Architecture
//
// The package is organized into:
//   - [Viewport]: panel geometry, zoom and pan, with explicit observers
//   - [ScreenToSprite] / [SpriteToScreen]: the coordinate mapper
//   - [Store]: CPU/GPU mirrored point list with an insert cursor
//   - [Session]: sprites, hitboxes, the active hitbox and the mouse
//   - [Controller]: input policy and the Idle/Panning/InsertCursorActive
//     state machine
//
// GPU resources go through [gpucore.Adapter]; see backend/native for the
// wgpu implementation and render for the draw passes.
//
// # Coordinate System
//
// Screen coordinates follow the host panel rectangle:
//   - Origin (0,0) at the bottom-left of the window
//   - X increases right
//   - Y increases up
//
// Sprite coordinates are centred on the sprite, in sprite pixels.
package hitbox
