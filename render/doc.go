// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws the hitbox editor panel.
//
// # Key Principle
//
// The editor RECEIVES a GPU device from the host application, it does NOT
// create its own. The host hands over a [DeviceHandle]; [NewAdapter] wraps
// it in a HAL adapter that both the hitbox stores and the [Pipeline] use.
//
// # GPU Path
//
//	adapter, err := render.NewAdapter(app.DeviceHandle())
//	session := hitbox.NewSession(hitbox.WithAdapter(adapter))
//	pipeline, err := render.NewPipeline(adapter, session.Viewport(), surfaceFormat)
//	session.Subscribe(pipeline)
//
//	// every frame
//	err = pipeline.Draw(render.Surface{View: view, Width: w, Height: h}, session.Mouse())
//
// Draw records two passes. The offscreen pass clears a panel-sized texture
// and draws the sprite, every non-empty hitbox (outline loop then points)
// and the cursor marker. The composite pass tiles the checkerboard across
// the panel rectangle and blends the offscreen texture over it.
//
// # Software Path
//
// [Software] produces the same layering into an *image.RGBA. It needs no
// device and reads hitbox points from the stores' CPU mirrors, so it works
// with any adapter. Command line tools and tests use it.
package render
