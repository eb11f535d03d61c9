package gpu

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/gogpu/hitbox"
)

const (
	// PointSize is the on-screen edge length of a hitbox point in pixels.
	PointSize = 4.0

	// MarkerSize is the on-screen edge length of the cursor marker in pixels.
	MarkerSize = 1.0

	// CheckerDivisor is the checkerboard tile size in panel pixels at zoom 1.
	CheckerDivisor = 32.0
)

// Uniform block sizes in bytes, matching the WGSL struct layouts.
const (
	compositeUniformSize = 16
	spriteUniformSize    = 32
	overlayUniformSize   = 48
)

// CheckerUV returns the checkerboard UV scale for the composite pass:
// panel size / 32 * zoom on each axis.
func CheckerUV(s hitbox.ViewportState) hitbox.Point {
	return hitbox.Pt(
		float64(s.Size.X)/CheckerDivisor*s.Zoom,
		float64(s.Size.Y)/CheckerDivisor*s.Zoom,
	)
}

// compositeUniforms packs the composite block:
//
//	checker_uv (vec2<f32>) offset 0
//	pad        (vec2<f32>) offset 8
func compositeUniforms(s hitbox.ViewportState) []byte {
	buf := make([]byte, compositeUniformSize)
	uv := CheckerUV(s)
	putVec2(buf, 0, uv.X, uv.Y)
	return buf
}

// spriteUniforms packs the sprite block:
//
//	panel_size  (vec2<f32>) offset 0
//	shift       (vec2<f32>) offset 8
//	sprite_size (vec2<f32>) offset 16
//	zoom        (f32)       offset 24
func spriteUniforms(s hitbox.ViewportState, spriteSize image.Point) []byte {
	buf := make([]byte, spriteUniformSize)
	putVec2(buf, 0, float64(s.Size.X), float64(s.Size.Y))
	putVec2(buf, 8, s.Shift.X, s.Shift.Y)
	putVec2(buf, 16, float64(spriteSize.X), float64(spriteSize.Y))
	putF32(buf, 24, s.Zoom)
	return buf
}

// overlayUniforms packs the overlay block:
//
//	panel_size (vec2<f32>) offset 0
//	shift      (vec2<f32>) offset 8
//	color      (vec4<f32>) offset 16
//	zoom       (f32)       offset 32
//	point_size (f32)       offset 36
func overlayUniforms(s hitbox.ViewportState, color hitbox.RGBA, pointSize float64) []byte {
	buf := make([]byte, overlayUniformSize)
	putVec2(buf, 0, float64(s.Size.X), float64(s.Size.Y))
	putVec2(buf, 8, s.Shift.X, s.Shift.Y)
	c := color.Float32()
	for i, v := range c {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	putF32(buf, 32, s.Zoom)
	putF32(buf, 36, pointSize)
	return buf
}

// pointVertex packs a single sprite-space point the way hitbox stores do.
func pointVertex(p hitbox.Point) []byte {
	buf := make([]byte, hitbox.PointStride)
	putVec2(buf, 0, p.X, p.Y)
	return buf
}

func putVec2(buf []byte, off int, x, y float64) {
	putF32(buf, off, x)
	putF32(buf, off+4, y)
}

func putF32(buf []byte, off int, v float64) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
}
