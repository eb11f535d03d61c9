// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
)

// CheckerboardSize is the edge length of the default checkerboard texture.
const CheckerboardSize = 32

// Default checkerboard tones.
var (
	CheckerLight = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	CheckerDark  = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xFF}
)

// Checkerboard returns a size x size texture of 2x2 alternating tiles.
// The composite pass repeats it across the panel.
func Checkerboard(size int, light, dark color.Color) *image.RGBA {
	if size < 2 {
		size = 2
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := light
			if (x < half) != (y < half) {
				c = dark
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// DefaultCheckerboard returns the 32x32 checkerboard used when the host
// supplies none.
func DefaultCheckerboard() *image.RGBA {
	return Checkerboard(CheckerboardSize, CheckerLight, CheckerDark)
}
