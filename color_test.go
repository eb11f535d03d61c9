package hitbox

import (
	"image/color"
	"testing"
)

func TestRGBA_ColorRoundtrip(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		want color.NRGBA
	}{
		{"white", White, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{"orange red", OrangeRed, color.NRGBA{R: 255, G: 69, B: 0, A: 255}},
		{"transparent", Transparent, color.NRGBA{}},
		{"clamped", RGBA{R: 2, G: -1, B: 0.5, A: 1}, color.NRGBA{R: 255, G: 0, B: 127, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Color().(color.NRGBA)
			if got != tt.want {
				t.Errorf("Color() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromColor(t *testing.T) {
	c := FromColor(color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	if c != Red {
		t.Errorf("FromColor(red) = %v, want %v", c, Red)
	}
}

func TestRGBA_Premultiply(t *testing.T) {
	c := RGBA{R: 1, G: 0.5, B: 0, A: 0.5}.Premultiply()
	want := RGBA{R: 0.5, G: 0.25, B: 0, A: 0.5}
	if c != want {
		t.Errorf("Premultiply() = %v, want %v", c, want)
	}
}

func TestRGBA_Float32(t *testing.T) {
	got := RGB(1, 0, 0.5).Float32()
	want := [4]float32{1, 0, 0.5, 1}
	if got != want {
		t.Errorf("Float32() = %v, want %v", got, want)
	}
}
