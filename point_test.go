package hitbox

import (
	"image"
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	p := Pt(3, 4)
	q := Pt(1, -2)

	if got := p.Add(q); got != Pt(4, 2) {
		t.Errorf("Add = %v, want (4,2)", got)
	}
	if got := p.Sub(q); got != Pt(2, 6) {
		t.Errorf("Sub = %v, want (2,6)", got)
	}
	if got := p.Mul(2); got != Pt(6, 8) {
		t.Errorf("Mul = %v, want (6,8)", got)
	}
	if got := p.Div(2); got != Pt(1.5, 2) {
		t.Errorf("Div = %v, want (1.5,2)", got)
	}
	if got := p.Distance(Point{}); math.Abs(got-5) > 1e-12 {
		t.Errorf("Distance = %v, want 5", got)
	}
	if got := p.Lerp(q, 0.5); got != Pt(2, 1) {
		t.Errorf("Lerp = %v, want (2,1)", got)
	}
}

func TestPointFloor(t *testing.T) {
	tests := []struct {
		in, want Point
	}{
		{Pt(1.5, 2.9), Pt(1, 2)},
		{Pt(-0.5, -1.1), Pt(-1, -2)},
		{Pt(3, -3), Pt(3, -3)},
	}
	for _, tt := range tests {
		if got := tt.in.Floor(); got != tt.want {
			t.Errorf("%v.Floor() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPointImageConversion(t *testing.T) {
	if got := PtI(image.Pt(7, -3)); got != Pt(7, -3) {
		t.Errorf("PtI = %v", got)
	}
	if got := Pt(7.9, -3).Image(); got != image.Pt(7, -3) {
		t.Errorf("Image = %v", got)
	}
}
