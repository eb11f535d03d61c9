package hitbox

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestScreenToSpriteCenter(t *testing.T) {
	s := ViewportState{Position: image.Pt(0, 0), Size: image.Pt(800, 800), Zoom: 1}
	got, err := ScreenToSprite(Pt(400, 400), s)
	if err != nil {
		t.Fatalf("ScreenToSprite() = %v", err)
	}
	if got != (Point{}) {
		t.Errorf("ScreenToSprite(center) = %v, want (0,0)", got)
	}
}

func TestScreenToSprite(t *testing.T) {
	base := ViewportState{Position: image.Pt(0, 0), Size: image.Pt(800, 800), Zoom: 1}
	tests := []struct {
		name   string
		screen Point
		state  func(ViewportState) ViewportState
		want   Point
	}{
		{"zoom and shift", Pt(500, 300), func(s ViewportState) ViewportState {
			s.Zoom, s.Shift = 0.5, Pt(10, -4)
			return s
		}, Pt(60, -54)},
		{"floor toward negative", Pt(399.5, 400), nil, Pt(-1, 0)},
		{"fractional zoom floors", Pt(401, 401), func(s ViewportState) ViewportState {
			s.Zoom = 1.0 / 3.0
			return s
		}, Pt(0, 0)},
		{"offset panel", Pt(150, 260), func(s ViewportState) ViewportState {
			s.Position = image.Pt(100, 200)
			s.Size = image.Pt(100, 120)
			return s
		}, Pt(0, 0)},
		{"bottom-left corner", Pt(0, 0), nil, Pt(-400, -400)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			if tt.state != nil {
				s = tt.state(s)
			}
			got, err := ScreenToSprite(tt.screen, s)
			if err != nil {
				t.Fatalf("ScreenToSprite() = %v", err)
			}
			if got != tt.want {
				t.Errorf("ScreenToSprite(%v) = %v, want %v", tt.screen, got, tt.want)
			}
		})
	}
}

func TestScreenToSpriteOutside(t *testing.T) {
	s := ViewportState{Position: image.Pt(10, 10), Size: image.Pt(100, 100), Zoom: 1}
	for _, p := range []Point{Pt(9.9, 50), Pt(50, 110.1), Pt(-1, -1), Pt(200, 200)} {
		if _, err := ScreenToSprite(p, s); !errors.Is(err, ErrOutsideViewport) {
			t.Errorf("ScreenToSprite(%v) = %v, want ErrOutsideViewport", p, err)
		}
	}
}

// Odd panel sizes centre with integer division; a click just right of the
// geometric centre of an 801px panel lands in cell 0, not -1.
func TestScreenToSpriteIntegerHalvingQuirk(t *testing.T) {
	s := ViewportState{Size: image.Pt(801, 801), Zoom: 1}
	got, err := ScreenToSprite(Pt(400.2, 400.2), s)
	if err != nil {
		t.Fatal(err)
	}
	if got != Pt(0, 0) {
		t.Errorf("ScreenToSprite() = %v, want (0,0) with integer halving", got)
	}
	float := Pt(400.2, 400.2).Sub(PtI(s.Size).Div(2)).Floor()
	if float == got {
		t.Errorf("float halving unexpectedly agrees: %v", float)
	}
}

func TestScreenToSpriteIdempotent(t *testing.T) {
	s := ViewportState{Position: image.Pt(3, 7), Size: image.Pt(321, 123), Zoom: 0.37, Shift: Pt(1.25, -9.5)}
	p := Pt(111.3, 44.9)
	first, err := ScreenToSprite(p, s)
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := ScreenToSprite(p, s)
		if err != nil || again != first {
			t.Fatalf("ScreenToSprite() = %v, %v; want %v", again, err, first)
		}
	}
}

func TestSpriteToScreenRoundtrip(t *testing.T) {
	states := []ViewportState{
		{Size: image.Pt(800, 800), Zoom: 1},
		{Position: image.Pt(20, 40), Size: image.Pt(301, 199), Zoom: 1.0 / 3.0, Shift: Pt(5, -5)},
		{Position: image.Pt(-10, 5), Size: image.Pt(64, 64), Zoom: 2, Shift: Pt(-100.5, 33)},
		{Size: image.Pt(512, 256), Zoom: 0.1, Shift: Pt(0.3, 0.7)},
	}
	for i, s := range states {
		for x := 0; x <= s.Size.X; x += max(1, s.Size.X/17) {
			for y := 0; y <= s.Size.Y; y += max(1, s.Size.Y/13) {
				screen := Pt(float64(s.Position.X+x)+0.25, float64(s.Position.Y+y))
				if !s.Contains(screen) {
					continue
				}
				sprite, err := ScreenToSprite(screen, s)
				if err != nil {
					t.Fatalf("state %d: ScreenToSprite(%v) = %v", i, screen, err)
				}
				back := SpriteToScreen(sprite, s)
				// Flooring loses less than one sprite unit, i.e. 1/zoom pixels.
				tol := 1/s.Zoom + 1e-9
				if d := screen.Sub(back); d.X < -1e-9 || d.Y < -1e-9 || d.X > tol || d.Y > tol {
					t.Fatalf("state %d: %v -> %v -> %v (off by %v, tol %v)", i, screen, sprite, back, d, tol)
				}
			}
		}
	}
}

func TestCursorMarker(t *testing.T) {
	s := ViewportState{Position: image.Pt(100, 100), Size: image.Pt(200, 200), Zoom: 0.5}
	m, ok := CursorMarker(Pt(151.7, 250), s)
	if !ok {
		t.Fatal("CursorMarker() ok = false inside the panel")
	}
	// rel (51.7,150) - half (100,100) = (-48.3, 50) * 0.5 = (-24.15, 25) -> (-25, 25)
	// back to panel: (-25,25)/0.5 + (100,100) = (50, 150)
	if math.Abs(m.X-50) > 1e-9 || math.Abs(m.Y-150) > 1e-9 {
		t.Errorf("CursorMarker() = %v, want (50,150)", m)
	}
	if _, ok := CursorMarker(Pt(0, 0), s); ok {
		t.Error("CursorMarker() ok = true outside the panel")
	}
}
