// Command hitboxdemo drives the hitbox editor with a scripted input sequence
// and writes the composited panel to a PNG file.
package main

import (
	"context"
	"flag"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/hitbox"
	"github.com/gogpu/hitbox/backend"
	_ "github.com/gogpu/hitbox/backend/native"
	"github.com/gogpu/hitbox/internal/theme"
	"github.com/gogpu/hitbox/render"
	_ "github.com/gogpu/wgpu/hal/noop"
)

func main() {
	var (
		width       = flag.Int("width", 800, "window width")
		height      = flag.Int("height", 600, "window height")
		sprite      = flag.String("sprite", "", "sprite image (PNG or JPEG); a generated sprite is used when empty")
		points      = flag.Int("points", 6, "number of hitbox points to click")
		zoom        = flag.Float64("zoom", 1, "initial zoom")
		keys        = flag.String("keys", "", "nudge keys to replay, e.g. WWAD")
		scroll      = flag.Float64("scroll", 0, "scroll amount applied at the panel centre")
		style       = flag.String("theme", "", "style table (JSON)")
		watch       = flag.Bool("watch", false, "re-render whenever the style table changes")
		output      = flag.String("output", "hitbox.png", "output file")
		backendName = flag.String("backend", backend.BackendSoftware, "point buffer backend (software, native; empty picks the best)")
		verbose     = flag.Bool("v", false, "log editor events")
	)
	flag.Parse()

	if *verbose {
		render.SetLogger(newLogger())
	}

	img, err := loadSprite(*sprite)
	if err != nil {
		log.Fatalf("Failed to load sprite: %v", err)
	}

	b, err := backend.Open(*backendName)
	if err != nil {
		log.Fatalf("Failed to open backend %q: %v", *backendName, err)
	}
	defer b.Close()
	log.Printf("Using %s backend", b.Name())

	session := hitbox.NewSession(hitbox.WithAdapter(b.Adapter()), hitbox.WithZoom(*zoom))
	defer session.Close()
	session.Viewport().SetPanelRect(image.Rect(0, 0, *width, *height))

	store, err := session.AddSprite(hitbox.Sprite{Name: "sprite", Size: img.Bounds().Size()}, hitbox.Red)
	if err != nil {
		log.Fatalf("Failed to create hitbox: %v", err)
	}

	ctrl := hitbox.NewController(session)
	replay(ctrl, img.Bounds().Size(), *points, *keys, *scroll)

	sw := render.NewSoftware()
	sw.SetSprite(img)

	var mu sync.Mutex
	frame := image.NewRGBA(image.Rect(0, 0, *width, *height))
	renderTo := func(t *theme.Table) {
		mu.Lock()
		defer mu.Unlock()
		if t != nil {
			active := t.Active()
			store.SetColor(active.Colour(theme.Hitbox, hitbox.Red))
			sw.MarkerColor = active.Colour(theme.CursorMarker, hitbox.OrangeRed)
			fillBackground(frame, active.Colour(theme.BackgroundBorder, hitbox.Black))
		}
		if err := sw.Render(frame, session.Viewport().State(), session.Hitboxes(), session.Mouse()); err != nil {
			log.Printf("Render failed: %v", err)
			return
		}
		if err := savePNG(*output, frame); err != nil {
			log.Printf("Failed to save: %v", err)
			return
		}
		log.Printf("Hitbox saved to %s (%d points, state %s)", *output, store.Len(), ctrl.State())
	}

	var table *theme.Table
	if *style != "" {
		table, err = theme.Load(*style)
		if err != nil {
			log.Fatalf("Failed to load theme: %v", err)
		}
	}
	renderTo(table)

	if !*watch {
		return
	}
	if *style == "" {
		log.Fatalf("-watch requires -theme")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Printf("Watching %s, press Ctrl+C to stop", *style)
	if err := theme.Watch(ctx, *style, renderTo); err != nil && ctx.Err() == nil {
		log.Fatalf("Watch failed: %v", err)
	}
}

// replay feeds the controller the same events a user would produce: clicks
// on a circle around the sprite, nudges, a scroll and a final pointer move.
func replay(ctrl *hitbox.Controller, size image.Point, n int, keys string, scroll float64) {
	vp := ctrl.Session().Viewport()

	radius := 0.4 * float64(min(size.X, size.Y))
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		p := hitbox.SpriteToScreen(hitbox.Pt(radius*math.Cos(a), radius*math.Sin(a)), vp.State())
		ctrl.Press(p.X, p.Y, gpucontext.ButtonLeft, 0)
		ctrl.Release(p.X, p.Y, gpucontext.ButtonLeft, 0)
	}

	for _, r := range strings.ToUpper(keys) {
		switch r {
		case 'W':
			ctrl.KeyDown(gpucontext.KeyW, 0)
		case 'A':
			ctrl.KeyDown(gpucontext.KeyA, 0)
		case 'S':
			ctrl.KeyDown(gpucontext.KeyS, 0)
		case 'D':
			ctrl.KeyDown(gpucontext.KeyD, 0)
		default:
			log.Printf("Ignoring key %q", r)
		}
	}

	state := vp.State()
	centre := hitbox.PtI(state.Position).Add(hitbox.PtI(state.Size).Div(2))
	if scroll != 0 {
		ctrl.Scroll(centre.X, centre.Y, 0, scroll)
	}

	// Leave the pointer just above the first point so the marker shows.
	p := hitbox.SpriteToScreen(hitbox.Pt(radius, 2), vp.State())
	ctrl.Move(p.X, p.Y)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func loadSprite(path string) (image.Image, error) {
	if path == "" {
		return generatedSprite(96, 128), nil
	}
	f, err := os.Open(path) //nolint:gosec // path is a command line argument
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// generatedSprite draws a simple character silhouette.
func generatedSprite(w, h int) image.Image {
	dc := gg.NewContext(w, h)
	fw, fh := float64(w), float64(h)

	dc.SetRGB(0.2, 0.5, 0.9)
	dc.DrawEllipse(fw/2, fh*0.62, fw*0.35, fh*0.33)
	dc.Fill()

	dc.SetRGB(0.95, 0.8, 0.6)
	dc.DrawCircle(fw/2, fh*0.22, fw*0.2)
	dc.Fill()

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.SetLineWidth(2)
	dc.DrawCircle(fw/2, fh*0.22, fw*0.2)
	dc.Stroke()
	return dc.Image()
}

func fillBackground(dst *image.RGBA, c hitbox.RGBA) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(c.Color())
	dc.Clear()
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is a command line argument
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
