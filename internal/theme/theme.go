// Package theme loads the editor's named colour table.
//
// A table is a JSON document of the form
//
//	{
//	  "default": "dark",
//	  "colours": {
//	    "dark":  {"ORANGE_RED": "#FF4500FF", "-background-primary": "#1E1E1EFF"},
//	    "light": {"ORANGE_RED": "FF4500FF"}
//	  }
//	}
//
// Colour values are hex strings in RRGGBBAA, RRGGBB, RGBA or RGB form, with an
// optional leading '#'.
package theme

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/hitbox"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tidwall/gjson"
)

// Well-known colour names.
const (
	BackgroundPrimary   = "-background-primary"
	BackgroundSecondary = "-background-secondary"
	BackgroundBorder    = "-background-border"
	Hitbox              = "HITBOX"
	CursorMarker        = "ORANGE_RED"
)

var (
	// ErrInvalidTable is returned when the document is not a valid style table.
	ErrInvalidTable = errors.New("theme: invalid style table")

	// ErrUnknownTheme is returned when a theme name is not in the table.
	ErrUnknownTheme = errors.New("theme: unknown theme")

	// ErrInvalidHex is returned for malformed hex colours.
	ErrInvalidHex = errors.New("theme: invalid hex colour")
)

// Theme is a named set of colours.
type Theme struct {
	Name    string
	Colours map[string]hitbox.RGBA
}

// Colour returns the named colour, or fallback if the theme does not define it.
func (t Theme) Colour(name string, fallback hitbox.RGBA) hitbox.RGBA {
	if c, ok := t.Colours[name]; ok {
		return c
	}
	return fallback
}

// Table is a parsed style table.
type Table struct {
	Default string
	themes  map[string]Theme
}

// Load reads and parses the style table at path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the host configuration
	if err != nil {
		return nil, fmt.Errorf("theme: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse parses a style table document.
func Parse(data []byte) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidTable)
	}
	doc := gjson.ParseBytes(data)

	colours := doc.Get("colours")
	if !colours.IsObject() {
		return nil, fmt.Errorf("%w: missing \"colours\" object", ErrInvalidTable)
	}

	t := &Table{
		Default: doc.Get("default").String(),
		themes:  make(map[string]Theme),
	}

	var parseErr error
	colours.ForEach(func(name, entries gjson.Result) bool {
		if !entries.IsObject() {
			parseErr = fmt.Errorf("%w: theme %q is not an object", ErrInvalidTable, name.String())
			return false
		}
		th := Theme{Name: name.String(), Colours: make(map[string]hitbox.RGBA)}
		entries.ForEach(func(key, value gjson.Result) bool {
			c, err := ParseHex(value.String())
			if err != nil {
				parseErr = fmt.Errorf("theme %q colour %q: %w", th.Name, key.String(), err)
				return false
			}
			th.Colours[key.String()] = c
			return true
		})
		if parseErr != nil {
			return false
		}
		t.themes[th.Name] = th
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if t.Default == "" {
		return nil, fmt.Errorf("%w: missing \"default\"", ErrInvalidTable)
	}
	if _, ok := t.themes[t.Default]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownTheme, t.Default)
	}

	hitbox.Logger().Debug("theme: table parsed", "default", t.Default, "themes", len(t.themes))
	return t, nil
}

// Theme returns the named theme.
func (t *Table) Theme(name string) (Theme, error) {
	th, ok := t.themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return th, nil
}

// Active returns the default theme.
func (t *Table) Active() Theme {
	return t.themes[t.Default]
}

// Names returns the theme names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.themes))
	for name := range t.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseHex parses a hex colour. Three and four digit forms double each digit.
// A missing alpha channel is opaque.
func ParseHex(s string) (hitbox.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return hitbox.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	c, err := colorful.Hex("#" + h[:6])
	if err != nil {
		return hitbox.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	alpha := 1.0
	if len(h) == 8 {
		a, err := strconv.ParseUint(h[6:], 16, 8)
		if err != nil {
			return hitbox.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
		}
		alpha = float64(a) / 255
	}

	return hitbox.RGBA{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}
