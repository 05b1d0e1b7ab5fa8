package basemap

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/crazy3lf/colorconv"
)

// parseColor reads "#rgb", "#rrggbb" or "#rrggbbaa". Empty and "none" are
// valid and report visible as false.
func parseColor(s string) (c color.RGBA, visible bool, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return color.RGBA{}, false, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false, fmt.Errorf("color %q must start with '#'", s)
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, false, fmt.Errorf("color %q has wrong length", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false, fmt.Errorf("color %q: %w", s, err)
	}

	// color.RGBA is alpha premultiplied
	a := uint32(v & 0xff)
	premul := func(shift uint) uint8 {
		return uint8((uint32(v>>shift) & 0xff) * a / 0xff)
	}

	return color.RGBA{R: premul(24), G: premul(16), B: premul(8), A: uint8(a)}, true, nil
}

// hexColor renders c as "#rrggbb" with the alpha as a separate opacity.
func hexColor(c color.RGBA) (hex string, opacity float64) {
	if c.A == 0 {
		return "none", 0
	}
	r := uint32(c.R) * 0xff / uint32(c.A)
	g := uint32(c.G) * 0xff / uint32(c.A)
	b := uint32(c.B) * 0xff / uint32(c.A)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), float64(c.A) / 0xff
}

// halo picks the outline color that stands out against c.
func halo(c color.Color) color.RGBA {
	_, _, l := colorconv.ColorToHSL(c)
	if l > 0.6 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}
