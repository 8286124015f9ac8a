package easel

import (
	"image/color"
	"strconv"
)

// RGBA represents a non-premultiplied color with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Transparent = RGBA{}
	Black       = RGBA{A: 1}
	White       = RGBA{R: 1, G: 1, B: 1, A: 1}
)

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// NewRGBA creates a color from all four components.
func NewRGBA(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// Color converts to the standard library color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// Bytes returns the color as non-premultiplied 8-bit components.
func (c RGBA) Bytes() (r, g, b, a uint8) {
	return uint8(clamp255(c.R * 255)),
		uint8(clamp255(c.G * 255)),
		uint8(clamp255(c.B * 255)),
		uint8(clamp255(c.A * 255))
}

// Hex returns the color as "#RRGGBBAA".
func (c RGBA) Hex() string {
	r, g, b, a := c.Bytes()
	const digits = "0123456789abcdef"
	out := make([]byte, 9)
	out[0] = '#'
	for i, v := range [4]uint8{r, g, b, a} {
		out[1+i*2] = digits[v>>4]
		out[2+i*2] = digits[v&0xf]
	}
	return string(out)
}

// WithAlpha returns the color with its alpha multiplied by a.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A *= a
	return c
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Transparent
	}
	// c.RGBA is premultiplied; undo that for component storage.
	af := float64(a) / 65535
	return RGBA{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: af,
	}
}

// Hex parses a color from a hex string in "RGB", "RGBA", "RRGGBB" or
// "RRGGBBAA" form, with or without a leading '#'. Invalid input yields
// opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}
	parse := func(s string) float64 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0
		}
		return float64(v) / 255
	}
	switch len(hex) {
	case 3:
		return RGBA{parse(dup(hex[0])), parse(dup(hex[1])), parse(dup(hex[2])), 1}
	case 4:
		return RGBA{parse(dup(hex[0])), parse(dup(hex[1])), parse(dup(hex[2])), parse(dup(hex[3]))}
	case 6:
		return RGBA{parse(hex[0:2]), parse(hex[2:4]), parse(hex[4:6]), 1}
	case 8:
		return RGBA{parse(hex[0:2]), parse(hex[2:4]), parse(hex[4:6]), parse(hex[6:8])}
	}
	return Black
}

func dup(b byte) string { return string([]byte{b, b}) }

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
