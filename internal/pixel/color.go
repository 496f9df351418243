package pixel

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is one 24-bit LED color. It is a value type; every constructor clamps
// channels into [0,255].
type Color struct {
	R, G, B uint8
}

var (
	Black  = Color{0, 0, 0}
	Red    = Color{255, 0, 0}
	Yellow = Color{255, 150, 0}
	Green  = Color{0, 255, 0}
	Cyan   = Color{0, 255, 255}
	Blue   = Color{0, 0, 255}
	Purple = Color{180, 0, 255}
	White  = Color{255, 255, 255}
)

const (
	greenOffset = 16
	redOffset   = 8
	blueOffset  = 0
)

// RGB builds a Color from integer channels, clamping each into [0,255].
func RGB(r, g, b int) Color {
	return Color{R: clampByte(r), G: clampByte(g), B: clampByte(b)}
}

// FromHex parses "#rrggbb" (or "#rgb").
func FromHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Black, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scale returns the color at percent brightness. Each channel is
// c*percent/100 truncated toward zero and clamped into [0,255].
func (c Color) Scale(percent int) Color {
	return RGB(
		int(c.R)*percent/100,
		int(c.G)*percent/100,
		int(c.B)*percent/100,
	)
}

// Uint32 packs the color into the GRB word layout consumed by WS2812 strips:
// green in bits 16-23, red in 8-15, blue in 0-7.
func (c Color) Uint32() uint32 {
	return uint32(c.G)<<greenOffset | uint32(c.R)<<redOffset | uint32(c.B)<<blueOffset
}

// FromUint32 is the inverse of Uint32.
func FromUint32(v uint32) Color {
	return Color{
		R: uint8(v >> redOffset),
		G: uint8(v >> greenOffset),
		B: uint8(v >> blueOffset),
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
