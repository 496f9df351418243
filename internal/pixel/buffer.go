package pixel

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned for buffer indices or sizes outside the valid
// domain.
var ErrOutOfRange = errors.New("out of range")

// Buffer owns one raw Color per physical LED and a global brightness factor.
// Its length is fixed at construction. Brightness is applied only when a
// snapshot is taken, so the stored colors are never modified by it.
type Buffer struct {
	px         []Color
	brightness float64
}

// NewBuffer allocates a buffer of n black pixels at full brightness.
func NewBuffer(n int) (*Buffer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("buffer size %d: %w", n, ErrOutOfRange)
	}
	return &Buffer{
		px:         make([]Color, n),
		brightness: 1.0,
	}, nil
}

// Len returns the number of pixels.
func (b *Buffer) Len() int {
	return len(b.px)
}

// Set writes c at index i.
func (b *Buffer) Set(i int, c Color) error {
	if i < 0 || i >= len(b.px) {
		return fmt.Errorf("pixel %d of %d: %w", i, len(b.px), ErrOutOfRange)
	}
	b.px[i] = c
	return nil
}

// At returns the raw (unscaled) color at index i.
func (b *Buffer) At(i int) (Color, error) {
	if i < 0 || i >= len(b.px) {
		return Black, fmt.Errorf("pixel %d of %d: %w", i, len(b.px), ErrOutOfRange)
	}
	return b.px[i], nil
}

// Fill writes c to every index.
func (b *Buffer) Fill(c Color) {
	for i := range b.px {
		b.px[i] = c
	}
}

// SetBrightness sets the global scale factor. Values outside [0,1] are
// accepted; snapshot output is clamped instead.
func (b *Buffer) SetBrightness(f float64) {
	b.brightness = f
}

// Brightness returns the current scale factor.
func (b *Buffer) Brightness() float64 {
	return b.brightness
}

// Snapshot returns a new brightness-scaled copy of the buffer.
func (b *Buffer) Snapshot() []Color {
	return b.SnapshotInto(nil)
}

// SnapshotInto writes the brightness-scaled buffer into dst, growing it if
// needed, and returns the result. Each channel is clamp(floor(c*f), 0, 255).
func (b *Buffer) SnapshotInto(dst []Color) []Color {
	if cap(dst) < len(b.px) {
		dst = make([]Color, len(b.px))
	}
	dst = dst[:len(b.px)]
	for i, c := range b.px {
		dst[i] = Color{
			R: scaleChannel(c.R, b.brightness),
			G: scaleChannel(c.G, b.brightness),
			B: scaleChannel(c.B, b.brightness),
		}
	}
	return dst
}

func scaleChannel(c uint8, f float64) uint8 {
	v := math.Floor(float64(c) * f)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
