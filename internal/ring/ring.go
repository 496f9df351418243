package ring

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// Output is the sink a rendered frame is pushed to. led.Driver satisfies it.
type Output interface {
	Write(frame []pixel.Color) error
}

// Palette is the color sequence NextColor cycles through.
var Palette = []pixel.Color{
	pixel.White, pixel.Red, pixel.White, pixel.Green, pixel.White,
	pixel.Blue, pixel.Cyan, pixel.Purple, pixel.White, pixel.Blue,
}

// RainbowPhases is the number of frames in one RainbowCycle.
const RainbowPhases = 256

// Renderer runs ring animations on a pixel buffer. Multi-frame animations
// block until finished and cannot be interrupted.
type Renderer struct {
	buf     *pixel.Buffer
	out     Output
	palette []pixel.Color
	color   int
	frame   []pixel.Color
	sleep   func(time.Duration)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPalette replaces the default palette.
func WithPalette(p []pixel.Color) Option {
	return func(r *Renderer) {
		if len(p) > 0 {
			r.palette = p
		}
	}
}

// WithSleep replaces time.Sleep for step delays.
func WithSleep(fn func(time.Duration)) Option {
	return func(r *Renderer) { r.sleep = fn }
}

// New returns a Renderer drawing into buf and pushing frames to out.
func New(buf *pixel.Buffer, out Output, opts ...Option) *Renderer {
	r := &Renderer{
		buf:     buf,
		out:     out,
		palette: Palette,
		frame:   make([]pixel.Color, buf.Len()),
		sleep:   time.Sleep,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Buffer returns the buffer the renderer draws into.
func (r *Renderer) Buffer() *pixel.Buffer { return r.buf }

// Show snapshots the buffer at its current brightness and writes it out.
func (r *Renderer) Show() error {
	r.frame = r.buf.SnapshotInto(r.frame)
	return r.out.Write(r.frame)
}

// Tick sets one pixel, leaves the others untouched and renders.
func (r *Renderer) Tick(c pixel.Color, index int) error {
	if err := r.buf.Set(index, c); err != nil {
		return err
	}
	return r.Show()
}

// Clear blanks the ring and renders.
func (r *Renderer) Clear() error {
	r.buf.Fill(pixel.Black)
	return r.Show()
}

// ColorChase walks a single lit pixel around the ring from the last index
// down to 0, blanking the pixel it came from (wrapping to 0 for the first
// step) and rendering after every step.
func (r *Renderer) ColorChase(c pixel.Color, stepDelay time.Duration) error {
	n := r.buf.Len()
	var first error
	for i := n - 1; i >= 0; i-- {
		prev := i + 1
		if i == n-1 {
			prev = 0
		}
		_ = r.buf.Set(prev, pixel.Black)
		_ = r.buf.Set(i, c)
		first = r.step(first, stepDelay)
	}
	return first
}

// Wipe paints c from the last index down to 0, rendering each step.
func (r *Renderer) Wipe(c pixel.Color, stepDelay time.Duration) error {
	var first error
	for i := r.buf.Len() - 1; i >= 0; i-- {
		_ = r.buf.Set(i, c)
		first = r.step(first, stepDelay)
	}
	return first
}

// RainbowCycle renders RainbowPhases frames, each spreading the full color
// wheel across the ring and rotating it one position.
func (r *Renderer) RainbowCycle(stepDelay time.Duration) error {
	n := r.buf.Len()
	var first error
	for phase := 0; phase < RainbowPhases; phase++ {
		for i := 0; i < n; i++ {
			_ = r.buf.Set(i, pixel.Wheel((i*256/n+phase)&255))
		}
		first = r.step(first, stepDelay)
	}
	return first
}

// NextColor advances through the palette and returns the new color, wrapping
// to the first entry after the last.
func (r *Renderer) NextColor() pixel.Color {
	r.color++
	if r.color >= len(r.palette) {
		r.color = 0
	}
	return r.palette[r.color]
}

// step renders one frame of a multi-frame animation and sleeps. A dropped
// frame is logged and the animation continues; the first failure is kept.
func (r *Renderer) step(first error, delay time.Duration) error {
	if err := r.Show(); err != nil {
		log.Warn().Err(err).Msg("ring frame dropped")
		if first == nil {
			first = err
		}
	}
	if delay > 0 {
		r.sleep(delay)
	}
	return first
}

// SecondIndex maps a second of the minute onto a ring of n pixels, counting
// down so the ring fills against the clock direction of the wiring. Second 59
// lands on index -1, which wraps to the last pixel.
func SecondIndex(second, n int) int {
	reverse := math.Abs(float64(second - 59))
	idx := int(math.Ceil(reverse/59*float64(n) - 1))
	if idx < 0 {
		idx += n
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}
