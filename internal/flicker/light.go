package flicker

import (
	"errors"
	"time"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// minHold keeps a light's countdown positive after a zero-length draw, so the
// next tick re-rolls it.
const minHold = time.Millisecond

// Light is the per-LED flicker state. It is always holding: when the
// countdown runs out it immediately draws a new brightness and duration.
type Light struct {
	pos       int
	remaining time.Duration
	mode      Mode
	rnd       Rand
	last      Event
}

// NewLight creates a light for LED position pos. Its countdown starts at
// zero, so the first Update always draws.
func NewLight(pos int, mode Mode, rnd Rand) *Light {
	return &Light{pos: pos, mode: mode, rnd: rnd}
}

// Position returns the buffer index this light writes.
func (l *Light) Position() int { return l.pos }

// Remaining returns the hold time left before the next draw.
func (l *Light) Remaining() time.Duration { return l.remaining }

// Last returns the most recently drawn event.
func (l *Light) Last() Event { return l.last }

// Update counts the light down by elapsed and, once the hold has expired,
// draws a new event and writes the resulting color into buf.
func (l *Light) Update(elapsed time.Duration, buf *pixel.Buffer) error {
	l.remaining -= elapsed
	if l.remaining > 0 {
		return nil
	}

	ev := l.mode.Next(l.rnd)
	l.last = ev
	l.remaining = ev.Duration
	if l.remaining < minHold {
		l.remaining = minHold
	}
	return buf.Set(l.pos, l.mode.Base().Scale(ev.Brightness))
}

// Candle is one light per LED position, all sharing a mode.
type Candle struct {
	mode   Mode
	lights []*Light
}

// NewCandle builds n lights at positions 0..n-1. newRand is called once per
// light; pass NewRand for independent flicker.
func NewCandle(n int, mode Mode, newRand func() Rand) *Candle {
	c := &Candle{
		mode:   mode,
		lights: make([]*Light, 0, n),
	}
	for i := 0; i < n; i++ {
		c.lights = append(c.lights, NewLight(i, mode, newRand()))
	}
	return c
}

// Mode returns the shared light mode.
func (c *Candle) Mode() Mode { return c.mode }

// Lights returns the lights in position order.
func (c *Candle) Lights() []*Light { return c.lights }

// Advance updates every light by elapsed. A failing light does not stop the
// others; all failures are returned joined.
func (c *Candle) Advance(elapsed time.Duration, buf *pixel.Buffer) error {
	var errs []error
	for _, l := range c.lights {
		if err := l.Update(elapsed, buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
