// Package emberglow drives a WS2812 ring: flicker animation, ring effects and
// the encoder that puts frames on the wire.
package emberglow

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/emberglow/internal/flicker"
	"github.com/coreman2200/emberglow/internal/led"
	"github.com/coreman2200/emberglow/internal/pixel"
	"github.com/coreman2200/emberglow/internal/ring"
)

// Engine owns the pixel buffer, the strip driver and one light collection per
// flicker profile. It is not safe for concurrent use; the control loop owns it.
type Engine struct {
	opts  Options
	buf   *pixel.Buffer
	out   led.Driver
	ring  *ring.Renderer
	glow  *flicker.Candle
	ember *flicker.Candle
}

// New builds an Engine and opens its driver unless one is supplied.
func New(o Options) (*Engine, error) {
	o = o.withDefaults()

	buf, err := pixel.NewBuffer(o.LEDCount)
	if err != nil {
		return nil, fmt.Errorf("led count %d: %w", o.LEDCount, err)
	}
	buf.SetBrightness(o.Brightness)

	out := o.Output
	if out == nil {
		cfg := o.LED
		cfg.Count = o.LEDCount
		if out, err = led.Open(cfg); err != nil {
			return nil, fmt.Errorf("open %q driver: %w", cfg.Name, err)
		}
	}

	e := &Engine{
		opts:  o,
		buf:   buf,
		out:   out,
		ring:  ring.New(buf, out, ring.WithPalette(o.Palette)),
		glow:  flicker.NewCandle(o.LEDCount, flicker.GlowMode{Color: o.GlowColor}, o.NewRand),
		ember: flicker.NewCandle(o.LEDCount, flicker.EmberMode{Color: o.EmberColor}, o.NewRand),
	}
	log.Debug().
		Int("leds", o.LEDCount).
		Dur("refresh", o.RefreshInterval).
		Float64("brightness", o.Brightness).
		Msg("engine ready")
	return e, nil
}

// Advance steps the lights of profile p by elapsed, writing into the buffer.
// Nothing is transmitted until Render.
func (e *Engine) Advance(elapsed time.Duration, p flicker.Profile) error {
	switch p {
	case flicker.Glow:
		return e.glow.Advance(elapsed, e.buf)
	case flicker.Ember:
		return e.ember.Advance(elapsed, e.buf)
	default:
		return fmt.Errorf("unknown flicker profile %v", p)
	}
}

// Render pushes the current buffer to the strip.
func (e *Engine) Render() error {
	return e.ring.Show()
}

func (e *Engine) Buffer() *pixel.Buffer          { return e.buf }
func (e *Engine) Ring() *ring.Renderer           { return e.ring }
func (e *Engine) Driver() led.Driver             { return e.out }
func (e *Engine) RefreshInterval() time.Duration { return e.opts.RefreshInterval }
func (e *Engine) LEDCount() int                  { return e.opts.LEDCount }

// Close blanks the strip and releases the driver.
func (e *Engine) Close() error {
	if err := e.ring.Clear(); err != nil {
		log.Warn().Err(err).Msg("blank on close")
	}
	return e.out.Close()
}
