package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/emberglow/internal/chime"
	"github.com/coreman2200/emberglow/internal/display"
	"github.com/coreman2200/emberglow/internal/input"
	"github.com/coreman2200/emberglow/internal/pixel"
	"github.com/coreman2200/emberglow/internal/ring"
	"github.com/coreman2200/emberglow/internal/rtc"
	"github.com/coreman2200/emberglow/internal/sensor"
)

// ClockOptions wires the clock face. Climate, Light and the buttons are
// optional.
type ClockOptions struct {
	Ring    *ring.Renderer
	Clock   rtc.Clock
	Display display.Text
	Chime   chime.Chimer
	Climate sensor.ClimateSensor
	Light   sensor.Light

	ActiveFrom, ActiveTo int
	Volume               int
	// Brightness is the ring brightness in full light.
	Brightness float64
}

// ClockButtons are the front panel controls. Nil buttons are skipped.
type ClockButtons struct {
	Hour, Minute, Second, Volume, Test input.Button
}

// Clock shows the time on the display and runs a second hand around the
// ring, with a rainbow and chime on the hour.
type Clock struct {
	opts     ClockOptions
	bindings []input.Binding

	color  pixel.Color
	volume int
	last   rtc.DateTime
	drawn  bool
	seen   bool
}

type chimeTester interface {
	Test() error
}

func NewClock(o ClockOptions, b ClockButtons) *Clock {
	if o.Brightness <= 0 {
		o.Brightness = 1
	}
	c := &Clock{opts: o, volume: o.Volume}
	c.color = o.Ring.NextColor()

	bind := func(name string, btn input.Button, fn func() error) {
		if btn != nil {
			c.bindings = append(c.bindings, input.Bind(name, btn, fn))
		}
	}
	bind("hour", b.Hour, c.bumpHour)
	bind("minute", b.Minute, c.bumpMinute)
	bind("second", b.Second, c.resetSecond)
	bind("volume", b.Volume, c.stepVolume)
	bind("test", b.Test, c.testChime)
	return c
}

func (c *Clock) Color() pixel.Color { return c.color }
func (c *Clock) Volume() int        { return c.volume }

// Step polls the buttons every call and redraws once per second.
func (c *Clock) Step(_ context.Context, _ time.Duration) error {
	var errs []error
	if err := input.Poll(c.bindings); err != nil {
		errs = append(errs, err)
	}

	now, err := c.opts.Clock.Now()
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("rtc: %w", err))...)
	}
	if c.drawn && now == c.last {
		return errors.Join(errs...)
	}
	crossed := c.topOfHour(now)
	c.last, c.drawn, c.seen = now, true, true

	c.autoBrightness()
	if err := c.opts.Display.Render(c.lines(now)); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if now.Second == 0 {
		c.color = c.opts.Ring.NextColor()
	}

	r := c.opts.Ring
	if !c.active(now.Hour) {
		return errors.Join(append(errs, r.Clear())...)
	}
	if err := r.Tick(c.color, ring.SecondIndex(now.Second, r.Buffer().Len())); err != nil {
		errs = append(errs, err)
	}
	if crossed {
		log.Info().Int("hour", now.Hour).Msg("top of the hour")
		if err := r.RainbowCycle(0); err != nil {
			errs = append(errs, err)
		}
		if c.opts.Chime != nil {
			if err := chime.Hourly(c.opts.Chime, now.Hour, c.volume); err != nil {
				errs = append(errs, fmt.Errorf("chime: %w", err))
			}
		}
		if err := r.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// topOfHour reports whether now is the first draw inside minute 0 of its
// hour, so a skipped 00 second still rings the hour.
func (c *Clock) topOfHour(now rtc.DateTime) bool {
	if now.Minute != 0 {
		return false
	}
	if now.Second == 0 {
		return !c.seen || c.last != now
	}
	if !c.seen {
		return false
	}
	p := c.last
	return p.Hour != now.Hour || p.Day != now.Day || p.Month != now.Month || p.Year != now.Year
}

func (c *Clock) active(hour int) bool {
	return hour >= c.opts.ActiveFrom && hour <= c.opts.ActiveTo
}

func (c *Clock) lines(now rtc.DateTime) []string {
	lines := []string{"Date " + now.DateString(), "Time " + now.TimeString()}
	if c.opts.Climate == nil {
		return lines
	}
	cl, err := c.opts.Climate.Read()
	if err != nil {
		log.Debug().Err(err).Msg("climate")
		return lines
	}
	return append(lines, cl.String())
}

// autoBrightness dims the ring to a fifth of its brightness in the dark.
func (c *Clock) autoBrightness() {
	buf := c.opts.Ring.Buffer()
	if c.opts.Light == nil {
		buf.SetBrightness(c.opts.Brightness)
		return
	}
	l, err := c.opts.Light.Read()
	if err != nil {
		log.Debug().Err(err).Msg("light")
		return
	}
	buf.SetBrightness(c.opts.Brightness * (0.2 + 0.8*l))
}

func (c *Clock) bumpHour() error {
	now, err := c.opts.Clock.Now()
	if err != nil {
		return err
	}
	c.drawn = false
	return c.opts.Clock.SetHour((now.Hour + 1) % 24)
}

func (c *Clock) bumpMinute() error {
	now, err := c.opts.Clock.Now()
	if err != nil {
		return err
	}
	c.drawn = false
	return c.opts.Clock.SetMinute((now.Minute + 1) % 60)
}

func (c *Clock) resetSecond() error {
	c.drawn = false
	return c.opts.Clock.SetSecond(0)
}

func (c *Clock) stepVolume() error {
	c.volume = chime.NextVolume(c.volume)
	log.Info().Int("volume", c.volume).Msg("chime volume")
	return nil
}

func (c *Clock) testChime() error {
	if c.opts.Chime == nil {
		return nil
	}
	if t, ok := c.opts.Chime.(chimeTester); ok {
		return t.Test()
	}
	return c.opts.Chime.Chime(c.volume)
}
