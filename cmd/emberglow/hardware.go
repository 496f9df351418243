package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/coreman2200/emberglow/internal/chime"
	"github.com/coreman2200/emberglow/internal/config"
	"github.com/coreman2200/emberglow/internal/control"
	"github.com/coreman2200/emberglow/internal/display"
	"github.com/coreman2200/emberglow/internal/input"
	"github.com/coreman2200/emberglow/internal/ring"
	"github.com/coreman2200/emberglow/internal/rtc"
	"github.com/coreman2200/emberglow/internal/sensor"
)

const (
	bme280Addr  = 0x76
	photoSupply = 3300 * physic.MilliVolt
)

// photoChannels maps config channel numbers to single-ended ADS1115 inputs.
var photoChannels = [...]ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

// hardware opens the optional peripherals. Anything missing is logged and
// left out; the applications run without it.
type hardware struct {
	cfg *config.Config
	ok  bool

	bus     i2c.BusCloser
	busErr  error
	closers []func() error
}

func newHardware(cfg *config.Config, ok bool) *hardware {
	return &hardware{cfg: cfg, ok: ok}
}

func (h *hardware) pin(name string) gpio.PinIO {
	if !h.ok || name == "" {
		return nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		log.Warn().Str("pin", name).Msg("no such GPIO")
	}
	return p
}

func (h *hardware) i2c() (i2c.Bus, error) {
	if !h.ok {
		return nil, errors.New("host not initialized")
	}
	if h.bus == nil && h.busErr == nil {
		h.bus, h.busErr = i2creg.Open(h.cfg.I2C)
		if h.busErr == nil {
			h.closers = append(h.closers, h.bus.Close)
		}
	}
	return h.bus, h.busErr
}

func (h *hardware) distance() sensor.Distance {
	trig, echo := h.pin(h.cfg.Candle.Trig), h.pin(h.cfg.Candle.Echo)
	if trig == nil || echo == nil {
		log.Info().Msg("no distance sensor; candle will glow")
		return nil
	}
	d, err := sensor.NewHCSR04(trig, echo)
	if err != nil {
		log.Warn().Err(err).Msg("distance sensor")
		return nil
	}
	return d
}

func (h *hardware) clock(r *ring.Renderer) (control.ClockOptions, control.ClockButtons) {
	cl := h.cfg.Clock
	opts := control.ClockOptions{
		Ring:       r,
		Clock:      h.rtc(),
		Display:    h.display(),
		ActiveFrom: cl.ActiveFrom,
		ActiveTo:   cl.ActiveTo,
		Volume:     cl.Volume,
		Brightness: h.cfg.Brightness,
	}
	if p := h.pin(cl.Servo); p != nil {
		opts.Chime = chime.New(chime.NewServo(p))
	}
	if cl.PhotoChannel >= 0 {
		if bus, err := h.i2c(); err != nil {
			log.Warn().Err(err).Msg("photo sensor")
		} else if ph, err := sensor.NewPhoto(bus, photoChannels[cl.PhotoChannel], photoSupply); err != nil {
			log.Warn().Err(err).Msg("photo sensor")
		} else {
			opts.Light = ph
		}
	}
	if cl.Climate {
		if bus, err := h.i2c(); err != nil {
			log.Warn().Err(err).Msg("climate sensor")
		} else if bme, err := sensor.NewBME280(bus, bme280Addr); err != nil {
			log.Warn().Err(err).Msg("climate sensor")
		} else {
			opts.Climate = bme
		}
	}

	b := cl.Buttons
	return opts, control.ClockButtons{
		Hour:   h.button(b.Hour),
		Minute: h.button(b.Minute),
		Second: h.button(b.Second),
		Volume: h.button(b.Volume),
		Test:   h.button(b.Test),
	}
}

func (h *hardware) rtc() rtc.Clock {
	r := h.cfg.Clock.RTC
	if r.Kind == "ds1302" {
		clk, dat, ce := h.pin(r.CLK), h.pin(r.DAT), h.pin(r.CE)
		if clk != nil && dat != nil && ce != nil {
			ds, err := rtc.NewDS1302(clk, dat, ce)
			if err == nil {
				return ds
			}
			log.Warn().Err(err).Msg("ds1302; using system clock")
		}
	}
	return rtc.NewSystem()
}

func (h *hardware) display() display.Text {
	if h.cfg.Clock.Display == "oled" {
		bus, err := h.i2c()
		if err == nil {
			var o *display.OLED
			if o, err = display.NewOLED(bus); err == nil {
				h.closers = append(h.closers, o.Close)
				return o
			}
		}
		log.Warn().Err(err).Msg("oled; logging the time instead")
	}
	return &display.Log{}
}

// button returns nil for an unset or missing pin so the binding is skipped.
func (h *hardware) button(name string) input.Button {
	p := h.pin(name)
	if p == nil {
		return nil
	}
	b, err := input.NewGPIOButton(p, gpio.PullDown)
	if err != nil {
		log.Warn().Err(err).Str("pin", name).Msg("button")
		return nil
	}
	return b
}

func (h *hardware) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close peripheral")
		}
	}
}
