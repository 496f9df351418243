package led

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// ErrFrameLength is returned when a frame does not carry exactly one color per
// LED.
var ErrFrameLength = errors.New("frame length mismatch")

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one frame to the strip. len(frame) must equal the LED
	// count the driver was opened with.
	Write(frame []pixel.Color) error
	// Close releases resources.
	Close() error
}

// Config selects and parameterises a driver for Open.
type Config struct {
	// Name is one of "ws2812", "nrzled", "pwm", "console" or "sim".
	Name  string
	Count int

	// SPIDev is the periph SPI port name; empty picks the first port.
	SPIDev string
	// Timing is "standard" (8MHz, 2/5/3) or "compact" (2.4MHz, 1/1/1).
	Timing     string
	Reset      time.Duration
	Settle     time.Duration
	ColorOrder string

	// GPIO is the BCM data pin used by the pwm driver.
	GPIO int
}

// Open builds the driver named by cfg.Name.
func Open(cfg Config) (Driver, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", cfg.Count)
	}

	switch cfg.Name {
	case "ws2812", "spi":
		t, err := TimingByName(cfg.Timing)
		if err != nil {
			return nil, err
		}
		if cfg.Reset > 0 {
			t.Reset = cfg.Reset
		}
		port, err := spireg.Open(cfg.SPIDev)
		if err != nil {
			return nil, fmt.Errorf("open spi port %q: %w", cfg.SPIDev, err)
		}
		d, err := NewWS2812(port, WS2812Opts{
			Count:      cfg.Count,
			Timing:     t,
			ColorOrder: cfg.ColorOrder,
			Settle:     cfg.Settle,
		})
		if err != nil {
			_ = port.Close()
			return nil, err
		}
		d.closer = port
		return d, nil

	case "nrzled":
		port, err := spireg.Open(cfg.SPIDev)
		if err != nil {
			return nil, fmt.Errorf("open spi port %q: %w", cfg.SPIDev, err)
		}
		d, err := NewNRZ(port, cfg.Count, 2500*physic.KiloHertz)
		if err != nil {
			_ = port.Close()
			return nil, err
		}
		d.closer = port
		return d, nil

	case "pwm":
		return NewPWM(cfg.GPIO, cfg.Count)

	case "console":
		return NewConsole(cfg.Count), nil

	case "sim", "":
		return NewSim(cfg.Count), nil

	default:
		return nil, fmt.Errorf("unknown LED driver %q", cfg.Name)
	}
}

// Tee writes every frame to a primary driver and mirrors it to secondary
// sinks. Only the primary's error is returned.
type Tee struct {
	primary Driver
	mirrors []Driver
}

func NewTee(primary Driver, mirrors ...Driver) *Tee {
	return &Tee{primary: primary, mirrors: mirrors}
}

func (t *Tee) Write(frame []pixel.Color) error {
	err := t.primary.Write(frame)
	for _, m := range t.mirrors {
		if merr := m.Write(frame); merr != nil {
			log.Debug().Err(merr).Msg("mirror write")
		}
	}
	return err
}

func (t *Tee) Close() error {
	errs := []error{t.primary.Close()}
	for _, m := range t.mirrors {
		errs = append(errs, m.Close())
	}
	return errors.Join(errs...)
}

func checkLen(frame []pixel.Color, count int) error {
	if len(frame) != count {
		return fmt.Errorf("%w: got %d colors for %d LEDs", ErrFrameLength, len(frame), count)
	}
	return nil
}
