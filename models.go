package emberglow

import (
	"time"

	"github.com/coreman2200/emberglow/internal/flicker"
	"github.com/coreman2200/emberglow/internal/led"
	"github.com/coreman2200/emberglow/internal/pixel"
)

const (
	DefaultLEDCount        = 16
	DefaultRefreshInterval = 60 * time.Millisecond
	DefaultBrightness      = 1.0
)

// Options configures an Engine. Zero values take the defaults above.
type Options struct {
	LEDCount int
	// LED selects the strip driver opened by New.
	LED led.Config
	// Output overrides LED with an already opened driver.
	Output led.Driver

	RefreshInterval time.Duration
	Brightness      float64

	GlowColor  pixel.Color
	EmberColor pixel.Color
	// Palette replaces the ring's NextColor sequence when non-empty.
	Palette []pixel.Color

	// NewRand seeds one random source per light; flicker.NewRand when nil.
	NewRand func() flicker.Rand
}

func (o Options) withDefaults() Options {
	if o.LEDCount == 0 {
		o.LEDCount = DefaultLEDCount
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.Brightness == 0 {
		o.Brightness = DefaultBrightness
	}
	if o.GlowColor == (pixel.Color{}) {
		o.GlowColor = flicker.DefaultGlowColor
	}
	if o.EmberColor == (pixel.Color{}) {
		o.EmberColor = flicker.DefaultEmberColor
	}
	if o.NewRand == nil {
		o.NewRand = flicker.NewRand
	}
	return o
}
