package flicker

import (
	"time"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// Event is one re-roll of a light: a brightness percentage and how long to
// hold it.
type Event struct {
	Brightness int
	Duration   time.Duration
}

// Mode is a light personality. It decides the next brightness and hold time
// and carries the unscaled base color the brightness is applied to.
type Mode interface {
	Next(r Rand) Event
	Base() pixel.Color
}

// Profile selects one of the two candle personalities.
type Profile int

const (
	// Ember is the calm, fixed-parameter light.
	Ember Profile = iota
	// Glow is the randomized flame.
	Glow
)

func (p Profile) String() string {
	switch p {
	case Ember:
		return "ember"
	case Glow:
		return "glow"
	default:
		return "unknown"
	}
}

var (
	// DefaultGlowColor is the warm flame hue.
	DefaultGlowColor = pixel.Color{R: 255, G: 120, B: 10}
	// DefaultEmberColor is the deeper, redder ember hue.
	DefaultEmberColor = pixel.Color{R: 255, G: 60, B: 10}
)

// band is one row of a probability table: rolls below upTo sample from
// [min,max].
type band struct {
	upTo     int
	min, max int
}

// Brightness bands for Glow, rolled over [0,100).
//
//	50%  77-80   barely noticeable
//	30%  80-100  air flicker
//	 5%  50-80   blown flame
//	 5%  40-50   blown flame
//	10%  30-40   blown flame
var glowBrightness = []band{
	{upTo: 50, min: 77, max: 80},
	{upTo: 80, min: 80, max: 100},
	{upTo: 85, min: 50, max: 80},
	{upTo: 90, min: 40, max: 50},
	{upTo: 100, min: 30, max: 40},
}

// Hold times in milliseconds for Glow, rolled over [0,100).
var glowDuration = []band{
	{upTo: 90, min: 20, max: 20},
	{upTo: 93, min: 20, max: 30},
	{upTo: 96, min: 10, max: 20},
	{upTo: 100, min: 0, max: 10},
}

func roll(r Rand, table []band) int {
	u := r.IntN(100)
	for _, b := range table {
		if u < b.upTo {
			return uniform(r, b.min, b.max)
		}
	}
	last := table[len(table)-1]
	return uniform(r, last.min, last.max)
}

// GlowMode is the primary flame simulation.
type GlowMode struct {
	Color pixel.Color
}

func (g GlowMode) Next(r Rand) Event {
	return Event{
		Brightness: roll(r, glowBrightness),
		Duration:   time.Duration(roll(r, glowDuration)) * time.Millisecond,
	}
}

func (g GlowMode) Base() pixel.Color { return g.Color }

// EmberMode always holds 40% for 20ms.
type EmberMode struct {
	Color pixel.Color
}

const (
	emberBrightness = 40
	emberDuration   = 20 * time.Millisecond
)

func (e EmberMode) Next(Rand) Event {
	return Event{Brightness: emberBrightness, Duration: emberDuration}
}

func (e EmberMode) Base() pixel.Color { return e.Color }
