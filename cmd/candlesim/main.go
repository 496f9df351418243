// Command candlesim plays the candle on the terminal with a simulated visitor
// walking up to it and away again.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/coreman2200/emberglow"
	"github.com/coreman2200/emberglow/internal/control"
	"github.com/coreman2200/emberglow/internal/led"
)

var (
	leds     = 16
	driver   = "console"
	duration = 20 * time.Second
	period   = 8 * time.Second
	nearCM   = 120.0
)

func init() {
	pflag.IntVar(&leds, "leds", leds, "number of LEDs")
	pflag.StringVarP(&driver, "driver", "d", driver, "driver: console | sim")
	pflag.DurationVar(&duration, "duration", duration, "how long to run, 0 for forever")
	pflag.DurationVar(&period, "visit-period", period, "one visitor approach and retreat")
	pflag.Float64Var(&nearCM, "near-cm", nearCM, "distance that wakes the candle")
}

// visitor walks from 300cm to 20cm and back once per period.
type visitor struct {
	start  time.Time
	period time.Duration
}

func newVisitor(period time.Duration) (*visitor, error) {
	if period <= 0 {
		return nil, fmt.Errorf("visit period must be positive, got %s", period)
	}
	return &visitor{start: time.Now(), period: period}, nil
}

func (v *visitor) Read() (float64, error) {
	phase := float64(time.Since(v.start)%v.period) / float64(v.period)
	if phase > 0.5 {
		phase = 1 - phase
	}
	return 300 - 560*phase, nil
}

func main() {
	pflag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	v, err := newVisitor(period)
	if err != nil {
		log.Fatal().Err(err).Msg("flags")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	eng, err := emberglow.New(emberglow.Options{
		LEDCount: leds,
		LED:      led.Config{Name: driver},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}
	defer eng.Close()

	candle := control.NewCandle(eng, v, nearCM)
	if err := control.NewLoop(eng.RefreshInterval()).Run(ctx, candle); err != nil {
		log.Fatal().Err(err).Msg("loop")
	}
}
