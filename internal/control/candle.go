package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/emberglow/internal/flicker"
	"github.com/coreman2200/emberglow/internal/sensor"
)

// Animator advances flicker lights and pushes the result to the strip.
type Animator interface {
	Advance(elapsed time.Duration, p flicker.Profile) error
	Render() error
}

// Candle glows brighter while someone is near and settles to embers when
// they leave.
type Candle struct {
	anim    Animator
	dist    sensor.Distance
	nearCM  float64
	profile flicker.Profile
}

// NewCandle starts in Ember until the first good reading. With no distance
// sensor the candle always glows.
func NewCandle(anim Animator, dist sensor.Distance, nearCM float64) *Candle {
	p := flicker.Ember
	if dist == nil {
		p = flicker.Glow
	}
	return &Candle{anim: anim, dist: dist, nearCM: nearCM, profile: p}
}

func (c *Candle) Profile() flicker.Profile { return c.profile }

func (c *Candle) Step(_ context.Context, elapsed time.Duration) error {
	var errs []error
	if c.dist != nil {
		if cm, err := c.dist.Read(); err != nil {
			errs = append(errs, fmt.Errorf("distance: %w", err))
		} else {
			p := flicker.Ember
			if cm < c.nearCM {
				p = flicker.Glow
			}
			if p != c.profile {
				log.Info().Float64("cm", cm).Stringer("profile", p).Msg("candle profile")
				c.profile = p
			}
		}
	}
	if err := c.anim.Advance(elapsed, c.profile); err != nil {
		errs = append(errs, err)
	}
	if err := c.anim.Render(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
