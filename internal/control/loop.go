// Package control runs the applications on a fixed cadence.
package control

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Stepper is one application iteration. elapsed is the time since the
// previous call, zero on the first.
type Stepper interface {
	Step(ctx context.Context, elapsed time.Duration) error
}

// StepFunc adapts a function to Stepper.
type StepFunc func(ctx context.Context, elapsed time.Duration) error

func (f StepFunc) Step(ctx context.Context, elapsed time.Duration) error { return f(ctx, elapsed) }

// Loop calls a Stepper once per interval. A slow step delays the next one
// rather than queueing ticks.
type Loop struct {
	interval time.Duration
	now      func() time.Time

	// OnError, if set, sees every step error after it is logged.
	OnError func(error)
}

func NewLoop(interval time.Duration) *Loop {
	return &Loop{interval: interval, now: time.Now}
}

// Run steps s until ctx is done. Step errors are logged and never stop the
// loop.
func (l *Loop) Run(ctx context.Context, s Stepper) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := l.now()
	l.step(ctx, s, 0)
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("control loop stopped")
			return nil
		case <-ticker.C:
			now := l.now()
			elapsed := now.Sub(last)
			last = now
			l.step(ctx, s, elapsed)
		}
	}
}

func (l *Loop) step(ctx context.Context, s Stepper, elapsed time.Duration) {
	if err := s.Step(ctx, elapsed); err != nil {
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("step failed")
		if l.OnError != nil {
			l.OnError(err)
		}
	}
}
