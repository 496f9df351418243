package sensor

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	// speedOfSound in cm/s.
	speedOfSound = 34000.0

	defaultSpins   = 100000
	defaultTimeout = 30 * time.Millisecond
)

// HCSR04 times the echo pulse of an ultrasonic ranger. Both echo waits are
// bounded by an iteration cap and a deadline so a missing sensor cannot hang
// the caller.
type HCSR04 struct {
	trig gpio.PinOut
	echo gpio.PinIn

	maxSpins int
	timeout  time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

func NewHCSR04(trig gpio.PinOut, echo gpio.PinIn) (*HCSR04, error) {
	if err := trig.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("hcsr04 trig %s: %w", trig, err)
	}
	if err := echo.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("hcsr04 echo %s: %w", echo, err)
	}
	return &HCSR04{
		trig:     trig,
		echo:     echo,
		maxSpins: defaultSpins,
		timeout:  defaultTimeout,
		now:      time.Now,
		sleep:    time.Sleep,
	}, nil
}

// Read triggers one ping and returns the distance in centimeters.
func (h *HCSR04) Read() (float64, error) {
	if err := h.trig.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	h.sleep(2 * time.Microsecond)
	if err := h.trig.Out(gpio.High); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	h.sleep(10 * time.Microsecond)
	if err := h.trig.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	start, ok := h.waitFor(gpio.High)
	if !ok {
		return 0, fmt.Errorf("%w: no echo", ErrUnavailable)
	}
	end, ok := h.waitFor(gpio.Low)
	if !ok {
		return 0, fmt.Errorf("%w: echo stuck high", ErrUnavailable)
	}
	return end.Sub(start).Seconds() * speedOfSound / 2, nil
}

func (h *HCSR04) waitFor(l gpio.Level) (time.Time, bool) {
	deadline := h.now().Add(h.timeout)
	for i := 0; i < h.maxSpins; i++ {
		if h.echo.Read() == l {
			return h.now(), true
		}
		if h.now().After(deadline) {
			break
		}
	}
	return time.Time{}, false
}
