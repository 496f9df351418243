// Package chime strikes a bell with a hobby servo.
package chime

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	servoFreq   = 50 * physic.Hertz
	minPulseMs  = 0.5
	maxPulseMs  = 2.5
	periodMs    = 20.0
	maxAngle    = 180.0
	strikeAngle = 140

	returnDelay = 30 * time.Millisecond
	testDelay   = 100 * time.Millisecond
)

// Servo positions a standard 50Hz hobby servo.
type Servo struct {
	pin gpio.PinOut
}

func NewServo(pin gpio.PinOut) *Servo {
	return &Servo{pin: pin}
}

// Duty maps an angle in [0,180] onto a 0.5-2.5ms pulse in a 20ms period.
func Duty(angle float64) gpio.Duty {
	angle = math.Max(0, math.Min(maxAngle, angle))
	pulse := minPulseMs + angle*(maxPulseMs-minPulseMs)/maxAngle
	return gpio.Duty(math.Round(pulse / periodMs * float64(gpio.DutyMax)))
}

func (s *Servo) Write(angle float64) error {
	if err := s.pin.PWM(Duty(angle), servoFreq); err != nil {
		return fmt.Errorf("servo %s: %w", s.pin, err)
	}
	return nil
}

// Volumes are strike sweep step delays, quietest first. A faster swing hits
// the bell harder.
var Volumes = []time.Duration{
	60 * time.Millisecond,
	30 * time.Millisecond,
	15 * time.Millisecond,
	5 * time.Millisecond,
	0,
}

// NextVolume steps to the next level, wrapping to the quietest.
func NextVolume(v int) int {
	return (v + 1) % len(Volumes)
}

func volumeDelay(v int) time.Duration {
	if v < 0 {
		v = 0
	}
	if v >= len(Volumes) {
		v = len(Volumes) - 1
	}
	return Volumes[v]
}

// Chimer strikes the bell once.
type Chimer interface {
	Chime(volume int) error
}

// Chime sweeps the servo out to the strike angle and back.
type Chime struct {
	servo *Servo
	sleep func(time.Duration)
}

func New(servo *Servo) *Chime {
	return &Chime{servo: servo, sleep: time.Sleep}
}

func (c *Chime) Chime(volume int) error {
	return c.sweep(volumeDelay(volume))
}

// Test runs a slow strike for checking the mechanism.
func (c *Chime) Test() error {
	return c.sweep(testDelay)
}

func (c *Chime) sweep(out time.Duration) error {
	for a := 0; a < strikeAngle; a++ {
		if err := c.servo.Write(float64(a)); err != nil {
			return err
		}
		c.sleep(out)
	}
	for a := strikeAngle; a >= 0; a-- {
		if err := c.servo.Write(float64(a)); err != nil {
			return err
		}
		c.sleep(returnDelay)
	}
	return nil
}

// Strikes is the number of strikes for hour on a 12-hour dial. Midnight and
// noon both strike twelve.
func Strikes(hour int) int {
	h := hour % 12
	if h <= 0 {
		h += 12
	}
	return h
}

// Hourly strikes c once per hour on a 12-hour dial.
func Hourly(c Chimer, hour, volume int) error {
	n := Strikes(hour)
	for i := 0; i < n; i++ {
		log.Debug().Int("hour", hour).Int("strike", i+1).Msg("dong")
		if err := c.Chime(volume); err != nil {
			return fmt.Errorf("strike %d of %d: %w", i+1, n, err)
		}
	}
	return nil
}
