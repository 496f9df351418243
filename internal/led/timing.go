package led

import (
	"errors"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/physic"
)

// ErrTimingViolation means the transmission could not meet WS2812 pulse
// timing. The affected frame is dropped.
var ErrTimingViolation = errors.New("hardware timing violation")

// Timing describes the WS2812 bit symbols in units of one SPI clock period.
// A one is high for T1+T2 units then low for T3; a zero is high for T1 then
// low for T2+T3. Reset is the low latch gap after a frame.
type Timing struct {
	Clock      physic.Frequency
	T1, T2, T3 int
	Reset      time.Duration
}

var (
	// StandardTiming is 1.25us per bit at 8MHz: 2+5+3 units.
	StandardTiming = Timing{Clock: 8 * physic.MegaHertz, T1: 2, T2: 5, T3: 3, Reset: 300 * time.Microsecond}
	// CompactTiming expands each bit to 110/100 at 2.4MHz.
	CompactTiming = Timing{Clock: 2400 * physic.KiloHertz, T1: 1, T2: 1, T3: 1, Reset: 300 * time.Microsecond}
)

// Decode limits of WS2812-class receivers.
const (
	maxZeroHigh = 550 * time.Nanosecond
	minOneHigh  = 650 * time.Nanosecond
	minLow      = 200 * time.Nanosecond
	maxLow      = 5 * time.Microsecond
	minReset    = 50 * time.Microsecond
)

// TimingByName resolves a configured timing preset.
func TimingByName(name string) (Timing, error) {
	switch name {
	case "", "standard":
		return StandardTiming, nil
	case "compact":
		return CompactTiming, nil
	default:
		return Timing{}, fmt.Errorf("unknown timing preset %q", name)
	}
}

// Unit returns one SPI clock period.
func (t Timing) Unit() time.Duration {
	if t.Clock <= 0 {
		return 0
	}
	num := int64(time.Second) * int64(physic.Hertz)
	return time.Duration((num + int64(t.Clock)/2) / int64(t.Clock))
}

// UnitsPerBit is the number of SPI bits emitted per data bit.
func (t Timing) UnitsPerBit() int {
	return t.T1 + t.T2 + t.T3
}

// ResetBytes is the number of zero bytes that cover the latch gap.
func (t Timing) ResetBytes() int {
	hz := float64(t.Clock) / float64(physic.Hertz)
	return int(math.Ceil(t.Reset.Seconds() * hz / 8))
}

// Validate checks the pulse widths against the receiver decode limits.
func (t Timing) Validate() error {
	if t.Clock <= 0 || t.T1 <= 0 || t.T2 <= 0 || t.T3 <= 0 {
		return fmt.Errorf("%w: non-positive timing %v %d/%d/%d", ErrTimingViolation, t.Clock, t.T1, t.T2, t.T3)
	}
	u := t.Unit()
	zeroHigh := time.Duration(t.T1) * u
	oneHigh := time.Duration(t.T1+t.T2) * u
	zeroLow := time.Duration(t.T2+t.T3) * u
	oneLow := time.Duration(t.T3) * u

	switch {
	case zeroHigh > maxZeroHigh:
		return fmt.Errorf("%w: zero high %v exceeds %v", ErrTimingViolation, zeroHigh, maxZeroHigh)
	case oneHigh < minOneHigh:
		return fmt.Errorf("%w: one high %v below %v", ErrTimingViolation, oneHigh, minOneHigh)
	case oneLow < minLow:
		return fmt.Errorf("%w: one low %v below %v", ErrTimingViolation, oneLow, minLow)
	case zeroLow > maxLow:
		return fmt.Errorf("%w: zero low %v reads as a latch", ErrTimingViolation, zeroLow)
	case t.Reset < minReset:
		return fmt.Errorf("%w: latch gap %v below %v", ErrTimingViolation, t.Reset, minReset)
	}
	return nil
}

// buildLUT expands every byte value into UnitsPerBit output bytes, MSB first.
func (t Timing) buildLUT() []byte {
	bpb := t.UnitsPerBit()
	lut := make([]byte, 256*bpb)
	for v := 0; v < 256; v++ {
		out := lut[v*bpb : (v+1)*bpb]
		pos := 0
		for bit := 7; bit >= 0; bit-- {
			high := t.T1
			if (v>>bit)&1 == 1 {
				high = t.T1 + t.T2
			}
			for k := 0; k < bpb; k++ {
				if k < high {
					out[pos/8] |= 0x80 >> (pos % 8)
				}
				pos++
			}
		}
	}
	return lut
}
