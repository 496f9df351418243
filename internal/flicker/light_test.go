package flicker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// fixedMode always returns the same event.
type fixedMode struct {
	ev   Event
	base pixel.Color
}

func (f fixedMode) Next(Rand) Event   { return f.ev }
func (f fixedMode) Base() pixel.Color { return f.base }

func TestGlowRingFirstAdvance(t *testing.T) {
	buf, err := pixel.NewBuffer(16)
	require.NoError(t, err)
	c := NewCandle(16, GlowMode{Color: DefaultGlowColor}, NewRand)

	for _, l := range c.Lights() {
		require.Equal(t, time.Duration(0), l.Remaining())
	}
	require.NoError(t, c.Advance(0, buf))

	snap := buf.Snapshot()
	for i, l := range c.Lights() {
		ev := l.Last()
		assert.Greater(t, l.Remaining(), time.Duration(0), "light %d must hold", i)
		assert.GreaterOrEqual(t, ev.Brightness, 30)
		assert.LessOrEqual(t, ev.Brightness, 100)
		assert.Equal(t, DefaultGlowColor.Scale(ev.Brightness), snap[i])
	}
}

func TestLightHoldsUntilCountdownExpires(t *testing.T) {
	buf, err := pixel.NewBuffer(1)
	require.NoError(t, err)
	l := NewLight(0, fixedMode{ev: Event{Brightness: 50, Duration: 20 * time.Millisecond}, base: pixel.White}, nil)

	require.NoError(t, l.Update(0, buf))
	assert.Equal(t, 20*time.Millisecond, l.Remaining())
	assert.Equal(t, pixel.Color{127, 127, 127}, buf.Snapshot()[0])

	buf.Fill(pixel.Black)
	require.NoError(t, l.Update(10*time.Millisecond, buf))
	assert.Equal(t, 10*time.Millisecond, l.Remaining())
	assert.Equal(t, pixel.Black, buf.Snapshot()[0], "no write while holding")

	require.NoError(t, l.Update(15*time.Millisecond, buf))
	assert.Equal(t, 20*time.Millisecond, l.Remaining(), "overshoot resets to the new duration")
	assert.Equal(t, pixel.Color{127, 127, 127}, buf.Snapshot()[0])
}

func TestZeroDurationStillHolds(t *testing.T) {
	buf, err := pixel.NewBuffer(1)
	require.NoError(t, err)
	l := NewLight(0, fixedMode{ev: Event{Brightness: 30}, base: pixel.White}, nil)

	require.NoError(t, l.Update(0, buf))
	assert.Equal(t, minHold, l.Remaining())
	assert.Equal(t, time.Duration(0), l.Last().Duration)
}

func TestEmberCandleWritesFortyPercent(t *testing.T) {
	buf, err := pixel.NewBuffer(4)
	require.NoError(t, err)
	c := NewCandle(4, EmberMode{Color: DefaultEmberColor}, NewRand)

	require.NoError(t, c.Advance(5*time.Millisecond, buf))
	for i, got := range buf.Snapshot() {
		assert.Equal(t, pixel.Color{102, 24, 4}, got, "pixel %d", i)
	}
}

func TestCandleContinuesPastOutOfRange(t *testing.T) {
	buf, err := pixel.NewBuffer(2)
	require.NoError(t, err)
	c := NewCandle(3, EmberMode{Color: pixel.White}, NewRand)

	err = c.Advance(0, buf)
	assert.ErrorIs(t, err, pixel.ErrOutOfRange)
	assert.Equal(t, pixel.White.Scale(40), buf.Snapshot()[0])
	assert.Equal(t, pixel.White.Scale(40), buf.Snapshot()[1])
}

func TestLightsDrawIndependently(t *testing.T) {
	a, b := NewLight(0, GlowMode{}, NewRand()), NewLight(1, GlowMode{}, NewRand())
	buf, err := pixel.NewBuffer(2)
	require.NoError(t, err)

	same := 0
	const rounds = 200
	for i := 0; i < rounds; i++ {
		require.NoError(t, a.Update(time.Second, buf))
		require.NoError(t, b.Update(time.Second, buf))
		if a.Last() == b.Last() {
			same++
		}
	}
	assert.Less(t, same, rounds/2, "adjacent lights should not flicker in lockstep")
}
