package emberglow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/emberglow"
	"github.com/coreman2200/emberglow/internal/flicker"
	"github.com/coreman2200/emberglow/internal/led"
	"github.com/coreman2200/emberglow/internal/pixel"
)

func newEngine(t *testing.T, o Options) (*Engine, *led.Sim) {
	t.Helper()
	if o.LEDCount == 0 {
		o.LEDCount = DefaultLEDCount
	}
	sim := led.NewSim(o.LEDCount)
	o.Output = sim
	var seed uint64
	o.NewRand = func() flicker.Rand {
		seed++
		return flicker.NewSeeded(seed)
	}
	e, err := New(o)
	require.NoError(t, err)
	return e, sim
}

func TestEngineGlowFirstAdvance(t *testing.T) {
	e, sim := newEngine(t, Options{})
	require.NoError(t, e.Advance(0, flicker.Glow))
	require.NoError(t, e.Render())

	frame := sim.Last()
	require.Len(t, frame, 16)
	for i, c := range frame {
		// Glow brightness is always within 30..100 percent of (255,120,10).
		assert.GreaterOrEqual(t, int(c.R), 255*30/100, "pixel %d", i)
		assert.LessOrEqual(t, int(c.G), 120, "pixel %d", i)
		assert.LessOrEqual(t, int(c.B), 10, "pixel %d", i)
	}
}

func TestEngineEmberAndBrightness(t *testing.T) {
	e, sim := newEngine(t, Options{Brightness: 0.5})
	require.NoError(t, e.Advance(0, flicker.Ember))
	require.NoError(t, e.Render())

	for _, c := range sim.Last() {
		assert.Equal(t, pixel.Color{R: 51, G: 12, B: 2}, c)
	}
	raw, err := e.Buffer().At(0)
	require.NoError(t, err)
	assert.Equal(t, pixel.Color{R: 102, G: 24, B: 4}, raw, "buffer keeps unscaled colors")
}

func TestEngineProfilesKeepSeparateState(t *testing.T) {
	e, _ := newEngine(t, Options{LEDCount: 4})
	require.NoError(t, e.Advance(0, flicker.Ember))
	// Ember lights hold for 20ms; 10ms later nothing changes.
	e.Buffer().Fill(pixel.Black)
	require.NoError(t, e.Advance(10*time.Millisecond, flicker.Ember))
	c, _ := e.Buffer().At(2)
	assert.Equal(t, pixel.Black, c)

	require.NoError(t, e.Advance(10*time.Millisecond, flicker.Ember))
	c, _ = e.Buffer().At(2)
	assert.Equal(t, pixel.Color{R: 102, G: 24, B: 4}, c)
}

func TestEngineDefaults(t *testing.T) {
	e, _ := newEngine(t, Options{})
	assert.Equal(t, DefaultRefreshInterval, e.RefreshInterval())
	assert.Equal(t, DefaultLEDCount, e.LEDCount())
	assert.Equal(t, DefaultBrightness, e.Buffer().Brightness())
}

func TestEngineRejectsBadCount(t *testing.T) {
	_, err := New(Options{LEDCount: -1, Output: led.NewSim(1)})
	assert.ErrorIs(t, err, pixel.ErrOutOfRange)
}

func TestEngineOpensConfiguredDriver(t *testing.T) {
	e, err := New(Options{LEDCount: 8, LED: led.Config{Name: "sim"}})
	require.NoError(t, err)
	assert.IsType(t, &led.Sim{}, e.Driver())

	_, err = New(Options{LED: led.Config{Name: "bogus"}})
	assert.Error(t, err)
}

func TestEngineCloseBlanks(t *testing.T) {
	e, sim := newEngine(t, Options{LEDCount: 3})
	require.NoError(t, e.Advance(0, flicker.Ember))
	require.NoError(t, e.Render())
	require.NoError(t, e.Close())
	assert.Equal(t, make([]pixel.Color, 3), sim.Last())
}
