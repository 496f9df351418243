package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/emberglow/internal/pixel"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 60*time.Millisecond, c.Refresh())

	glow, ember, err := c.Colors()
	require.NoError(t, err)
	assert.Equal(t, pixel.Color{R: 255, G: 120, B: 10}, glow)
	assert.Equal(t, pixel.Color{R: 255, G: 60, B: 10}, ember)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app: clock
leds: 60
clock:
  active_from: 7
  palette: ["#ff0000", "#00ff00"]
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "clock", c.App)
	assert.Equal(t, 60, c.LEDs)
	assert.Equal(t, 7, c.Clock.ActiveFrom)
	assert.Equal(t, 23, c.Clock.ActiveTo, "kept from defaults")
	assert.Equal(t, "ws2812", c.Driver)

	p, err := c.Palette()
	require.NoError(t, err)
	assert.Equal(t, []pixel.Color{pixel.Red, pixel.Green}, p)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Power.LimitAmps = 2.5
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leds: [1"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateReportsAllFields(t *testing.T) {
	c := Default()
	c.App = "lamp"
	c.LEDs = 0
	c.Brightness = 1.5
	c.SPI.Timing = "fast"
	c.Candle.GlowColor = "orange"
	c.Clock.ActiveFrom, c.Clock.ActiveTo = 20, 8
	c.Clock.Volume = 9

	err := c.Validate()
	require.Error(t, err)
	for _, field := range []string{"app", "leds", "brightness", "spi.timing", "candle.glow_color", "active hours", "clock.volume"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestValidateBrightnessRange(t *testing.T) {
	for _, b := range []float64{0, -0.1, 1.01} {
		c := Default()
		c.Brightness = b
		err := c.Validate()
		require.Error(t, err, "brightness %v", b)
		assert.Contains(t, err.Error(), "brightness")
	}
	for _, b := range []float64{0.01, 0.5, 1} {
		c := Default()
		c.Brightness = b
		assert.NoError(t, c.Validate(), "brightness %v", b)
	}
}

func TestValidateShortLatch(t *testing.T) {
	c := Default()
	c.SPI.ResetUs = 10
	assert.Error(t, c.Validate())
}

func TestDerivedSettings(t *testing.T) {
	c := Default()
	c.Power = PowerCfg{LimitAmps: 1.2, WhiteCap: 2, SoftStartMs: 500}
	l := c.PowerLimits()
	assert.Equal(t, 1200.0, l.BudgetmA)
	assert.Equal(t, 2.0, l.WhiteCap)
	assert.Equal(t, 500*time.Millisecond, l.SoftStart)

	lc := c.LED()
	assert.Equal(t, "ws2812", lc.Name)
	assert.Equal(t, 16, lc.Count)
	assert.Equal(t, 300*time.Microsecond, lc.Reset)
	assert.Equal(t, 10*time.Millisecond, lc.Settle)

	c.SPI.SettleMs = 0
	assert.Less(t, int64(c.LED().Settle), int64(0))
}
