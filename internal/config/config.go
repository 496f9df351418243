package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/emberglow/internal/chime"
	"github.com/coreman2200/emberglow/internal/led"
	"github.com/coreman2200/emberglow/internal/pixel"
	"github.com/coreman2200/emberglow/internal/power"
)

type PowerCfg struct {
	LimitAmps   float64 `yaml:"limit_amps"`
	WhiteCap    float64 `yaml:"white_cap"`
	SoftStartMs int     `yaml:"soft_start_ms"`
}

type SPI struct {
	Dev      string `yaml:"dev"`    // periph port name, e.g. SPI0.0
	Timing   string `yaml:"timing"` // standard | compact
	ResetUs  int    `yaml:"reset_us"`
	SettleMs int    `yaml:"settle_ms"`
}

type Candle struct {
	GlowColor  string  `yaml:"glow_color"`
	EmberColor string  `yaml:"ember_color"`
	NearCM     float64 `yaml:"near_cm"`
	Trig       string  `yaml:"trig"`
	Echo       string  `yaml:"echo"`
}

type RTC struct {
	Kind string `yaml:"kind"` // system | ds1302
	CLK  string `yaml:"clk"`
	DAT  string `yaml:"dat"`
	CE   string `yaml:"ce"`
}

type Buttons struct {
	Hour   string `yaml:"hour"`
	Minute string `yaml:"minute"`
	Second string `yaml:"second"`
	Volume string `yaml:"volume"`
	Test   string `yaml:"test"`
}

type Clock struct {
	ActiveFrom int      `yaml:"active_from"`
	ActiveTo   int      `yaml:"active_to"`
	Palette    []string `yaml:"palette,omitempty"`
	RTC        RTC      `yaml:"rtc"`
	Servo      string   `yaml:"servo"`
	Volume     int      `yaml:"volume"`
	Buttons    Buttons  `yaml:"buttons"`
	// PhotoChannel is the ADS1115 input of the photoresistor; -1 disables
	// auto brightness.
	PhotoChannel int    `yaml:"photo_channel"`
	Climate      bool   `yaml:"climate"`
	Display      string `yaml:"display"` // oled | log
}

type Preview struct {
	Addr string `yaml:"addr"` // empty disables the preview server
}

type Config struct {
	App        string  `yaml:"app"`    // "candle" | "clock"
	Driver     string  `yaml:"driver"` // "ws2812" | "nrzled" | "pwm" | "console" | "sim"
	LEDs       int     `yaml:"leds"`
	GPIO       int     `yaml:"gpio"`
	ColorOrder string  `yaml:"color_order"`
	Brightness float64 `yaml:"brightness"`
	RefreshMs  int     `yaml:"refresh_ms"`
	I2C        string  `yaml:"i2c"`

	SPI     SPI      `yaml:"spi"`
	Power   PowerCfg `yaml:"power"`
	Candle  Candle   `yaml:"candle"`
	Clock   Clock    `yaml:"clock"`
	Preview Preview  `yaml:"preview"`
}

// Default is the built-in configuration: a 16 LED candle on the SPI encoder.
func Default() *Config {
	return &Config{
		App:        "candle",
		Driver:     "ws2812",
		LEDs:       16,
		GPIO:       18,
		ColorOrder: "GRB",
		Brightness: 1.0,
		RefreshMs:  60,
		SPI: SPI{
			Timing:   "standard",
			ResetUs:  300,
			SettleMs: 10,
		},
		Candle: Candle{
			GlowColor:  pixel.Color{R: 255, G: 120, B: 10}.Hex(),
			EmberColor: pixel.Color{R: 255, G: 60, B: 10}.Hex(),
			NearCM:     120,
			Trig:       "GPIO23",
			Echo:       "GPIO24",
		},
		Clock: Clock{
			ActiveFrom:   8,
			ActiveTo:     23,
			RTC:          RTC{Kind: "system", CLK: "GPIO5", DAT: "GPIO6", CE: "GPIO13"},
			Servo:        "GPIO12",
			Volume:       len(chime.Volumes) - 1,
			Buttons:      Buttons{Test: "GPIO17"},
			PhotoChannel: -1,
			Display:      "log",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.App {
	case "candle", "clock":
	default:
		bad("app: unknown %q", c.App)
	}
	switch c.Driver {
	case "ws2812", "spi", "nrzled", "pwm", "console", "sim":
	default:
		bad("driver: unknown %q", c.Driver)
	}
	if c.LEDs <= 0 {
		bad("leds: must be positive, got %d", c.LEDs)
	}
	if c.Brightness <= 0 || c.Brightness > 1 {
		bad("brightness: %v outside (0,1]", c.Brightness)
	}
	if c.RefreshMs <= 0 {
		bad("refresh_ms: must be positive, got %d", c.RefreshMs)
	}
	if t, err := led.TimingByName(c.SPI.Timing); err != nil {
		bad("spi.timing: %w", err)
	} else {
		t.Reset = c.SPIReset()
		if err := t.Validate(); err != nil {
			bad("spi: %w", err)
		}
	}
	if c.Power.LimitAmps < 0 || c.Power.WhiteCap < 0 || c.Power.SoftStartMs < 0 {
		bad("power: negative limit")
	}

	if _, err := pixel.FromHex(c.Candle.GlowColor); err != nil {
		bad("candle.glow_color: %w", err)
	}
	if _, err := pixel.FromHex(c.Candle.EmberColor); err != nil {
		bad("candle.ember_color: %w", err)
	}
	if c.Candle.NearCM <= 0 {
		bad("candle.near_cm: must be positive, got %v", c.Candle.NearCM)
	}

	cl := c.Clock
	if cl.ActiveFrom < 0 || cl.ActiveTo > 23 || cl.ActiveFrom > cl.ActiveTo {
		bad("clock: active hours %d..%d invalid", cl.ActiveFrom, cl.ActiveTo)
	}
	if _, err := c.Palette(); err != nil {
		bad("clock.palette: %w", err)
	}
	if cl.Volume < 0 || cl.Volume >= len(chime.Volumes) {
		bad("clock.volume: %d outside 0..%d", cl.Volume, len(chime.Volumes)-1)
	}
	switch cl.RTC.Kind {
	case "system", "ds1302":
	default:
		bad("clock.rtc.kind: unknown %q", cl.RTC.Kind)
	}
	switch cl.Display {
	case "oled", "log":
	default:
		bad("clock.display: unknown %q", cl.Display)
	}
	if cl.PhotoChannel > 3 {
		bad("clock.photo_channel: %d outside -1..3", cl.PhotoChannel)
	}
	return errors.Join(errs...)
}

func (c *Config) Refresh() time.Duration {
	return time.Duration(c.RefreshMs) * time.Millisecond
}

func (c *Config) SPIReset() time.Duration {
	return time.Duration(c.SPI.ResetUs) * time.Microsecond
}

// LED is the driver selection for led.Open.
func (c *Config) LED() led.Config {
	settle := time.Duration(c.SPI.SettleMs) * time.Millisecond
	if c.SPI.SettleMs == 0 {
		settle = -1
	}
	return led.Config{
		Name:       c.Driver,
		Count:      c.LEDs,
		SPIDev:     c.SPI.Dev,
		Timing:     c.SPI.Timing,
		Reset:      c.SPIReset(),
		Settle:     settle,
		ColorOrder: c.ColorOrder,
		GPIO:       c.GPIO,
	}
}

func (c *Config) PowerLimits() power.Limits {
	return power.Limits{
		BudgetmA:  c.Power.LimitAmps * 1000,
		WhiteCap:  c.Power.WhiteCap,
		SoftStart: time.Duration(c.Power.SoftStartMs) * time.Millisecond,
	}
}

// Colors returns the parsed glow and ember base colors.
func (c *Config) Colors() (glow, ember pixel.Color, err error) {
	if glow, err = pixel.FromHex(c.Candle.GlowColor); err != nil {
		return
	}
	ember, err = pixel.FromHex(c.Candle.EmberColor)
	return
}

// Palette returns the clock palette, or nil for the built-in one.
func (c *Config) Palette() ([]pixel.Color, error) {
	if len(c.Clock.Palette) == 0 {
		return nil, nil
	}
	out := make([]pixel.Color, 0, len(c.Clock.Palette))
	for _, h := range c.Clock.Palette {
		p, err := pixel.FromHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
