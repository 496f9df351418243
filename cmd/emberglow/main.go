// Command emberglow runs the candle or the ring clock on a WS2812 strip.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"periph.io/x/host/v3"

	"github.com/coreman2200/emberglow"
	"github.com/coreman2200/emberglow/internal/config"
	"github.com/coreman2200/emberglow/internal/control"
	"github.com/coreman2200/emberglow/internal/led"
	"github.com/coreman2200/emberglow/internal/power"
	"github.com/coreman2200/emberglow/internal/preview"
	"github.com/coreman2200/emberglow/internal/ring"
)

var (
	configPath = "config.yaml"
	appName    = ""
	driverName = ""
	ledCount   = 0
	brightness = 0.0
	addr       = ""
	selfTest   = ""
	simOnly    = false
	verbose    = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "path to config.yaml")
	pflag.StringVar(&appName, "app", appName, "application: candle | clock")
	pflag.StringVarP(&driverName, "driver", "d", driverName, "driver: ws2812 | nrzled | pwm | console | sim")
	pflag.IntVar(&ledCount, "leds", ledCount, "number of LEDs on the ring")
	pflag.Float64Var(&brightness, "brightness", brightness, "global brightness in (0,1]")
	pflag.StringVarP(&addr, "addr", "a", addr, "preview server address, e.g. :8080")
	pflag.StringVar(&selfTest, "selftest", selfTest, "run a wiring test and exit: index_sweep | rgb_channels")
	pflag.BoolVar(&simOnly, "sim-only", simOnly, "force simulation (no hardware output)")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose logging")
}

func main() {
	pflag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("emberglow")
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}

	flags := pflag.CommandLine
	if flags.Changed("app") {
		cfg.App = appName
	}
	if flags.Changed("driver") {
		cfg.Driver = driverName
	}
	if flags.Changed("leds") {
		cfg.LEDs = ledCount
	}
	if flags.Changed("brightness") {
		cfg.Brightness = brightness
	}
	if flags.Changed("addr") {
		cfg.Preview.Addr = addr
	}
	if simOnly {
		cfg.Driver = "sim"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hwOK := true
	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; hardware unavailable")
		hwOK = false
	}

	out, err := led.Open(cfg.LED())
	if err != nil {
		log.Warn().Err(err).
			Str("driver", cfg.Driver).
			Str("dev", cfg.SPI.Dev).
			Msg("LED driver init failed; falling back to SIM")
		out = led.NewSim(cfg.LEDs)
	}
	var sink led.Driver = power.Wrap(out, cfg.PowerLimits())

	var prev *preview.Server
	if cfg.Preview.Addr != "" {
		prev = preview.New(cfg.LEDs, cfg.Driver)
		sink = led.NewTee(sink, prev)
	}

	glow, ember, err := cfg.Colors()
	if err != nil {
		return err
	}
	palette, err := cfg.Palette()
	if err != nil {
		return err
	}

	eng, err := emberglow.New(emberglow.Options{
		LEDCount:        cfg.LEDs,
		Output:          sink,
		RefreshInterval: cfg.Refresh(),
		Brightness:      cfg.Brightness,
		GlowColor:       glow,
		EmberColor:      ember,
		Palette:         palette,
	})
	if err != nil {
		_ = sink.Close()
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Warn().Err(err).Msg("driver close")
		}
	}()

	if selfTest != "" {
		kind := ring.TestKind(selfTest)
		if kind != ring.IndexSweep && kind != ring.RGBTest {
			return fmt.Errorf("unknown self test %q", selfTest)
		}
		log.Info().Str("test", selfTest).Msg("running self test")
		return ring.NewSelfTest(kind).Run(eng.Ring(), 250*time.Millisecond)
	}

	hw := newHardware(cfg, hwOK)
	defer hw.Close()

	var step control.Stepper
	switch cfg.App {
	case "candle":
		step = control.NewCandle(eng, hw.distance(), cfg.Candle.NearCM)
	case "clock":
		opts, buttons := hw.clock(eng.Ring())
		step = control.NewClock(opts, buttons)
	default:
		return fmt.Errorf("unknown app %q", cfg.App)
	}

	loop := control.NewLoop(eng.RefreshInterval())
	if prev != nil {
		loop.OnError = func(err error) {
			prev.Report(preview.Diagnostic{
				Severity: preview.Warn,
				Code:     "STEP_FAILED",
				Summary:  "animation step failed",
				Detail:   err.Error(),
			})
		}
	}

	log.Info().
		Str("app", cfg.App).
		Str("driver", cfg.Driver).
		Int("leds", cfg.LEDs).
		Dur("refresh", eng.RefreshInterval()).
		Msg("starting")

	if err := runServices(ctx, loop, step, prev, cfg.Preview.Addr); err != nil {
		return err
	}
	log.Info().Msg("shutting down")
	return nil
}

// runServices runs the control loop, and the preview server when prev is set,
// until ctx is done. A preview failure is logged and leaves the loop running.
func runServices(ctx context.Context, loop *control.Loop, step control.Stepper, prev *preview.Server, addr string) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return loop.Run(ctx, step)
	})
	if prev != nil {
		errg.Go(func() error {
			if err := prev.Serve(ctx, addr); err != nil {
				log.Warn().Err(err).Str("addr", addr).Msg("preview server stopped; LEDs keep running")
			}
			return nil
		})
	}
	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
