//go:build ws281x

package led

import (
	"fmt"
	"sync"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// PWM drives the strip from the Pi's PWM/DMA engine via rpi_ws281x.
type PWM struct {
	mu    sync.Mutex
	dev   *ws2811.WS2811
	count int
}

func NewPWM(gpio, count int) (Driver, error) {
	opt := ws2811.DefaultOptions
	opt.Channels[0].GpioPin = gpio
	opt.Channels[0].LedCount = count
	opt.Channels[0].Brightness = 255
	opt.Channels[0].StripeType = ws2811.WS2811StripGRB

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, fmt.Errorf("ws2811 setup: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("ws2811 init: %w", err)
	}
	return &PWM{dev: dev, count: count}, nil
}

func (p *PWM) Write(frame []pixel.Color) error {
	if err := checkLen(frame, p.count); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return fmt.Errorf("pwm not initialized")
	}
	// 0x00RRGGBB; the strip type handles wire order.
	leds := p.dev.Leds(0)
	for i, c := range frame {
		leds[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	}
	if err := p.dev.Render(); err != nil {
		return fmt.Errorf("%w: %w", ErrTimingViolation, err)
	}
	return nil
}

func (p *PWM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev != nil {
		p.dev.Fini()
		p.dev = nil
	}
	return nil
}
