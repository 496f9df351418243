package led

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// DefaultSettle is the pause after every frame before the next Write.
const DefaultSettle = 10 * time.Millisecond

// WS2812Opts configures NewWS2812.
type WS2812Opts struct {
	Count  int
	Timing Timing
	// ColorOrder is the on-wire channel order, "GRB" when empty.
	ColorOrder string
	// Settle is slept after each frame. Zero uses DefaultSettle, negative
	// disables it.
	Settle time.Duration
}

// WS2812 encodes frames into WS2812 bit symbols and streams them over an SPI
// port. Each frame is followed by a zero tail that holds the line low for the
// latch gap.
type WS2812 struct {
	mu     sync.Mutex
	conn   spi.Conn
	closer io.Closer

	count    int
	colorOrd [3]byte
	timing   Timing
	settle   time.Duration

	// lut maps a byte to UnitsPerBit encoded bytes.
	lut []byte
	bpb int
	enc []byte

	latchUntil time.Time
	frames     uint64

	now   func() time.Time
	sleep func(time.Duration)
}

// NewWS2812 connects to p at the timing clock and precomputes the encoder.
func NewWS2812(p spi.Port, o WS2812Opts) (*WS2812, error) {
	if o.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", o.Count)
	}
	if err := o.Timing.Validate(); err != nil {
		return nil, err
	}
	order, err := parseOrder(o.ColorOrder)
	if err != nil {
		return nil, err
	}

	c, err := p.Connect(o.Timing.Clock, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi connect: %w", err)
	}

	bpb := o.Timing.UnitsPerBit()
	frameBytes := o.Count*3*bpb + o.Timing.ResetBytes()
	if l, ok := c.(conn.Limits); ok {
		if limit := l.MaxTxSize(); limit > 0 && frameBytes > limit {
			// A split transfer would pause the clock mid-frame.
			return nil, fmt.Errorf("%w: frame of %d bytes exceeds port limit %d", ErrTimingViolation, frameBytes, limit)
		}
	}

	settle := o.Settle
	if settle == 0 {
		settle = DefaultSettle
	}

	d := &WS2812{
		conn:     c,
		count:    o.Count,
		colorOrd: order,
		timing:   o.Timing,
		settle:   settle,
		lut:      o.Timing.buildLUT(),
		bpb:      bpb,
		enc:      make([]byte, frameBytes),
		now:      time.Now,
		sleep:    time.Sleep,
	}
	log.Debug().
		Str("port", p.String()).
		Stringer("clock", o.Timing.Clock).
		Int("leds", o.Count).
		Int("bytes", frameBytes).
		Msg("ws2812 ready")
	return d, nil
}

// Write encodes frame in wire order and transmits it with the latch tail.
// It blocks until the previous latch gap has elapsed.
func (d *WS2812) Write(frame []pixel.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return errors.New("ws2812 closed")
	}
	if err := checkLen(frame, d.count); err != nil {
		return err
	}

	if wait := d.latchUntil.Sub(d.now()); wait > 0 {
		d.sleep(wait)
	}

	d.encode(frame)
	if err := d.conn.Tx(d.enc, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrTimingViolation, err)
	}
	d.latchUntil = d.now().Add(d.timing.Reset)
	d.frames++

	if d.settle > 0 {
		d.sleep(d.settle)
	}
	return nil
}

// encode fills d.enc; the latch tail past the pixel data stays zero.
func (d *WS2812) encode(frame []pixel.Color) {
	off := 0
	for _, c := range frame {
		for _, ch := range d.colorOrd {
			v := int(channel(c, ch))
			off += copy(d.enc[off:], d.lut[v*d.bpb:(v+1)*d.bpb])
		}
	}
}

// Frames returns the number of frames transmitted.
func (d *WS2812) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *WS2812) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conn = nil
	if d.closer != nil {
		err := d.closer.Close()
		d.closer = nil
		return err
	}
	return nil
}

func parseOrder(s string) ([3]byte, error) {
	if s == "" {
		return [3]byte{'G', 'R', 'B'}, nil
	}
	if len(s) != 3 {
		return [3]byte{}, fmt.Errorf("invalid color order %q", s)
	}
	var seen [3]bool
	var out [3]byte
	for i := 0; i < 3; i++ {
		switch s[i] {
		case 'R':
			seen[0] = true
		case 'G':
			seen[1] = true
		case 'B':
			seen[2] = true
		}
		out[i] = s[i]
	}
	if !seen[0] || !seen[1] || !seen[2] {
		return [3]byte{}, fmt.Errorf("invalid color order %q", s)
	}
	return out, nil
}

func channel(c pixel.Color, ch byte) uint8 {
	switch ch {
	case 'R':
		return c.R
	case 'B':
		return c.B
	default:
		return c.G
	}
}
