// Package power keeps frames inside a supply current budget before they reach
// the strip.
package power

import (
	"math"
	"sync"
	"time"

	"github.com/coreman2200/emberglow/internal/led"
	"github.com/coreman2200/emberglow/internal/pixel"
)

// Limits configures the limiter. The zero value passes frames through.
type Limits struct {
	// BudgetmA is the global current budget; 0 disables it.
	BudgetmA float64
	// ChanmA is the draw of one channel at full scale (WS2812 is about 20).
	ChanmA float64
	// Knee is the fraction of the budget where soft limiting begins.
	Knee float64
	// WhiteCap caps R+G+B per LED in units of one full channel; 0 or 3 is
	// no cap.
	WhiteCap float64
	// SoftStart ramps output from black over this long after the first frame.
	SoftStart time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.ChanmA <= 0 {
		l.ChanmA = 20
	}
	if l.Knee <= 0 || l.Knee >= 1 {
		l.Knee = 0.9
	}
	if l.WhiteCap <= 0 {
		l.WhiteCap = 3
	}
	return l
}

// Estimate returns the modelled current draw of frame in mA.
func (l Limits) Estimate(frame []pixel.Color) float64 {
	l = l.withDefaults()
	var sum float64
	for _, c := range frame {
		sum += float64(c.R) + float64(c.G) + float64(c.B)
	}
	return sum / 255 * l.ChanmA
}

// Apply limits frame in place: per-LED white cap first, then the global
// budget with a soft knee.
func (l Limits) Apply(frame []pixel.Color) {
	l = l.withDefaults()

	capSum := l.WhiteCap * 255
	for i, c := range frame {
		s := float64(c.R) + float64(c.G) + float64(c.B)
		if s > capSum {
			frame[i] = scale(c, capSum/s)
		}
	}

	if l.BudgetmA <= 0 {
		return
	}
	total := l.Estimate(frame)
	knee := l.Knee * l.BudgetmA
	if total <= knee {
		return
	}
	// Above the knee the excess is compressed exponentially toward the
	// budget, so output never reaches it.
	room := l.BudgetmA - knee
	out := knee + room*(1-math.Exp(-(total-knee)/room))
	scaleAll(frame, out/total)
}

func scaleAll(frame []pixel.Color, s float64) {
	if s >= 1 {
		return
	}
	for i, c := range frame {
		frame[i] = scale(c, s)
	}
}

func scale(c pixel.Color, s float64) pixel.Color {
	f := func(v uint8) uint8 { return uint8(math.Floor(float64(v) * s)) }
	return pixel.Color{R: f(c.R), G: f(c.G), B: f(c.B)}
}

// Driver applies Limits to every frame before passing it on. The caller's
// frame is never modified.
type Driver struct {
	mu    sync.Mutex
	next  led.Driver
	lim   Limits
	buf   []pixel.Color
	start time.Time
	now   func() time.Time
}

func Wrap(next led.Driver, l Limits) *Driver {
	return &Driver{next: next, lim: l, now: time.Now}
}

func (d *Driver) Write(frame []pixel.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = append(d.buf[:0], frame...)
	d.lim.Apply(d.buf)

	if d.lim.SoftStart > 0 {
		now := d.now()
		if d.start.IsZero() {
			d.start = now
		}
		if ramp := float64(now.Sub(d.start)) / float64(d.lim.SoftStart); ramp < 1 {
			scaleAll(d.buf, ramp)
		}
	}
	return d.next.Write(d.buf)
}

func (d *Driver) Close() error {
	return d.next.Close()
}
