package ring

import (
	"time"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// TestKind names a hardware self test.
type TestKind string

const (
	NoTest     TestKind = ""
	IndexSweep TestKind = "index_sweep"
	RGBTest    TestKind = "rgb_channels"
)

// rgbTestFrames is how many frames the channel test cycles (R, G, B twice).
const rgbTestFrames = 6

// SelfTest steps through a wiring test one frame at a time.
type SelfTest struct {
	kind TestKind
	step int
}

func NewSelfTest(kind TestKind) *SelfTest { return &SelfTest{kind: kind} }

func (s *SelfTest) Kind() TestKind { return s.kind }

// Step paints the next test frame into buf and reports whether a frame was
// produced; false means the test is complete.
func (s *SelfTest) Step(buf *pixel.Buffer) bool {
	buf.Fill(pixel.Black)
	n := buf.Len()

	switch s.kind {
	case IndexSweep:
		if s.step >= n {
			return false
		}
		_ = buf.Set(s.step, pixel.White)
	case RGBTest:
		if s.step >= rgbTestFrames {
			return false
		}
		c := [...]pixel.Color{pixel.Red, pixel.Green, pixel.Blue}[s.step%3]
		buf.Fill(c)
	default:
		return false
	}
	s.step++
	return true
}

// Run plays the whole test through r, holding each frame for frameDelay.
func (s *SelfTest) Run(r *Renderer, frameDelay time.Duration) error {
	var first error
	for s.Step(r.buf) {
		first = r.step(first, frameDelay)
	}
	return first
}
