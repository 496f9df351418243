package led

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// Sim is a hardware-free driver that keeps the last frame.
type Sim struct {
	mu     sync.Mutex
	count  int
	last   []pixel.Color
	frames int
}

func NewSim(count int) *Sim {
	return &Sim{count: count, last: make([]pixel.Color, count)}
}

func (s *Sim) Write(frame []pixel.Color) error {
	if err := checkLen(frame, s.count); err != nil {
		return err
	}
	s.mu.Lock()
	copy(s.last, frame)
	s.frames++
	n := s.frames
	s.mu.Unlock()

	if n%100 == 0 {
		var sum int
		for _, c := range frame {
			sum += int(c.R) + int(c.G) + int(c.B)
		}
		log.Debug().
			Int("frame", n).
			Int("avg", sum/(3*len(frame))).
			Str("first", frame[0].Hex()).
			Msg("sim frame")
	}
	return nil
}

// Last returns a copy of the most recent frame.
func (s *Sim) Last() []pixel.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pixel.Color, len(s.last))
	copy(out, s.last)
	return out
}

func (s *Sim) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Sim) Close() error { return nil }
