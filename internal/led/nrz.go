package led

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// NRZ drives the strip through periph's nrzled encoder.
type NRZ struct {
	dev    *nrzled.Dev
	closer io.Closer
	count  int
	rgb    []byte
}

func NewNRZ(p spi.Port, count int, freq physic.Frequency) (*NRZ, error) {
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{dev: d, count: count, rgb: make([]byte, 3*count)}, nil
}

func (n *NRZ) Write(frame []pixel.Color) error {
	if err := checkLen(frame, n.count); err != nil {
		return err
	}
	for i, c := range frame {
		n.rgb[3*i], n.rgb[3*i+1], n.rgb[3*i+2] = c.R, c.G, c.B
	}
	if _, err := n.dev.Write(n.rgb); err != nil {
		return fmt.Errorf("%w: %w", ErrTimingViolation, err)
	}
	return nil
}

func (n *NRZ) Close() error {
	err := n.dev.Halt()
	if n.closer != nil {
		if cerr := n.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
