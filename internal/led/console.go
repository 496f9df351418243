package led

import (
	"image"
	"image/color"

	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/emberglow/internal/pixel"
)

// Console renders frames as a row of ANSI colored cells on the terminal.
type Console struct {
	dev   *screen.Dev
	count int
	img   *image.NRGBA
}

func NewConsole(count int) *Console {
	return &Console{
		dev:   screen.New(count),
		count: count,
		img:   image.NewNRGBA(image.Rect(0, 0, count, 1)),
	}
}

func (c *Console) Write(frame []pixel.Color) error {
	if err := checkLen(frame, c.count); err != nil {
		return err
	}
	for i, px := range frame {
		c.img.SetNRGBA(i, 0, color.NRGBA{R: px.R, G: px.G, B: px.B, A: 255})
	}
	return c.dev.Draw(c.dev.Bounds(), c.img, image.Point{})
}

func (c *Console) Close() error {
	return c.dev.Halt()
}
