// Package display shows short status lines.
package display

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Text renders a few lines of text, replacing what was shown before.
type Text interface {
	Render(lines []string) error
}

type drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// OLED draws lines on a monochrome SSD1306 panel in a 7x13 font.
type OLED struct {
	dev  drawer
	img  *image1bit.VerticalLSB
	face font.Face
}

// NewOLED opens a 128x64 SSD1306 on bus.
func NewOLED(bus i2c.Bus) (*OLED, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	return newOLED(dev), nil
}

func newOLED(dev drawer) *OLED {
	return &OLED{
		dev:  dev,
		img:  image1bit.NewVerticalLSB(dev.Bounds()),
		face: basicfont.Face7x13,
	}
}

// Render clears the panel and spreads lines evenly down it.
func (o *OLED) Render(lines []string) error {
	b := o.img.Bounds()
	draw.Draw(o.img, b, &image.Uniform{C: image1bit.Off}, image.Point{}, draw.Src)

	step := b.Dy() / max(len(lines), 2)
	ascent := o.face.Metrics().Ascent.Ceil()
	d := font.Drawer{
		Dst:  o.img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: o.face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(0, i*step+ascent)
		d.DrawString(l)
	}
	if err := o.dev.Draw(b, o.img, image.Point{}); err != nil {
		return fmt.Errorf("oled draw: %w", err)
	}
	return nil
}

// Clear blanks the panel.
func (o *OLED) Clear() error {
	return o.Render(nil)
}

func (o *OLED) Close() error {
	return o.dev.Halt()
}

// Log writes lines to the logger when no panel is attached. Unchanged lines
// are not repeated.
type Log struct {
	last string
}

func (l *Log) Render(lines []string) error {
	s := fmt.Sprint(lines)
	if s == l.last {
		return nil
	}
	l.last = s
	log.Info().Strs("lines", lines).Msg("display")
	return nil
}
