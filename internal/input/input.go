// Package input reads momentary push buttons.
package input

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"
)

// Button reports whether it is currently held down.
type Button interface {
	Pressed() bool
}

// GPIOButton is a push button on one GPIO input.
type GPIOButton struct {
	pin    gpio.PinIn
	active gpio.Level
}

// NewGPIOButton configures pin with pull. With PullDown the button reads high
// when pressed; with PullUp it reads low.
func NewGPIOButton(pin gpio.PinIn, pull gpio.Pull) (*GPIOButton, error) {
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("button %s: %w", pin, err)
	}
	active := gpio.High
	if pull == gpio.PullUp {
		active = gpio.Low
	}
	return &GPIOButton{pin: pin, active: active}, nil
}

func (b *GPIOButton) Pressed() bool {
	return b.pin.Read() == b.active
}

// Edge fires once per press.
type Edge struct {
	b   Button
	was bool
}

func NewEdge(b Button) *Edge { return &Edge{b: b} }

// Fired reports a released-to-pressed transition since the last call.
func (e *Edge) Fired() bool {
	now := e.b.Pressed()
	fired := now && !e.was
	e.was = now
	return fired
}

// Binding runs Action each time its button is pressed.
type Binding struct {
	Name   string
	Edge   *Edge
	Action func() error
}

func Bind(name string, b Button, action func() error) Binding {
	return Binding{Name: name, Edge: NewEdge(b), Action: action}
}

// Poll samples every binding once and runs the actions of those that fired.
func Poll(bindings []Binding) error {
	var errs []error
	for _, bd := range bindings {
		if !bd.Edge.Fired() {
			continue
		}
		log.Debug().Str("button", bd.Name).Msg("pressed")
		if err := bd.Action(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", bd.Name, err))
		}
	}
	return errors.Join(errs...)
}
