// Package sensor adapts the distance, light and climate sensors the apps read.
package sensor

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/bmxx80"
)

// ErrUnavailable means a reading could not be taken. Callers keep their last
// known value.
var ErrUnavailable = errors.New("sensor unavailable")

// Distance reports range in centimeters.
type Distance interface {
	Read() (float64, error)
}

// Light reports ambient light level in [0,1].
type Light interface {
	Read() (float64, error)
}

// Climate is one environment reading.
type Climate struct {
	TempC       float64
	HumidityPct float64
	PressureKPa float64
}

func (c Climate) String() string {
	return fmt.Sprintf("%.1fC %.0f%%", c.TempC, c.HumidityPct)
}

// ClimateSensor reports temperature, humidity and pressure.
type ClimateSensor interface {
	Read() (Climate, error)
}

type sampler interface {
	Read() (analog.Sample, error)
}

// Photo reads a photoresistor divider through one ADC channel.
type Photo struct {
	pin       sampler
	fullScale physic.ElectricPotential
}

// NewPhoto opens an ADS1115 on bus at its default address and samples ch
// against a fullScale supply.
func NewPhoto(bus i2c.Bus, ch ads1x15.Channel, fullScale physic.ElectricPotential) (*Photo, error) {
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ads1115: %w", err)
	}
	pin, err := adc.PinForChannel(ch, fullScale, 8*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return nil, fmt.Errorf("ads1115 channel %v: %w", ch, err)
	}
	return &Photo{pin: pin, fullScale: fullScale}, nil
}

func (p *Photo) Read() (float64, error) {
	s, err := p.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	v := float64(s.V) / float64(p.fullScale)
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	return v, nil
}

type senser interface {
	Sense(e *physic.Env) error
}

// BME280 reads a Bosch bmxx80 sensor.
type BME280 struct {
	dev senser
}

func NewBME280(bus i2c.Bus, addr uint16) (*BME280, error) {
	d, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("bme280 %#x: %w", addr, err)
	}
	return &BME280{dev: d}, nil
}

func (b *BME280) Read() (Climate, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return Climate{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Climate{
		TempC:       float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Celsius),
		HumidityPct: float64(e.Humidity) / float64(physic.PercentRH),
		PressureKPa: float64(e.Pressure) / float64(physic.KiloPascal),
	}, nil
}
