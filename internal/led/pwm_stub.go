//go:build !ws281x

package led

import "fmt"

func NewPWM(gpio, count int) (Driver, error) {
	return nil, fmt.Errorf("pwm driver on GPIO%d requires building with -tags ws281x", gpio)
}
