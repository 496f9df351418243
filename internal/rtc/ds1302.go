package rtc

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DS1302 register addresses (write form; reads set bit 0).
const (
	regSecond  = 0x80
	regMinute  = 0x82
	regHour    = 0x84
	regDate    = 0x86
	regMonth   = 0x88
	regWeekday = 0x8A
	regYear    = 0x8C
	regWP      = 0x8E

	clockHalt = 0x80
)

// DS1302 bit-bangs the chip's 3-wire serial interface. Bytes go LSB first;
// the chip samples DAT on CLK rising and drives it after CLK falling.
type DS1302 struct {
	mu           sync.Mutex
	clk, dat, ce gpio.PinIO
	halfPeriod   time.Duration
	sleep        func(time.Duration)
}

// NewDS1302 drives the given pins low and clears the clock-halt and
// write-protect flags.
func NewDS1302(clk, dat, ce gpio.PinIO) (*DS1302, error) {
	d := &DS1302{clk: clk, dat: dat, ce: ce, halfPeriod: time.Microsecond, sleep: time.Sleep}
	for _, p := range []gpio.PinIO{clk, dat, ce} {
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("ds1302 %s: %w", p, err)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeReg(regWP, 0); err != nil {
		return nil, err
	}
	sec, err := d.readReg(regSecond)
	if err != nil {
		return nil, err
	}
	if sec&clockHalt != 0 {
		if err := d.writeReg(regSecond, sec&^clockHalt); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *DS1302) Now() (DateTime, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	regs := []byte{regYear, regMonth, regDate, regWeekday, regHour, regMinute, regSecond}
	var raw [7]byte
	for i, r := range regs {
		b, err := d.readReg(r)
		if err != nil {
			return DateTime{}, err
		}
		raw[i] = b
	}
	return DateTime{
		Year:    2000 + fromBCD(raw[0]),
		Month:   fromBCD(raw[1] & 0x1F),
		Day:     fromBCD(raw[2] & 0x3F),
		Weekday: fromBCD(raw[3] & 0x07),
		// 24-hour mode only.
		Hour:   fromBCD(raw[4] & 0x3F),
		Minute: fromBCD(raw[5] & 0x7F),
		Second: fromBCD(raw[6] &^ clockHalt),
	}, nil
}

// Set writes the full calendar.
func (d *DS1302) Set(dt DateTime) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	writes := []struct {
		reg byte
		v   int
	}{
		{regSecond, dt.Second}, {regMinute, dt.Minute}, {regHour, dt.Hour},
		{regDate, dt.Day}, {regMonth, dt.Month}, {regWeekday, dt.Weekday},
		{regYear, dt.Year % 100},
	}
	for _, w := range writes {
		if err := d.writeReg(w.reg, toBCD(w.v)); err != nil {
			return err
		}
	}
	return nil
}

func (d *DS1302) SetHour(h int) error   { return d.setField(regHour, h, 23) }
func (d *DS1302) SetMinute(m int) error { return d.setField(regMinute, m, 59) }
func (d *DS1302) SetSecond(s int) error { return d.setField(regSecond, s, 59) }

func (d *DS1302) setField(reg byte, v, limit int) error {
	if v < 0 || v > limit {
		return fmt.Errorf("ds1302 register %#x: value %d out of range", reg, v)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeReg(reg, toBCD(v))
}

func (d *DS1302) readReg(reg byte) (b byte, err error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	defer d.finish(&err)
	if err := d.writeByte(reg | 1); err != nil {
		return 0, err
	}
	return d.readByte()
}

func (d *DS1302) writeReg(reg, v byte) (err error) {
	if err := d.begin(); err != nil {
		return err
	}
	defer d.finish(&err)
	if err := d.writeByte(reg); err != nil {
		return err
	}
	return d.writeByte(v)
}

func (d *DS1302) begin() error {
	if err := d.clk.Out(gpio.Low); err != nil {
		return err
	}
	return d.ce.Out(gpio.High)
}

func (d *DS1302) end() error {
	return d.ce.Out(gpio.Low)
}

// finish drops CE after a transfer, failed or not, keeping the first error.
func (d *DS1302) finish(err *error) {
	if endErr := d.end(); *err == nil {
		*err = endErr
	}
}

func (d *DS1302) writeByte(b byte) error {
	for i := 0; i < 8; i++ {
		if err := d.dat.Out(gpio.Level(b>>i&1 == 1)); err != nil {
			return fmt.Errorf("ds1302 write: %w", err)
		}
		if err := d.pulse(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DS1302) readByte() (byte, error) {
	if err := d.dat.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return 0, fmt.Errorf("ds1302 read: %w", err)
	}
	var b byte
	for i := 0; i < 8; i++ {
		if d.dat.Read() == gpio.High {
			b |= 1 << i
		}
		if err := d.pulse(); err != nil {
			return 0, err
		}
	}
	return b, nil
}

func (d *DS1302) pulse() error {
	if err := d.clk.Out(gpio.High); err != nil {
		return err
	}
	d.sleep(d.halfPeriod)
	if err := d.clk.Out(gpio.Low); err != nil {
		return err
	}
	d.sleep(d.halfPeriod)
	return nil
}

func toBCD(v int) byte {
	return byte((v/10)<<4 | v%10)
}

func fromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}
