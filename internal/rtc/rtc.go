// Package rtc provides the wall clock the clock face is driven from.
package rtc

import (
	"fmt"
	"sync"
	"time"
)

// DateTime is a calendar reading as kept by a real-time clock chip.
type DateTime struct {
	Year, Month, Day     int
	Weekday              int
	Hour, Minute, Second int
}

// FromTime converts t to a DateTime. Weekday is 1 (Monday) through 7.
func FromTime(t time.Time) DateTime {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return DateTime{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Weekday: wd,
		Hour:    t.Hour(), Minute: t.Minute(), Second: t.Second(),
	}
}

// Time returns dt in loc.
func (dt DateTime) Time(loc *time.Location) time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, 0, loc)
}

// DateString formats as DD/MM/YYYY.
func (dt DateTime) DateString() string {
	return fmt.Sprintf("%02d/%02d/%04d", dt.Day, dt.Month, dt.Year)
}

// TimeString formats as HH:MM:SS.
func (dt DateTime) TimeString() string {
	return fmt.Sprintf("%02d:%02d:%02d", dt.Hour, dt.Minute, dt.Second)
}

// Clock reads and adjusts a real-time clock.
type Clock interface {
	Now() (DateTime, error)
	SetHour(h int) error
	SetMinute(m int) error
	SetSecond(s int) error
}

// System is a Clock over the host clock with a settable offset, for boards
// without an RTC chip.
type System struct {
	mu     sync.Mutex
	offset time.Duration
	now    func() time.Time
}

func NewSystem() *System {
	return &System{now: time.Now}
}

func (s *System) Now() (DateTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FromTime(s.now().Add(s.offset)), nil
}

func (s *System) SetHour(h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("hour %d out of range", h)
	}
	return s.shift(func(t time.Time) time.Time {
		return t.Add(time.Duration(h-t.Hour()) * time.Hour)
	})
}

func (s *System) SetMinute(m int) error {
	if m < 0 || m > 59 {
		return fmt.Errorf("minute %d out of range", m)
	}
	return s.shift(func(t time.Time) time.Time {
		return t.Add(time.Duration(m-t.Minute()) * time.Minute)
	})
}

func (s *System) SetSecond(sec int) error {
	if sec < 0 || sec > 59 {
		return fmt.Errorf("second %d out of range", sec)
	}
	return s.shift(func(t time.Time) time.Time {
		return t.Add(time.Duration(sec-t.Second()) * time.Second)
	})
}

func (s *System) shift(fn func(time.Time) time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.now().Add(s.offset)
	s.offset += fn(cur).Sub(cur)
	return nil
}
