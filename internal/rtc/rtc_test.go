package rtc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemClockOffsets(t *testing.T) {
	base := time.Date(2024, 12, 7, 21, 10, 30, 0, time.UTC)
	s := &System{now: func() time.Time { return base }}

	dt, err := s.Now()
	require.NoError(t, err)
	assert.Equal(t, DateTime{Year: 2024, Month: 12, Day: 7, Weekday: 6, Hour: 21, Minute: 10, Second: 30}, dt)

	require.NoError(t, s.SetHour(8))
	require.NoError(t, s.SetMinute(59))
	require.NoError(t, s.SetSecond(0))
	dt, _ = s.Now()
	assert.Equal(t, 8, dt.Hour)
	assert.Equal(t, 59, dt.Minute)
	assert.Equal(t, 0, dt.Second)
	assert.Equal(t, 7, dt.Day)

	// Offset persists as the host clock moves.
	base = base.Add(time.Second)
	dt, _ = s.Now()
	assert.Equal(t, "08:59:01", dt.TimeString())

	assert.Error(t, s.SetHour(24))
	assert.Error(t, s.SetMinute(-1))
	assert.Error(t, s.SetSecond(60))
}

func TestDateTimeFormatting(t *testing.T) {
	dt := DateTime{Year: 2024, Month: 1, Day: 5, Hour: 7, Minute: 3, Second: 9}
	assert.Equal(t, "05/01/2024", dt.DateString())
	assert.Equal(t, "07:03:09", dt.TimeString())
	assert.Equal(t, time.Date(2024, 1, 5, 7, 3, 9, 0, time.UTC), dt.Time(time.UTC))

	sunday := FromTime(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 7, sunday.Weekday)
}

func TestBCD(t *testing.T) {
	for v := 0; v < 100; v++ {
		assert.Equal(t, v, fromBCD(toBCD(v)))
	}
	assert.Equal(t, byte(0x59), toBCD(59))
}
