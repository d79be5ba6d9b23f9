package zones

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// localTime builds a local instant on a known weekday.
// 2026-03-02 is a Monday.
func localTime(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestSchedule_EmptyWindowsAlwaysActive(t *testing.T) {
	s := ActiveSchedule{Timezone: "America/Sao_Paulo"}
	assert.True(t, s.IsActiveAt(localTime(3, 0)))
	assert.True(t, s.IsActiveAt(localTime(23, 59)))
}

func TestWindow_SameDayRangeInclusive(t *testing.T) {
	w := ScheduleWindow{Days: []Weekday{Mon}, Start: "08:00", End: "18:00"}

	assert.True(t, w.Contains(localTime(8, 0)))
	assert.True(t, w.Contains(localTime(12, 30)))
	assert.True(t, w.Contains(localTime(18, 0)))
	assert.False(t, w.Contains(localTime(7, 59)))
	assert.False(t, w.Contains(localTime(18, 1)))
}

func TestWindow_OvernightWrap(t *testing.T) {
	w := ScheduleWindow{Days: []Weekday{Mon}, Start: "18:00", End: "06:00"}

	// Both boundary instants are inside.
	assert.True(t, w.Contains(localTime(18, 0)))
	assert.True(t, w.Contains(localTime(6, 0)))
	assert.True(t, w.Contains(localTime(23, 15)))
	assert.True(t, w.Contains(localTime(2, 0)))
	assert.False(t, w.Contains(localTime(12, 0)))
}

func TestWindow_WeekdayFilter(t *testing.T) {
	w := ScheduleWindow{Days: []Weekday{Sat, Sun}, Start: "00:00", End: "23:59"}

	assert.False(t, w.Contains(localTime(12, 0))) // Monday
	saturday := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.True(t, w.Contains(saturday))
}

func TestSchedule_AnyWindowMatches(t *testing.T) {
	s := ActiveSchedule{Windows: []ScheduleWindow{
		{Days: []Weekday{Mon}, Start: "08:00", End: "10:00"},
		{Days: []Weekday{Mon}, Start: "20:00", End: "22:00"},
	}}

	assert.True(t, s.IsActiveAt(localTime(9, 0)))
	assert.True(t, s.IsActiveAt(localTime(21, 0)))
	assert.False(t, s.IsActiveAt(localTime(15, 0)))
}

func TestParseClock(t *testing.T) {
	cases := map[string]bool{
		"00:00": true,
		"23:59": true,
		"24:00": false,
		"12:60": false,
		"9:00":  false,
		"12-30": false,
		"":      false,
	}
	for input, ok := range cases {
		_, err := parseClock(input)
		if ok {
			assert.NoError(t, err, input)
		} else {
			assert.Error(t, err, input)
		}
	}
}

func TestLocalize_FallbackOnUnknownTimezone(t *testing.T) {
	utc := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	local := Localize(utc, "America/Sao_Paulo", "UTC")
	assert.Equal(t, 9, local.Hour()) // UTC-3

	// Unknown tz falls back to the default.
	local = Localize(utc, "Mars/Olympus_Mons", "America/Sao_Paulo")
	assert.Equal(t, 9, local.Hour())

	// Both unknown ends up in UTC.
	local = Localize(utc, "Mars/Olympus_Mons", "Pluto/Nowhere")
	assert.Equal(t, 12, local.Hour())
}
