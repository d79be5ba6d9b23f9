package zones

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock value %q, want HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

// Contains reports whether the local instant falls inside this window.
// Bounds are inclusive on both ends; Start > End wraps over midnight.
func (w ScheduleWindow) Contains(local time.Time) bool {
	day := weekdayOf(local)
	found := false
	for _, d := range w.Days {
		if d == day {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	start, err := parseClock(w.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(w.End)
	if err != nil {
		return false
	}
	current := local.Hour()*60 + local.Minute()

	if start <= end {
		return start <= current && current <= end
	}
	// Overnight wrap: 18:00-06:00 matches evenings and early mornings.
	return current >= start || current <= end
}

// IsActiveAt evaluates the schedule against an already-localized instant.
// No windows means the zone is always active.
func (s ActiveSchedule) IsActiveAt(local time.Time) bool {
	if len(s.Windows) == 0 {
		return true
	}
	for _, w := range s.Windows {
		if w.Contains(local) {
			return true
		}
	}
	return false
}

// Localize converts a UTC instant to tzName, falling back to fallbackTZ and
// finally UTC when a timezone identifier is unrecognized. An unknown zone
// name is a config anomaly, never a request-time failure.
func Localize(utc time.Time, tzName, fallbackTZ string) time.Time {
	if tzName != "" {
		if loc, err := time.LoadLocation(tzName); err == nil {
			return utc.In(loc)
		}
	}
	if fallbackTZ != "" {
		if loc, err := time.LoadLocation(fallbackTZ); err == nil {
			return utc.In(loc)
		}
	}
	return utc.UTC()
}
