package zones

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Weekday string

const (
	Mon Weekday = "mon"
	Tue Weekday = "tue"
	Wed Weekday = "wed"
	Thu Weekday = "thu"
	Fri Weekday = "fri"
	Sat Weekday = "sat"
	Sun Weekday = "sun"
)

// weekdayOf maps Go's Sunday-based weekday to the config token.
func weekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Mon
	case time.Tuesday:
		return Tue
	case time.Wednesday:
		return Wed
	case time.Thursday:
		return Thu
	case time.Friday:
		return Fri
	case time.Saturday:
		return Sat
	default:
		return Sun
	}
}

// ScheduleWindow is one active interval: a day set plus HH:MM bounds.
// Start > End represents an overnight wrap (e.g. 18:00-06:00).
type ScheduleWindow struct {
	Days  []Weekday `yaml:"days"`
	Start string    `yaml:"start"`
	End   string    `yaml:"end"`
}

// ActiveSchedule decides when a zone alerts. Empty Windows means always active.
type ActiveSchedule struct {
	Timezone string           `yaml:"timezone"`
	Windows  []ScheduleWindow `yaml:"windows"`
}

// Config schema defaults for the gating windows. An explicit 0 in the
// config disables the gate; an omitted key takes the default.
const (
	defaultDedupeWindowSec      = 30
	defaultSuppressionWindowSec = 60
)

// Zone ties a set of cameras to one alerting policy. Immutable after load.
type Zone struct {
	ZoneID               string
	SiteID               string
	CameraIDs            []string
	Severity             Severity
	ActiveSchedule       ActiveSchedule
	AlertDestinations    []string
	SuppressionWindowSec int
	DedupeWindowSec      int
}

// UnmarshalYAML decodes through a shadow struct with pointer window fields
// so an absent suppression/dedupe key is distinguishable from an explicit 0.
func (z *Zone) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ZoneID               string         `yaml:"zone_id"`
		SiteID               string         `yaml:"site_id"`
		CameraIDs            []string       `yaml:"camera_ids"`
		Severity             Severity       `yaml:"severity"`
		ActiveSchedule       ActiveSchedule `yaml:"active_schedule"`
		AlertDestinations    []string       `yaml:"alert_destinations"`
		SuppressionWindowSec *int           `yaml:"suppression_window_sec"`
		DedupeWindowSec      *int           `yaml:"dedupe_window_sec"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	z.ZoneID = raw.ZoneID
	z.SiteID = raw.SiteID
	z.CameraIDs = raw.CameraIDs
	z.Severity = raw.Severity
	z.ActiveSchedule = raw.ActiveSchedule
	z.AlertDestinations = raw.AlertDestinations
	z.SuppressionWindowSec = defaultSuppressionWindowSec
	if raw.SuppressionWindowSec != nil {
		z.SuppressionWindowSec = *raw.SuppressionWindowSec
	}
	z.DedupeWindowSec = defaultDedupeWindowSec
	if raw.DedupeWindowSec != nil {
		z.DedupeWindowSec = *raw.DedupeWindowSec
	}
	return nil
}

// HasCamera reports whether cameraID is covered by this zone.
func (z *Zone) HasCamera(cameraID string) bool {
	for _, id := range z.CameraIDs {
		if id == cameraID {
			return true
		}
	}
	return false
}

func validSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

func validWeekday(d Weekday) bool {
	switch d {
	case Mon, Tue, Wed, Thu, Fri, Sat, Sun:
		return true
	}
	return false
}

func (z *Zone) validate() error {
	if z.ZoneID == "" {
		return fmt.Errorf("zone missing zone_id")
	}
	if z.SiteID == "" {
		return fmt.Errorf("zone %s: missing site_id", z.ZoneID)
	}
	if len(z.CameraIDs) == 0 {
		return fmt.Errorf("zone %s: camera_ids must not be empty", z.ZoneID)
	}
	if !validSeverity(z.Severity) {
		return fmt.Errorf("zone %s: invalid severity %q", z.ZoneID, z.Severity)
	}
	if z.SuppressionWindowSec < 0 {
		return fmt.Errorf("zone %s: suppression_window_sec must be >= 0", z.ZoneID)
	}
	if z.DedupeWindowSec < 0 {
		return fmt.Errorf("zone %s: dedupe_window_sec must be >= 0", z.ZoneID)
	}
	for i, w := range z.ActiveSchedule.Windows {
		if len(w.Days) == 0 {
			return fmt.Errorf("zone %s: window %d has no days", z.ZoneID, i)
		}
		for _, d := range w.Days {
			if !validWeekday(d) {
				return fmt.Errorf("zone %s: window %d has invalid day %q", z.ZoneID, i, d)
			}
		}
		if _, err := parseClock(w.Start); err != nil {
			return fmt.Errorf("zone %s: window %d start: %w", z.ZoneID, i, err)
		}
		if _, err := parseClock(w.End); err != nil {
			return fmt.Errorf("zone %s: window %d end: %w", z.ZoneID, i, err)
		}
	}
	return nil
}

// applyDefaults fills the optional fields the same way the config schema does.
func (z *Zone) applyDefaults() {
	if z.Severity == "" {
		z.Severity = SeverityMedium
	}
	if len(z.AlertDestinations) == 0 {
		z.AlertDestinations = []string{"whatsapp"}
	}
}
