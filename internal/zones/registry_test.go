package zones

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZone(zoneID string, cameras ...string) Zone {
	return Zone{
		ZoneID:    zoneID,
		SiteID:    "site-hq",
		CameraIDs: cameras,
		Severity:  SeverityMedium,
	}
}

func TestRegistry_Lookups(t *testing.T) {
	reg, err := NewRegistry([]Zone{
		testZone("dock", "cam-1", "cam-2"),
		testZone("lobby", "cam-3"),
	})
	require.NoError(t, err)

	assert.Equal(t, "dock", reg.GetZone("dock").ZoneID)
	assert.Nil(t, reg.GetZone("vault"))

	assert.Equal(t, "dock", reg.ZoneForCamera("cam-2").ZoneID)
	assert.Equal(t, "lobby", reg.ZoneForCamera("cam-3").ZoneID)
	assert.Nil(t, reg.ZoneForCamera("cam-99"))
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_CameraInTwoZonesIsFatal(t *testing.T) {
	_, err := NewRegistry([]Zone{
		testZone("dock", "cam-1"),
		testZone("lobby", "cam-1"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cam-1")
}

func TestRegistry_Defaults(t *testing.T) {
	reg, err := NewRegistry([]Zone{{
		ZoneID:    "dock",
		SiteID:    "site-hq",
		CameraIDs: []string{"cam-1"},
	}})
	require.NoError(t, err)

	z := reg.GetZone("dock")
	assert.Equal(t, SeverityMedium, z.Severity)
	assert.Equal(t, []string{"whatsapp"}, z.AlertDestinations)
}

func TestRegistry_Validation(t *testing.T) {
	cases := []struct {
		name string
		zone Zone
	}{
		{"no cameras", Zone{ZoneID: "z", SiteID: "s", Severity: SeverityLow}},
		{"bad severity", Zone{ZoneID: "z", SiteID: "s", CameraIDs: []string{"c"}, Severity: "urgent"}},
		{"negative dedupe", Zone{ZoneID: "z", SiteID: "s", CameraIDs: []string{"c"}, Severity: SeverityLow, DedupeWindowSec: -1}},
		{"bad window clock", Zone{
			ZoneID: "z", SiteID: "s", CameraIDs: []string{"c"}, Severity: SeverityLow,
			ActiveSchedule: ActiveSchedule{Windows: []ScheduleWindow{{Days: []Weekday{Mon}, Start: "25:00", End: "06:00"}}},
		}},
		{"window without days", Zone{
			ZoneID: "z", SiteID: "s", CameraIDs: []string{"c"}, Severity: SeverityLow,
			ActiveSchedule: ActiveSchedule{Windows: []ScheduleWindow{{Start: "08:00", End: "18:00"}}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry([]Zone{tc.zone})
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	yml := `
zones:
  - zone_id: perimeter
    site_id: plant-2
    camera_ids: [cam-a, cam-b]
    severity: high
    active_schedule:
      timezone: America/Sao_Paulo
      windows:
        - days: [mon, tue, wed, thu, fri]
          start: "18:00"
          end: "06:00"
    alert_destinations: [whatsapp, email]
    suppression_window_sec: 60
    dedupe_window_sec: 30
`
	path := filepath.Join(t.TempDir(), "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	reg, err := LoadFile(path)
	require.NoError(t, err)

	z := reg.GetZone("perimeter")
	require.NotNil(t, z)
	assert.Equal(t, "plant-2", z.SiteID)
	assert.Equal(t, SeverityHigh, z.Severity)
	assert.Equal(t, 30, z.DedupeWindowSec)
	assert.Len(t, z.ActiveSchedule.Windows, 1)
	assert.Equal(t, "perimeter", reg.ZoneForCamera("cam-b").ZoneID)
}

func TestLoadFile_WindowDefaults(t *testing.T) {
	yml := `
zones:
  - zone_id: implicit
    site_id: plant-2
    camera_ids: [cam-a]
  - zone_id: explicit-off
    site_id: plant-2
    camera_ids: [cam-b]
    suppression_window_sec: 0
    dedupe_window_sec: 0
`
	path := filepath.Join(t.TempDir(), "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	reg, err := LoadFile(path)
	require.NoError(t, err)

	// Omitted keys take the schema defaults.
	z := reg.GetZone("implicit")
	assert.Equal(t, 30, z.DedupeWindowSec)
	assert.Equal(t, 60, z.SuppressionWindowSec)

	// An explicit 0 disables the gate and is preserved.
	z = reg.GetZone("explicit-off")
	assert.Equal(t, 0, z.DedupeWindowSec)
	assert.Equal(t, 0, z.SuppressionWindowSec)
}

func TestLoadFile_MissingIsFatal(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_MalformedIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zones: {not: [a list"), 0o644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}
