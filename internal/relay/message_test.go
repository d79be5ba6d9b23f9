package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/zones"
)

func TestRenderText(t *testing.T) {
	conf := 0.87
	ev := &data.Event{
		Vendor:       data.VendorHikvision,
		EventType:    data.EventLineCross,
		CameraID:     "cam-1",
		CameraName:   "Dock North",
		ZoneID:       "dock-zone",
		Confidence:   &conf,
		MediaURL:     "https://nvr.example/clip/42",
		TimestampUTC: time.Date(2026, 3, 2, 12, 15, 30, 0, time.UTC),
	}
	zone := &zones.Zone{ZoneID: "dock-zone", SiteID: "plant-3", Severity: zones.SeverityHigh}
	local := time.Date(2026, 3, 2, 9, 15, 30, 0, time.FixedZone("-03", -3*3600))

	msg := buildEventMessage(ev, zone, local)
	text := msg.RenderText()

	want := "[EZ-WATCH] Line Cross detected\n" +
		"Site: plant-3\n" +
		"Zone: dock-zone\n" +
		"Camera: Dock North\n" +
		"Time: 2026-03-02 09:15:30 -03\n" +
		"Event: line_cross\n" +
		"Severity: high\n" +
		"Confidence: 87%\n" +
		"Shift: morning\n" +
		"Media: https://nvr.example/clip/42"
	assert.Equal(t, want, text)
}

func TestRenderText_NoMediaLine(t *testing.T) {
	msg := AlertMessage{Title: "Intrusion detected"}
	assert.NotContains(t, msg.RenderText(), "Media:")
}

func TestEmailSubject(t *testing.T) {
	msg := AlertMessage{Title: "Intrusion detected", Zone: "dock-zone"}
	assert.Equal(t, "[EZ-WATCH] Intrusion detected - dock-zone", msg.EmailSubject())
}

func TestEventTitle(t *testing.T) {
	assert.Equal(t, "Line Cross detected", eventTitle(data.EventLineCross))
	assert.Equal(t, "Intrusion detected", eventTitle(data.EventIntrusion))
	assert.Equal(t, "Camera Disconnect detected", eventTitle(data.EventCameraDisconnect))
}

func TestShiftName(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{5, "night"},
		{6, "morning"},
		{13, "morning"},
		{14, "afternoon"},
		{21, "afternoon"},
		{22, "night"},
		{2, "night"},
	}
	for _, tc := range cases {
		at := time.Date(2026, 3, 2, tc.hour, 0, 0, 0, time.UTC)
		assert.Equal(t, tc.want, shiftName(at), "hour %d", tc.hour)
	}
}

func TestConfidenceText(t *testing.T) {
	assert.Equal(t, "n/a", confidenceText(nil))
	c := 0.876
	assert.Equal(t, "88%", confidenceText(&c))
	zero := 0.0
	assert.Equal(t, "0%", confidenceText(&zero))
}

func TestBuildOfflineMessage_NilZone(t *testing.T) {
	local := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	msg := buildOfflineMessage("cam-77", nil, local)

	assert.Equal(t, "Camera offline", msg.Title)
	assert.Equal(t, "unknown", msg.Zone)
	assert.Equal(t, "unknown", msg.Site)
	assert.Equal(t, "cam-77", msg.Camera)
	assert.Equal(t, string(zones.SeverityHigh), msg.Severity)
	assert.Equal(t, "n/a", msg.ConfidenceText)
	assert.Equal(t, "night", msg.Shift)
}
