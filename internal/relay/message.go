package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/zones"
)

const messagePrefix = "[EZ-WATCH]"

// AlertMessage is the rendered human-facing alert. It is both the structured
// payload handed to channels and the audit payload persisted alongside each
// dispatch attempt.
type AlertMessage struct {
	Title          string `json:"title"`
	Site           string `json:"site"`
	Zone           string `json:"zone"`
	Camera         string `json:"camera"`
	LocalTime      string `json:"local_time"`
	EventType      string `json:"event_type"`
	Severity       string `json:"severity"`
	ConfidenceText string `json:"confidence_text"`
	ActionLink     string `json:"action_link,omitempty"`
	Shift          string `json:"shift"`
}

// RenderText renders the plain-text alert body shared by all channels.
func (m AlertMessage) RenderText() string {
	lines := []string{
		fmt.Sprintf("%s %s", messagePrefix, m.Title),
		"Site: " + m.Site,
		"Zone: " + m.Zone,
		"Camera: " + m.Camera,
		"Time: " + m.LocalTime,
		"Event: " + m.EventType,
		"Severity: " + m.Severity,
		"Confidence: " + m.ConfidenceText,
		"Shift: " + m.Shift,
	}
	if m.ActionLink != "" {
		lines = append(lines, "Media: "+m.ActionLink)
	}
	return strings.Join(lines, "\n")
}

// EmailSubject prefixes the title and zone for mail clients.
func (m AlertMessage) EmailSubject() string {
	return fmt.Sprintf("%s %s - %s", messagePrefix, m.Title, m.Zone)
}

func (m AlertMessage) payloadMap() map[string]any {
	payload := map[string]any{
		"title":           m.Title,
		"site":            m.Site,
		"zone":            m.Zone,
		"camera":          m.Camera,
		"local_time":      m.LocalTime,
		"event_type":      m.EventType,
		"severity":        m.Severity,
		"confidence_text": m.ConfidenceText,
		"shift":           m.Shift,
	}
	if m.ActionLink != "" {
		payload["action_link"] = m.ActionLink
	}
	return payload
}

// shiftName labels the coarse local time-of-day bucket attached to messages.
func shiftName(local time.Time) string {
	hour := local.Hour()
	switch {
	case hour >= 6 && hour < 14:
		return "morning"
	case hour >= 14 && hour < 22:
		return "afternoon"
	default:
		return "night"
	}
}

func confidenceText(confidence *float64) string {
	if confidence == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", *confidence*100)
}

// eventTitle turns "line_cross" into "Line Cross detected".
func eventTitle(eventType data.EventType) string {
	words := strings.Split(string(eventType), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ") + " detected"
}

const localTimeLayout = "2006-01-02 15:04:05 MST"

func buildEventMessage(ev *data.Event, zone *zones.Zone, local time.Time) AlertMessage {
	return AlertMessage{
		Title:          eventTitle(ev.EventType),
		Site:           zone.SiteID,
		Zone:           zone.ZoneID,
		Camera:         ev.CameraName,
		LocalTime:      local.Format(localTimeLayout),
		EventType:      string(ev.EventType),
		Severity:       string(zone.Severity),
		ConfidenceText: confidenceText(ev.Confidence),
		ActionLink:     ev.MediaURL,
		Shift:          shiftName(local),
	}
}

// buildOfflineMessage renders a camera-offline alert. The zone may be nil
// when the camera maps to no configured zone.
func buildOfflineMessage(cameraID string, zone *zones.Zone, local time.Time) AlertMessage {
	zoneID, siteID := "unknown", "unknown"
	severity := zones.SeverityHigh
	if zone != nil {
		zoneID, siteID, severity = zone.ZoneID, zone.SiteID, zone.Severity
	}
	return AlertMessage{
		Title:          "Camera offline",
		Site:           siteID,
		Zone:           zoneID,
		Camera:         cameraID,
		LocalTime:      local.Format(localTimeLayout),
		EventType:      string(data.EventCameraDisconnect),
		Severity:       string(severity),
		ConfidenceText: "n/a",
		Shift:          shiftName(local),
	}
}
