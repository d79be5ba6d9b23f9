package data

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrRecordNotFound = errors.New("record not found")

type Vendor string

const (
	VendorIntelbras Vendor = "intelbras"
	VendorHikvision Vendor = "hikvision"
)

func (v Vendor) Valid() bool {
	switch v {
	case VendorIntelbras, VendorHikvision:
		return true
	}
	return false
}

type EventType string

const (
	EventIntrusion        EventType = "intrusion"
	EventLineCross        EventType = "line_cross"
	EventRegionEntry      EventType = "region_entry"
	EventLoitering        EventType = "loitering"
	EventFaceMatch        EventType = "face_match"
	EventCameraDisconnect EventType = "camera_disconnect"
)

func (t EventType) Valid() bool {
	switch t {
	case EventIntrusion, EventLineCross, EventRegionEntry,
		EventLoitering, EventFaceMatch, EventCameraDisconnect:
		return true
	}
	return false
}

// Decision is the terminal (or in-flight) pipeline outcome of an event.
type Decision string

const (
	DecisionProcessing Decision = "processing"
	DecisionRejected   Decision = "rejected"
	DecisionSuppressed Decision = "suppressed"
	DecisionSent       Decision = "sent"
	DecisionFailed     Decision = "failed"
)

// Event is one inbound detection event. Immutable once received; only its
// decision/reason columns are updated as the pipeline finalizes.
type Event struct {
	Vendor       Vendor         `json:"vendor"`
	EventType    EventType      `json:"event_type"`
	CameraID     string         `json:"camera_id"`
	CameraName   string         `json:"camera_name"`
	ZoneID       string         `json:"zone_id"`
	TimestampUTC time.Time      `json:"timestamp_utc"`
	Confidence   *float64       `json:"confidence,omitempty"`
	MediaURL     string         `json:"media_url,omitempty"`
	RawPayload   map[string]any `json:"raw_payload,omitempty"`
}

// AlertRecord is one append-only audit row for a channel dispatch attempt.
// EventID is nil for camera-offline alerts.
type AlertRecord struct {
	EventID     *string
	Channel     string
	Destination string
	Status      string
	Error       string
	Payload     json.RawMessage
}

const (
	AlertStatusSuccess = "success"
	AlertStatusFailed  = "failed"
)

// StaleCamera is a heartbeat older than the offline threshold.
type StaleCamera struct {
	CameraID string
	LastSeen time.Time
}
