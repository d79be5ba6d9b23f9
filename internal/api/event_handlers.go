package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/metrics"
	"github.com/technosupport/ts-alert-relay/internal/relay"
)

// EventProcessor is the pipeline entrypoint. Implemented by relay.Relay.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, ev *data.Event) (relay.Result, error)
}

// HeartbeatWriter records camera liveness pings. Implemented by data.Store.
type HeartbeatWriter interface {
	UpsertCameraHeartbeat(ctx context.Context, cameraID string, seenAt time.Time) error
}

type EventHandler struct {
	Processor  EventProcessor
	Heartbeats HeartbeatWriter
	Recorder   *metrics.Recorder
}

func NewEventHandler(p EventProcessor, hb HeartbeatWriter, rec *metrics.Recorder) *EventHandler {
	return &EventHandler{Processor: p, Heartbeats: hb, Recorder: rec}
}

// cvEventRequest is the inbound detection payload posted by edge gateways.
type cvEventRequest struct {
	Vendor     string         `json:"vendor"`
	EventType  string         `json:"event_type"`
	CameraID   string         `json:"camera_id"`
	CameraName string         `json:"camera_name"`
	ZoneID     string         `json:"zone_id"`
	Timestamp  *time.Time     `json:"timestamp_utc"`
	Confidence *float64       `json:"confidence"`
	MediaURL   string         `json:"media_url"`
	Raw        map[string]any `json:"raw_payload"`
}

func (req *cvEventRequest) validate() string {
	if !data.Vendor(req.Vendor).Valid() {
		return "unknown vendor"
	}
	if !data.EventType(req.EventType).Valid() {
		return "unknown event_type"
	}
	if req.CameraID == "" {
		return "camera_id is required"
	}
	if req.ZoneID == "" {
		return "zone_id is required"
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		return "confidence must be within [0, 1]"
	}
	return ""
}

// IngestEvent receives one detection event and runs it through the pipeline.
// Sent and suppressed come back 200; a rejection is the caller's mistake and
// comes back 400; a dispatch failure maps to 502 so gateways can retry.
func (h *EventHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var req cvEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	ev := &data.Event{
		Vendor:       data.Vendor(req.Vendor),
		EventType:    data.EventType(req.EventType),
		CameraID:     req.CameraID,
		CameraName:   req.CameraName,
		ZoneID:       req.ZoneID,
		TimestampUTC: ts,
		Confidence:   req.Confidence,
		MediaURL:     req.MediaURL,
		RawPayload:   req.Raw,
	}
	if ev.CameraName == "" {
		ev.CameraName = ev.CameraID
	}

	h.Recorder.EventReceived(req.Vendor, req.EventType)

	result, err := h.Processor.ProcessEvent(r.Context(), ev)
	if err != nil {
		http.Error(w, "event processing failed", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	switch result.Status {
	case data.DecisionRejected:
		status = http.StatusBadRequest
	case data.DecisionFailed:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

type cameraPingRequest struct {
	CameraID     string     `json:"camera_id"`
	TimestampUTC *time.Time `json:"timestamp_utc"`
}

// CameraPing records a heartbeat for the health monitor's stale scan.
func (h *EventHandler) CameraPing(w http.ResponseWriter, r *http.Request) {
	var req cameraPingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.CameraID == "" {
		http.Error(w, "camera_id is required", http.StatusBadRequest)
		return
	}

	seenAt := time.Now().UTC()
	if req.TimestampUTC != nil {
		seenAt = req.TimestampUTC.UTC()
	}

	if err := h.Heartbeats.UpsertCameraHeartbeat(r.Context(), req.CameraID, seenAt); err != nil {
		http.Error(w, "failed to record heartbeat", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "camera_id": req.CameraID})
}
