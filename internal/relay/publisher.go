package relay

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/zones"
)

// DecisionEvent is the envelope published for every terminal pipeline
// outcome, for downstream consumers (dashboards, SIEM feeds).
type DecisionEvent struct {
	Kind      string    `json:"kind"` // "cv_event" or "camera_offline"
	EventID   string    `json:"event_id,omitempty"`
	ZoneID    string    `json:"zone_id"`
	CameraID  string    `json:"camera_id"`
	EventType string    `json:"event_type"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}

type Publisher interface {
	PublishDecision(d *DecisionEvent) error
}

// NATSPublisher pushes decision envelopes to a subject with bounded retry.
type NATSPublisher struct {
	conn       *nats.Conn
	subject    string
	maxRetries int
}

func NewNATSPublisher(conn *nats.Conn, subject string, maxRetries int) *NATSPublisher {
	if subject == "" {
		subject = "alerts.decisions"
	}
	return &NATSPublisher{conn: conn, subject: subject, maxRetries: maxRetries}
}

func (p *NATSPublisher) PublishDecision(d *DecisionEvent) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	for i := 0; i <= p.maxRetries; i++ {
		err = p.conn.Publish(p.subject, raw)
		if err == nil {
			return nil
		}
		time.Sleep(time.Duration(i*100) * time.Millisecond)
	}
	return fmt.Errorf("publish failed after %d retries: %w", p.maxRetries, err)
}

func (r *Relay) publishDecision(ev *data.Event, result Result) {
	if r.publisher == nil {
		return
	}
	d := &DecisionEvent{
		Kind:      "cv_event",
		EventID:   result.EventID,
		ZoneID:    ev.ZoneID,
		CameraID:  ev.CameraID,
		EventType: string(ev.EventType),
		Status:    string(result.Status),
		Reason:    result.Reason,
		DecidedAt: time.Now().UTC(),
	}
	if err := r.publisher.PublishDecision(d); err != nil {
		r.logger.Warn().Err(err).Str("event_id", result.EventID).Msg("decision publish failed")
	}
}

func (r *Relay) publishOfflineDecision(cameraID string, zone *zones.Zone, sent bool, reason string) {
	if r.publisher == nil {
		return
	}
	zoneID := "unknown"
	if zone != nil {
		zoneID = zone.ZoneID
	}
	status := string(data.DecisionSent)
	if !sent {
		status = string(data.DecisionFailed)
	}
	d := &DecisionEvent{
		Kind:      "camera_offline",
		ZoneID:    zoneID,
		CameraID:  cameraID,
		EventType: string(data.EventCameraDisconnect),
		Status:    status,
		Reason:    reason,
		DecidedAt: time.Now().UTC(),
	}
	if err := r.publisher.PublishDecision(d); err != nil {
		r.logger.Warn().Err(err).Str("camera_id", cameraID).Msg("decision publish failed")
	}
}
