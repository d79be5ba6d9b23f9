package relay

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/metrics"
	"github.com/technosupport/ts-alert-relay/internal/zones"
)

// Gate reasons surfaced in responses and the audit trail.
const (
	ReasonUnknownZone        = "unknown_zone"
	ReasonCameraNotMapped    = "camera_not_mapped_to_zone"
	ReasonOutsideSchedule    = "outside_active_schedule"
	ReasonDedupeWindow       = "dedupe_window"
	ReasonSuppressionWindow  = "suppression_window"
	ReasonNoDeliveryChannels = "no_delivery_channel_configured"
)

// Store is the durable state the relay depends on. Implemented by data.Store.
type Store interface {
	SaveEvent(ctx context.Context, ev *data.Event, decision data.Decision, reason string) (string, error)
	UpdateEventDecision(ctx context.Context, eventID string, decision data.Decision, reason string) error
	SaveAlert(ctx context.Context, a *data.AlertRecord) error
	GetLastSentAt(ctx context.Context, key string) (*time.Time, error)
	SetLastSentAt(ctx context.Context, key string, when time.Time) error
	CleanupOldRecords(ctx context.Context, retentionDays int) error
}

// WhatsAppSender is the webhook-style channel contract.
type WhatsAppSender interface {
	Send(ctx context.Context, text string, payload map[string]any) error
}

// EmailSender is the SMTP-style channel contract.
type EmailSender interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// Config is the slice of process configuration the relay owns. Constructed
// once in main and passed in; the relay never reads globals.
type Config struct {
	DefaultTimezone       string
	EmailRecipients       []string
	RetentionDays         int
	CleanupIntervalEvents int
}

// Result is the terminal pipeline outcome reported to the caller.
type Result struct {
	Status  data.Decision `json:"status"`
	Reason  string        `json:"reason,omitempty"`
	EventID string        `json:"event_id"`
}

// Relay runs the gating pipeline that turns an inbound event into
// rejected, suppressed, sent or failed, and dispatches alerts with fallback.
type Relay struct {
	cfg       Config
	store     Store
	zones     *zones.Registry
	whatsapp  WhatsAppSender // nil when not configured
	email     EmailSender    // nil when not configured
	recorder  *metrics.Recorder
	publisher Publisher // nil when NATS is not configured
	logger    zerolog.Logger

	processed atomic.Int64
}

func New(cfg Config, store Store, registry *zones.Registry, whatsapp WhatsAppSender, email EmailSender, recorder *metrics.Recorder, logger zerolog.Logger) *Relay {
	if cfg.CleanupIntervalEvents <= 0 {
		cfg.CleanupIntervalEvents = 200
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	return &Relay{
		cfg:      cfg,
		store:    store,
		zones:    registry,
		whatsapp: whatsapp,
		email:    email,
		recorder: recorder,
		logger:   logger,
	}
}

// SetPublisher attaches an optional terminal-decision publisher.
func (r *Relay) SetPublisher(p Publisher) {
	r.publisher = p
}

// ProcessEvent runs the ordered gating pipeline. The event row is persisted
// first, unconditionally, so even rejected events leave an audit trail.
// A store failure is fatal for the in-flight request and propagates.
func (r *Relay) ProcessEvent(ctx context.Context, ev *data.Event) (Result, error) {
	startedAt := time.Now()

	eventID, err := r.store.SaveEvent(ctx, ev, data.DecisionProcessing, "")
	if err != nil {
		return Result{}, fmt.Errorf("persist event: %w", err)
	}

	zone := r.zones.GetZone(ev.ZoneID)
	if zone == nil {
		return r.finalizeRejected(ctx, ev, eventID, ReasonUnknownZone)
	}
	if !zone.HasCamera(ev.CameraID) {
		return r.finalizeRejected(ctx, ev, eventID, ReasonCameraNotMapped)
	}

	local := zones.Localize(ev.TimestampUTC, zone.ActiveSchedule.Timezone, r.cfg.DefaultTimezone)
	if !zone.ActiveSchedule.IsActiveAt(local) {
		return r.finalizeSuppressed(ctx, ev, eventID, ReasonOutsideSchedule, startedAt)
	}

	gateReason, err := r.dedupeGate(ctx, ev, zone)
	if err != nil {
		return Result{}, fmt.Errorf("dedupe gate: %w", err)
	}
	if gateReason != "" {
		return r.finalizeSuppressed(ctx, ev, eventID, gateReason, startedAt)
	}

	message := buildEventMessage(ev, zone, local)
	sent, dispatchReason, err := r.dispatchAlert(ctx, &eventID, zone, message)
	if err != nil {
		return Result{}, err
	}

	if sent {
		if err := r.store.UpdateEventDecision(ctx, eventID, data.DecisionSent, ""); err != nil {
			return Result{}, err
		}
		// A success resets both gates: the dedup key and the coarser
		// suppression key are stamped together.
		now := time.Now().UTC()
		if err := r.store.SetLastSentAt(ctx, dedupeKey(ev, zone), now); err != nil {
			return Result{}, err
		}
		if err := r.store.SetLastSentAt(ctx, suppressionKey(ev, zone), now); err != nil {
			return Result{}, err
		}
		r.postProcess(ctx, startedAt)
		result := Result{Status: data.DecisionSent, EventID: eventID}
		r.publishDecision(ev, result)
		return result, nil
	}

	if err := r.store.UpdateEventDecision(ctx, eventID, data.DecisionFailed, dispatchReason); err != nil {
		return Result{}, err
	}
	r.postProcess(ctx, startedAt)
	result := Result{Status: data.DecisionFailed, Reason: dispatchReason, EventID: eventID}
	r.publishDecision(ev, result)
	return result, nil
}

func (r *Relay) finalizeRejected(ctx context.Context, ev *data.Event, eventID, reason string) (Result, error) {
	if err := r.store.UpdateEventDecision(ctx, eventID, data.DecisionRejected, reason); err != nil {
		return Result{}, err
	}
	result := Result{Status: data.DecisionRejected, Reason: reason, EventID: eventID}
	r.publishDecision(ev, result)
	return result, nil
}

func (r *Relay) finalizeSuppressed(ctx context.Context, ev *data.Event, eventID, reason string, startedAt time.Time) (Result, error) {
	if err := r.store.UpdateEventDecision(ctx, eventID, data.DecisionSuppressed, reason); err != nil {
		return Result{}, err
	}
	r.recorder.EventSuppressed(reason)
	r.postProcess(ctx, startedAt)
	result := Result{Status: data.DecisionSuppressed, Reason: reason, EventID: eventID}
	r.publishDecision(ev, result)
	return result, nil
}

// dedupeGate checks the fine-grained dedup key before the coarser
// suppression key; the first matching window wins.
func (r *Relay) dedupeGate(ctx context.Context, ev *data.Event, zone *zones.Zone) (string, error) {
	now := time.Now().UTC()

	if zone.DedupeWindowSec > 0 {
		last, err := r.store.GetLastSentAt(ctx, dedupeKey(ev, zone))
		if err != nil {
			return "", err
		}
		if last != nil && now.Sub(*last) < time.Duration(zone.DedupeWindowSec)*time.Second {
			return ReasonDedupeWindow, nil
		}
	}

	if zone.SuppressionWindowSec > 0 {
		last, err := r.store.GetLastSentAt(ctx, suppressionKey(ev, zone))
		if err != nil {
			return "", err
		}
		if last != nil && now.Sub(*last) < time.Duration(zone.SuppressionWindowSec)*time.Second {
			return ReasonSuppressionWindow, nil
		}
	}

	return "", nil
}

// SendCameraOfflineAlert pushes an offline alert through the same dispatch
// path as event alerts. Used by the health monitor; no event row is created.
func (r *Relay) SendCameraOfflineAlert(ctx context.Context, cameraID string, lastSeenUTC time.Time) (bool, error) {
	zone := r.zones.ZoneForCamera(cameraID)

	tzName := ""
	if zone != nil {
		tzName = zone.ActiveSchedule.Timezone
	}
	local := zones.Localize(lastSeenUTC, tzName, r.cfg.DefaultTimezone)

	message := buildOfflineMessage(cameraID, zone, local)
	sent, reason, err := r.dispatchAlert(ctx, nil, zone, message)
	if err != nil {
		return false, err
	}
	if !sent {
		r.logger.Warn().
			Str("camera_id", cameraID).
			Str("reason", reason).
			Msg("camera offline alert failed")
	}
	r.publishOfflineDecision(cameraID, zone, sent, reason)
	return sent, nil
}

// postProcess runs the per-event bookkeeping: latency observation and the
// traffic-driven retention cleanup. Rejections never reach here.
func (r *Relay) postProcess(ctx context.Context, startedAt time.Time) {
	r.recorder.ObserveProcessing(time.Since(startedAt).Seconds())

	n := r.processed.Add(1)
	if n%int64(r.cfg.CleanupIntervalEvents) == 0 {
		if err := r.store.CleanupOldRecords(ctx, r.cfg.RetentionDays); err != nil {
			r.logger.Error().Err(err).Msg("retention cleanup failed")
		}
	}
}

func dedupeKey(ev *data.Event, zone *zones.Zone) string {
	return fmt.Sprintf("dedupe:%s:%s:%s", zone.ZoneID, ev.CameraID, ev.EventType)
}

func suppressionKey(ev *data.Event, zone *zones.Zone) string {
	return fmt.Sprintf("suppress:%s:%s", zone.ZoneID, ev.CameraID)
}
