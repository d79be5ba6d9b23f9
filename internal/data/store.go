package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// dedupCacheSize bounds the in-process read cache over dedupe_state. The
// cache is write-through, so within this single-process deployment a hit is
// as authoritative as the row behind it.
const dedupCacheSize = 4096

// DBTX is a common interface for *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store is the single serialization point for all durable state: event
// records, alert audit rows, dedup/suppression timestamps, camera heartbeats
// and health-alert cooldowns. Writes hold mu; reads go straight to the DB
// (or the dedup cache) and may interleave with writers.
type Store struct {
	DB DBTX

	mu         sync.Mutex
	dedupCache *lru.Cache[string, time.Time]
}

func NewStore(db DBTX) *Store {
	cache, _ := lru.New[string, time.Time](dedupCacheSize)
	return &Store{DB: db, dedupCache: cache}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// SaveEvent creates a new immutable event record and returns its generated
// identifier. Every inbound event lands here, including ones the pipeline
// will reject a step later; that keeps the audit trail complete.
func (s *Store) SaveEvent(ctx context.Context, ev *Event, decision Decision, reason string) (string, error) {
	eventID := uuid.New().String()

	rawPayload := ev.RawPayload
	if rawPayload == nil {
		rawPayload = map[string]any{}
	}
	payload, err := json.Marshal(rawPayload)
	if err != nil {
		return "", fmt.Errorf("marshal raw payload: %w", err)
	}

	query := `
		INSERT INTO events (
			id, vendor, event_type, camera_id, camera_name, zone_id,
			timestamp_utc, confidence, media_url, raw_payload,
			received_at, decision, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.DB.ExecContext(ctx, query,
		eventID, ev.Vendor, ev.EventType, ev.CameraID, ev.CameraName, ev.ZoneID,
		ev.TimestampUTC.UTC(), ev.Confidence, nullString(ev.MediaURL), payload,
		time.Now().UTC(), decision, nullString(reason),
	)
	if err != nil {
		return "", err
	}
	return eventID, nil
}

// UpdateEventDecision finalizes the pipeline outcome. An unknown identifier
// is a silent no-op; it cannot happen unless the event row was just purged.
func (s *Store) UpdateEventDecision(ctx context.Context, eventID string, decision Decision, reason string) error {
	query := `UPDATE events SET decision = $1, reason = $2 WHERE id = $3`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.DB.ExecContext(ctx, query, decision, nullString(reason), eventID)
	return err
}

// SaveAlert appends one audit record for a channel dispatch attempt.
func (s *Store) SaveAlert(ctx context.Context, a *AlertRecord) error {
	query := `
		INSERT INTO alerts (id, event_id, channel, destination, sent_at, status, error, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.DB.ExecContext(ctx, query,
		uuid.New().String(), a.EventID, a.Channel, nullString(a.Destination),
		time.Now().UTC(), a.Status, nullString(a.Error), []byte(a.Payload),
	)
	return err
}

// GetLastSentAt returns the last successful send under key, or nil if none.
func (s *Store) GetLastSentAt(ctx context.Context, key string) (*time.Time, error) {
	if ts, ok := s.dedupCache.Get(key); ok {
		return &ts, nil
	}

	query := `SELECT last_sent_at FROM dedupe_state WHERE dedupe_key = $1`

	var ts time.Time
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.dedupCache.Add(key, ts)
	return &ts, nil
}

// SetLastSentAt upserts the dedup/suppression timestamp for key. Called only
// after a successful dispatch.
func (s *Store) SetLastSentAt(ctx context.Context, key string, when time.Time) error {
	query := `
		INSERT INTO dedupe_state (dedupe_key, last_sent_at)
		VALUES ($1, $2)
		ON CONFLICT (dedupe_key) DO UPDATE SET last_sent_at = EXCLUDED.last_sent_at`

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.DB.ExecContext(ctx, query, key, when.UTC()); err != nil {
		return err
	}
	s.dedupCache.Add(key, when.UTC())
	return nil
}

// UpsertCameraHeartbeat is an unconditional last-write-wins update.
func (s *Store) UpsertCameraHeartbeat(ctx context.Context, cameraID string, seenAt time.Time) error {
	query := `
		INSERT INTO camera_heartbeat (camera_id, last_seen)
		VALUES ($1, $2)
		ON CONFLICT (camera_id) DO UPDATE SET last_seen = EXCLUDED.last_seen`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.DB.ExecContext(ctx, query, cameraID, seenAt.UTC())
	return err
}

// GetStaleCameras lists heartbeats older than now - threshold.
func (s *Store) GetStaleCameras(ctx context.Context, thresholdSec int, now time.Time) ([]StaleCamera, error) {
	staleBefore := now.Add(-time.Duration(thresholdSec) * time.Second)

	query := `SELECT camera_id, last_seen FROM camera_heartbeat WHERE last_seen < $1`

	rows, err := s.DB.QueryContext(ctx, query, staleBefore.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []StaleCamera
	for rows.Next() {
		var c StaleCamera
		if err := rows.Scan(&c.CameraID, &c.LastSeen); err != nil {
			return nil, err
		}
		stale = append(stale, c)
	}
	return stale, rows.Err()
}

func (s *Store) GetLastHealthAlertAt(ctx context.Context, cameraID string) (*time.Time, error) {
	query := `SELECT last_alert_at FROM health_alert_state WHERE camera_id = $1`

	var ts time.Time
	err := s.DB.QueryRowContext(ctx, query, cameraID).Scan(&ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// SetLastHealthAlertAt records the offline-alert cooldown stamp. Only called
// after a successful dispatch so a failed alert is retried on the next tick.
func (s *Store) SetLastHealthAlertAt(ctx context.Context, cameraID string, when time.Time) error {
	query := `
		INSERT INTO health_alert_state (camera_id, last_alert_at)
		VALUES ($1, $2)
		ON CONFLICT (camera_id) DO UPDATE SET last_alert_at = EXCLUDED.last_alert_at`

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.DB.ExecContext(ctx, query, cameraID, when.UTC())
	return err
}

// CleanupOldRecords purges alert, event and dedup-state rows older than the
// retention cutoff. Heartbeats and health-alert state are current-state
// tables, not history; they are never purged here.
func (s *Store) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM alerts WHERE sent_at < $1`, cutoff); err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE received_at < $1`, cutoff); err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM dedupe_state WHERE last_sent_at < $1`, cutoff); err != nil {
		return err
	}
	return nil
}
