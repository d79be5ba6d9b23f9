package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/metrics"
)

// HeartbeatStore is the slice of the data layer the monitor reads and writes.
type HeartbeatStore interface {
	GetStaleCameras(ctx context.Context, thresholdSec int, now time.Time) ([]data.StaleCamera, error)
	GetLastHealthAlertAt(ctx context.Context, cameraID string) (*time.Time, error)
	SetLastHealthAlertAt(ctx context.Context, cameraID string, when time.Time) error
}

// Alerter dispatches the offline alert. Implemented by relay.Relay.
type Alerter interface {
	SendCameraOfflineAlert(ctx context.Context, cameraID string, lastSeenUTC time.Time) (bool, error)
}

// MonitorConfig tunes the stale scan: how often it runs, how long a camera
// may stay silent before it counts as offline, and the minimum gap between
// repeat alerts for the same camera.
type MonitorConfig struct {
	Interval            time.Duration
	OfflineThresholdSec int
	AlertCooldownSec    int
}

// Monitor periodically scans heartbeats for cameras that went quiet and
// raises one offline alert per camera per cooldown period.
type Monitor struct {
	config   MonitorConfig
	store    HeartbeatStore
	alerter  Alerter
	recorder *metrics.Recorder
	logger   zerolog.Logger
	quit     chan struct{}
	wg       sync.WaitGroup
}

func NewMonitor(cfg MonitorConfig, store HeartbeatStore, alerter Alerter, recorder *metrics.Recorder, logger zerolog.Logger) *Monitor {
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.OfflineThresholdSec == 0 {
		cfg.OfflineThresholdSec = 180
	}
	if cfg.AlertCooldownSec == 0 {
		cfg.AlertCooldownSec = 900
	}
	return &Monitor{
		config:   cfg,
		store:    store,
		alerter:  alerter,
		recorder: recorder,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Start initiates the scan loop.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.run()
}

func (m *Monitor) Stop() {
	close(m.quit)
	m.wg.Wait()
}

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RunOnce(context.Background())
		case <-m.quit:
			return
		}
	}
}

// RunOnce performs a single stale-camera scan. Exported so callers can
// trigger a scan outside the ticker.
func (m *Monitor) RunOnce(ctx context.Context) {
	now := time.Now().UTC()

	stale, err := m.store.GetStaleCameras(ctx, m.config.OfflineThresholdSec, now)
	if err != nil {
		m.logger.Error().Err(err).Msg("stale camera scan failed")
		return
	}

	for _, cam := range stale {
		m.checkCamera(ctx, cam, now)
	}
}

func (m *Monitor) checkCamera(ctx context.Context, cam data.StaleCamera, now time.Time) {
	lastAlert, err := m.store.GetLastHealthAlertAt(ctx, cam.CameraID)
	if err != nil {
		m.logger.Error().Err(err).Str("camera_id", cam.CameraID).Msg("health alert state lookup failed")
		return
	}
	if lastAlert != nil && now.Sub(*lastAlert) < time.Duration(m.config.AlertCooldownSec)*time.Second {
		return
	}

	sent, err := m.alerter.SendCameraOfflineAlert(ctx, cam.CameraID, cam.LastSeen)
	if err != nil {
		m.logger.Error().Err(err).Str("camera_id", cam.CameraID).Msg("offline alert dispatch failed")
		return
	}
	if !sent {
		// No cooldown stamp: the next scan retries until a channel accepts it.
		return
	}

	m.recorder.HealthAlert()
	m.logger.Info().
		Str("camera_id", cam.CameraID).
		Time("last_seen", cam.LastSeen).
		Msg("camera offline alert sent")

	if err := m.store.SetLastHealthAlertAt(ctx, cam.CameraID, now); err != nil {
		m.logger.Error().Err(err).Str("camera_id", cam.CameraID).Msg("cooldown stamp failed")
	}
}
