package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/metrics"
)

func testMonitor(store HeartbeatStore, alerter Alerter) *Monitor {
	return NewMonitor(MonitorConfig{}, store, alerter, metrics.NewRecorder(), zerolog.Nop())
}

func TestMonitor_RunOnce_AlertsAndStampsCooldown(t *testing.T) {
	store := new(MockHeartbeatStore)
	alerter := new(MockAlerter)
	m := testMonitor(store, alerter)

	lastSeen := time.Now().UTC().Add(-10 * time.Minute)
	stale := []data.StaleCamera{{CameraID: "cam-1", LastSeen: lastSeen}}

	store.On("GetStaleCameras", mock.Anything, 180, mock.Anything).Return(stale, nil)
	store.On("GetLastHealthAlertAt", mock.Anything, "cam-1").Return(nil, nil)
	alerter.On("SendCameraOfflineAlert", mock.Anything, "cam-1", lastSeen).Return(true, nil)
	store.On("SetLastHealthAlertAt", mock.Anything, "cam-1", mock.Anything).Return(nil)

	m.RunOnce(context.Background())

	store.AssertExpectations(t)
	alerter.AssertExpectations(t)
}

func TestMonitor_RunOnce_CooldownSuppressesRepeat(t *testing.T) {
	store := new(MockHeartbeatStore)
	alerter := new(MockAlerter)
	m := testMonitor(store, alerter)

	lastSeen := time.Now().UTC().Add(-10 * time.Minute)
	lastAlert := time.Now().UTC().Add(-5 * time.Minute) // inside the 900s cooldown
	stale := []data.StaleCamera{{CameraID: "cam-1", LastSeen: lastSeen}}

	store.On("GetStaleCameras", mock.Anything, 180, mock.Anything).Return(stale, nil)
	store.On("GetLastHealthAlertAt", mock.Anything, "cam-1").Return(&lastAlert, nil)

	m.RunOnce(context.Background())

	alerter.AssertNotCalled(t, "SendCameraOfflineAlert", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetLastHealthAlertAt", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestMonitor_RunOnce_ExpiredCooldownRealerts(t *testing.T) {
	store := new(MockHeartbeatStore)
	alerter := new(MockAlerter)
	m := testMonitor(store, alerter)

	lastSeen := time.Now().UTC().Add(-30 * time.Minute)
	lastAlert := time.Now().UTC().Add(-16 * time.Minute) // past the 900s cooldown
	stale := []data.StaleCamera{{CameraID: "cam-1", LastSeen: lastSeen}}

	store.On("GetStaleCameras", mock.Anything, 180, mock.Anything).Return(stale, nil)
	store.On("GetLastHealthAlertAt", mock.Anything, "cam-1").Return(&lastAlert, nil)
	alerter.On("SendCameraOfflineAlert", mock.Anything, "cam-1", lastSeen).Return(true, nil)
	store.On("SetLastHealthAlertAt", mock.Anything, "cam-1", mock.Anything).Return(nil)

	m.RunOnce(context.Background())

	store.AssertExpectations(t)
	alerter.AssertExpectations(t)
}

func TestMonitor_RunOnce_FailedDispatchSkipsCooldownStamp(t *testing.T) {
	store := new(MockHeartbeatStore)
	alerter := new(MockAlerter)
	m := testMonitor(store, alerter)

	lastSeen := time.Now().UTC().Add(-10 * time.Minute)
	stale := []data.StaleCamera{{CameraID: "cam-1", LastSeen: lastSeen}}

	store.On("GetStaleCameras", mock.Anything, 180, mock.Anything).Return(stale, nil)
	store.On("GetLastHealthAlertAt", mock.Anything, "cam-1").Return(nil, nil)
	alerter.On("SendCameraOfflineAlert", mock.Anything, "cam-1", lastSeen).Return(false, nil)

	m.RunOnce(context.Background())

	// Next scan retries: no stamp was written.
	store.AssertNotCalled(t, "SetLastHealthAlertAt", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestMonitor_RunOnce_ScanErrorIsNonFatal(t *testing.T) {
	store := new(MockHeartbeatStore)
	alerter := new(MockAlerter)
	m := testMonitor(store, alerter)

	store.On("GetStaleCameras", mock.Anything, 180, mock.Anything).Return(nil, errors.New("db down"))

	m.RunOnce(context.Background())

	alerter.AssertNotCalled(t, "SendCameraOfflineAlert", mock.Anything, mock.Anything, mock.Anything)
}

func TestMonitor_StartStop(t *testing.T) {
	store := new(MockHeartbeatStore)
	alerter := new(MockAlerter)
	m := NewMonitor(MonitorConfig{Interval: time.Hour}, store, alerter, metrics.NewRecorder(), zerolog.Nop())

	m.Start()
	m.Stop()
}
