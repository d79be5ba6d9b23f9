package health

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/technosupport/ts-alert-relay/internal/data"
)

// MockHeartbeatStore
type MockHeartbeatStore struct {
	mock.Mock
}

func (m *MockHeartbeatStore) GetStaleCameras(ctx context.Context, thresholdSec int, now time.Time) ([]data.StaleCamera, error) {
	args := m.Called(ctx, thresholdSec, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.StaleCamera), args.Error(1)
}

func (m *MockHeartbeatStore) GetLastHealthAlertAt(ctx context.Context, cameraID string) (*time.Time, error) {
	args := m.Called(ctx, cameraID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockHeartbeatStore) SetLastHealthAlertAt(ctx context.Context, cameraID string, when time.Time) error {
	args := m.Called(ctx, cameraID, when)
	return args.Error(0)
}

// MockAlerter
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) SendCameraOfflineAlert(ctx context.Context, cameraID string, lastSeenUTC time.Time) (bool, error) {
	args := m.Called(ctx, cameraID, lastSeenUTC)
	return args.Bool(0), args.Error(1)
}
