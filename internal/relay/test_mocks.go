package relay

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/technosupport/ts-alert-relay/internal/data"
)

// MockStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveEvent(ctx context.Context, ev *data.Event, decision data.Decision, reason string) (string, error) {
	args := m.Called(ctx, ev, decision, reason)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UpdateEventDecision(ctx context.Context, eventID string, decision data.Decision, reason string) error {
	args := m.Called(ctx, eventID, decision, reason)
	return args.Error(0)
}

func (m *MockStore) SaveAlert(ctx context.Context, a *data.AlertRecord) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockStore) GetLastSentAt(ctx context.Context, key string) (*time.Time, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockStore) SetLastSentAt(ctx context.Context, key string, when time.Time) error {
	args := m.Called(ctx, key, when)
	return args.Error(0)
}

func (m *MockStore) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	args := m.Called(ctx, retentionDays)
	return args.Error(0)
}

// MockWhatsApp
type MockWhatsApp struct {
	mock.Mock
}

func (m *MockWhatsApp) Send(ctx context.Context, text string, payload map[string]any) error {
	args := m.Called(ctx, text, payload)
	return args.Error(0)
}

// MockEmail
type MockEmail struct {
	mock.Mock
}

func (m *MockEmail) Send(ctx context.Context, recipients []string, subject, body string) error {
	args := m.Called(ctx, recipients, subject, body)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishDecision(d *DecisionEvent) error {
	args := m.Called(d)
	return args.Error(0)
}
