package live

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technosupport/ts-alert-relay/internal/relay"
)

func decision(cameraID string) *relay.DecisionEvent {
	return &relay.DecisionEvent{
		Kind:      "cv_event",
		CameraID:  cameraID,
		ZoneID:    "dock-zone",
		Status:    "sent",
		DecidedAt: time.Now().UTC(),
	}
}

func TestFeed_BroadcastsToSubscribers(t *testing.T) {
	f := NewFeed(nil, zerolog.Nop())

	ch1, cancel1 := f.Subscribe()
	ch2, cancel2 := f.Subscribe()
	defer cancel1()
	defer cancel2()

	require.NoError(t, f.PublishDecision(decision("cam-1")))

	for _, ch := range []<-chan *relay.DecisionEvent{ch1, ch2} {
		select {
		case d := <-ch:
			assert.Equal(t, "cam-1", d.CameraID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive decision")
		}
	}
}

func TestFeed_CancelStopsDelivery(t *testing.T) {
	f := NewFeed(nil, zerolog.Nop())

	ch, cancel := f.Subscribe()
	cancel()
	cancel() // idempotent

	require.NoError(t, f.PublishDecision(decision("cam-1")))

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, f.SubscriberCount())
}

func TestFeed_SlowSubscriberDoesNotBlock(t *testing.T) {
	f := NewFeed(nil, zerolog.Nop())

	_, cancel := f.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = f.PublishDecision(decision("cam-1"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a lagging subscriber")
	}
}

type captivePublisher struct {
	got []*relay.DecisionEvent
}

func (p *captivePublisher) PublishDecision(d *relay.DecisionEvent) error {
	p.got = append(p.got, d)
	return nil
}

func TestFeed_ForwardsDownstream(t *testing.T) {
	next := &captivePublisher{}
	f := NewFeed(next, zerolog.Nop())

	require.NoError(t, f.PublishDecision(decision("cam-7")))
	require.Len(t, next.got, 1)
	assert.Equal(t, "cam-7", next.got[0].CameraID)
}
