package live

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/technosupport/ts-alert-relay/internal/relay"
)

const subscriberBuffer = 16

// Feed fans terminal pipeline decisions out to live subscribers (the
// dashboard's websocket clients). It implements relay.Publisher so it can be
// chained with the NATS publisher.
type Feed struct {
	mu     sync.RWMutex
	subs   map[chan *relay.DecisionEvent]struct{}
	next   relay.Publisher // optional downstream, typically NATS
	logger zerolog.Logger
}

func NewFeed(next relay.Publisher, logger zerolog.Logger) *Feed {
	return &Feed{
		subs:   make(map[chan *relay.DecisionEvent]struct{}),
		next:   next,
		logger: logger,
	}
}

// Subscribe registers a new listener. The returned cancel func must be
// called when the client goes away.
func (f *Feed) Subscribe() (<-chan *relay.DecisionEvent, func()) {
	ch := make(chan *relay.DecisionEvent, subscriberBuffer)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// PublishDecision broadcasts to every subscriber and forwards downstream.
// A slow subscriber gets dropped messages, never a blocked pipeline.
func (f *Feed) PublishDecision(d *relay.DecisionEvent) error {
	f.mu.RLock()
	for ch := range f.subs {
		select {
		case ch <- d:
		default:
			f.logger.Warn().Str("camera_id", d.CameraID).Msg("live subscriber lagging, decision dropped")
		}
	}
	f.mu.RUnlock()

	if f.next != nil {
		return f.next.PublishDecision(d)
	}
	return nil
}

// SubscriberCount reports the current listener count, for readiness output.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
