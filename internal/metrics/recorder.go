package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry and is passed explicitly to the relay and
// the health monitor. Core logic never reaches into a global registry.
type Recorder struct {
	registry *prometheus.Registry

	eventsReceived    *prometheus.CounterVec
	eventsSuppressed  *prometheus.CounterVec
	alertsSent        *prometheus.CounterVec
	healthAlerts      prometheus.Counter
	processingSeconds prometheus.Histogram
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{registry: reg}

	r.eventsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cv_events_received_total",
		Help: "Total CV events received",
	}, []string{"vendor", "event_type"})
	reg.MustRegister(r.eventsReceived)

	r.eventsSuppressed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cv_events_suppressed_total",
		Help: "Total CV events suppressed",
	}, []string{"reason"})
	reg.MustRegister(r.eventsSuppressed)

	r.alertsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cv_alerts_sent_total",
		Help: "Total alert dispatch attempts",
	}, []string{"channel", "status"})
	reg.MustRegister(r.alertsSent)

	r.healthAlerts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cv_camera_health_alerts_total",
		Help: "Camera offline alerts triggered",
	})
	reg.MustRegister(r.healthAlerts)

	r.processingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "cv_event_processing_seconds",
		Help: "Event processing latency",
	})
	reg.MustRegister(r.processingSeconds)

	return r
}

func (r *Recorder) EventReceived(vendor, eventType string) {
	r.eventsReceived.WithLabelValues(vendor, eventType).Inc()
}

func (r *Recorder) EventSuppressed(reason string) {
	r.eventsSuppressed.WithLabelValues(reason).Inc()
}

func (r *Recorder) AlertSent(channel, status string) {
	r.alertsSent.WithLabelValues(channel, status).Inc()
}

func (r *Recorder) HealthAlert() {
	r.healthAlerts.Inc()
}

func (r *Recorder) ObserveProcessing(seconds float64) {
	r.processingSeconds.Observe(seconds)
}

// Handler exposes the private registry for the /metrics route.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
