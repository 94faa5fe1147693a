package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot. Each instance owns
// its registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Broadcasts        *prometheus.CounterVec
	Sessions          *prometheus.CounterVec
	ScheduleFetches   *prometheus.CounterVec
	Triggers          *prometheus.CounterVec
	BroadcastDuration prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Completed broadcasts by trigger.",
		}, []string{"trigger"}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_sessions_total",
			Help:      "Voice sessions by terminal state.",
		}, []string{"state"}),
		ScheduleFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_fetches_total",
			Help:      "Prayer time source fetches by result.",
		}, []string{"result"}),
		Triggers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcement_triggers_total",
			Help:      "Announcement triggers fired by prayer.",
		}, []string{"prayer"}),
		BroadcastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "broadcast_duration_seconds",
			Help:      "Wall time of a full broadcast across all targets.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}

func (m *Metrics) ObserveBroadcast(trigger string, d time.Duration) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(trigger).Inc()
	m.BroadcastDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveSession(state string) {
	if m == nil {
		return
	}
	m.Sessions.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveFetch(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ScheduleFetches.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTrigger(prayer string) {
	if m == nil {
		return
	}
	m.Triggers.WithLabelValues(prayer).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
