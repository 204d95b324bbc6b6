// Package observability - Prometheus-метрики сервиса.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics держит все счетчики процесса.
type Metrics struct {
	CyclesTotal        prometheus.Counter
	CycleErrors        prometheus.Counter
	EventsProcessed    prometheus.Counter
	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
	FloorCacheEntries  prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "portals_watcher"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "cycles_total",
			Help:      "Total number of polling cycles started",
		}),
		CycleErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "cycle_errors_total",
			Help:      "Total number of cycles skipped because the feed was unavailable",
		}),
		EventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "events_processed_total",
			Help:      "Total number of unseen market events processed",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_sent_total",
			Help:      "Total number of alerts delivered",
		}),
		NotificationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notification_errors_total",
			Help:      "Total number of failed alert deliveries",
		}),
		FloorCacheEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "floor_cache_entries",
			Help:      "Current number of cached floor prices",
		}),
	}
}

// Handler отдает /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics - инстанс по умолчанию.
var DefaultMetrics = NewMetrics("")
