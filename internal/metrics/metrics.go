// Package metrics holds the prometheus instruments for the notification
// pipeline. Instruments are built unregistered so tests can construct as
// many dispatchers as they like; the binary registers them once at startup.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all core metrics.
type Metrics struct {
	NotificationsDelivered  prometheus.Counter
	NotificationsSuppressed *prometheus.CounterVec
	DuplicatesDropped       prometheus.Counter
	PendingQueueSize        prometheus.Gauge
	DeliveryLatency         prometheus.Histogram
	CheckRuns               *prometheus.CounterVec
	CheckFailures           *prometheus.CounterVec
}

// New creates the core metric set under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		NotificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_delivered_total",
			Help:      "Total number of notifications delivered to the sink",
		}),
		NotificationsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Total number of notifications rejected at submission",
		}, []string{"reason"}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_duplicates_dropped_total",
			Help:      "Total number of duplicate pending notifications dropped",
		}),
		PendingQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications_pending",
			Help:      "Current number of notifications waiting for delivery",
		}),
		DeliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notification_delivery_latency_seconds",
			Help:      "Time between submission and delivery",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		CheckRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_runs_total",
			Help:      "Total number of periodic check invocations",
		}, []string{"check"}),
		CheckFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_failures_total",
			Help:      "Total number of periodic check failures",
		}, []string{"check"}),
	}
}

// Register registers every instrument with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.NotificationsDelivered,
		m.NotificationsSuppressed,
		m.DuplicatesDropped,
		m.PendingQueueSize,
		m.DeliveryLatency,
		m.CheckRuns,
		m.CheckFailures,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
