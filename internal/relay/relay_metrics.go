package relay

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the relay subsystem. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	DeliveriesTotal  *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	PagerNotReady    prometheus.Counter
}

// NewMetrics registers and returns relay metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagerelay_deliveries_total",
			Help: "Total delivery attempts by action and outcome.",
		}, []string{"action", "outcome"}),
		DeliveryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pagerelay_delivery_duration_seconds",
			Help:    "Duration of delivery attempts in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"action"}),
		PagerNotReady: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagerelay_pager_not_ready_total",
			Help: "Delivery attempts made while no routing key was resolved.",
		}),
	}

	reg.MustRegister(
		m.DeliveriesTotal,
		m.DeliveryDuration,
		m.PagerNotReady,
	)

	return m
}

// Observe records one finished delivery.
func (m *Metrics) Observe(d *Delivery) {
	if m == nil {
		return
	}
	m.DeliveriesTotal.WithLabelValues(d.Action, string(d.Outcome)).Inc()
	m.DeliveryDuration.WithLabelValues(d.Action).Observe(d.Duration)
}

// IncNotReady counts an attempt made without a resolved routing key.
func (m *Metrics) IncNotReady() {
	if m == nil {
		return
	}
	m.PagerNotReady.Inc()
}
