package mockserver

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the mock backend.
type Metrics struct {
	RequestsCreated   *prometheus.CounterVec
	RequestsPublished prometheus.Counter
	RequestsDropped   prometheus.Counter
	StreamsOpen       prometheus.Gauge
	StreamsTotal      prometheus.Counter
}

// NewMetrics registers and returns mock backend metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedboard_mock_requests_created_total",
			Help: "Maintenance requests accepted, by emergency type and source.",
		}, []string{"emergency_type", "source"}),
		RequestsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedboard_mock_requests_published_total",
			Help: "Request deliveries to open streams.",
		}),
		RequestsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedboard_mock_requests_dropped_total",
			Help: "Request deliveries skipped because a stream was backed up.",
		}),
		StreamsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedboard_mock_streams_open",
			Help: "Currently open event streams.",
		}),
		StreamsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedboard_mock_streams_total",
			Help: "Event streams opened since start.",
		}),
	}

	reg.MustRegister(
		m.RequestsCreated,
		m.RequestsPublished,
		m.RequestsDropped,
		m.StreamsOpen,
		m.StreamsTotal,
	)

	return m
}
