// Package telemetry exposes process-internal Prometheus metrics for
// transport round-trip latency and discovery-sweep confidence, registered
// on the prometheus.Registerer given to NewMetrics. No HTTP endpoint in
// this module serves them.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the gauges/histograms this package tracks. Callers
// build one with NewMetrics and attach it with session.Session.WithMetrics,
// after which Discover records the discovery metrics. No call site in this
// module calls ObserveExchange.
type Metrics struct {
	ExchangeDuration   *prometheus.HistogramVec
	ExchangeErrors     *prometheus.CounterVec
	DiscoveryDuration  prometheus.Histogram
	DiscoveryModules   prometheus.Gauge
	DiscoveryConfidence *prometheus.GaugeVec
}

// NewMetrics registers and returns the telemetry metrics against reg. Pass
// prometheus.DefaultRegisterer to use the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ExchangeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "obdcore",
			Subsystem: "transport",
			Name:      "exchange_duration_seconds",
			Help:      "Round-trip duration of a single AT/OBD/UDS command exchange.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command_kind"}),

		ExchangeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "obdcore",
			Subsystem: "transport",
			Name:      "exchange_errors_total",
			Help:      "Count of transport exchanges that returned an error.",
		}, []string{"command_kind"}),

		DiscoveryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "obdcore",
			Subsystem: "discovery",
			Name:      "sweep_duration_seconds",
			Help:      "Wall-clock duration of a full module discovery sweep.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),

		DiscoveryModules: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "obdcore",
			Subsystem: "discovery",
			Name:      "modules_found",
			Help:      "Number of modules found by the most recent discovery sweep.",
		}),

		DiscoveryConfidence: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "obdcore",
			Subsystem: "discovery",
			Name:      "module_confidence",
			Help:      "Fingerprint confidence score of each module in the most recent discovery sweep.",
		}, []string{"tx_id", "module_type"}),
	}
}

// ObserveExchange records the duration and error state of one transport
// exchange, tagged by commandKind (e.g. "at", "obd", "uds").
func (m *Metrics) ObserveExchange(commandKind string, seconds float64, err error) {
	m.ExchangeDuration.WithLabelValues(commandKind).Observe(seconds)
	if err != nil {
		m.ExchangeErrors.WithLabelValues(commandKind).Inc()
	}
}

// ObserveDiscoveryModule records the confidence of one discovered module.
func (m *Metrics) ObserveDiscoveryModule(txID, moduleType string, confidence int) {
	m.DiscoveryConfidence.WithLabelValues(txID, moduleType).Set(float64(confidence))
}
