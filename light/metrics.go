package light

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "light"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of the latest trusted header.
	LatestNumber metrics.Gauge
	// Number of headers in the trusted window.
	TrustedHeaders metrics.Gauge
	// Number of finalized headers.
	FinalizedHeaders metrics.Gauge
	// Number of accepted header updates.
	HeaderUpdates metrics.Counter
	// Number of rejected header updates.
	RejectedHeaders metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		LatestNumber: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "latest_number",
			Help:      "Number of the latest trusted header.",
		}, labels).With(labelsAndValues...),
		TrustedHeaders: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "trusted_headers",
			Help:      "Number of headers in the trusted window.",
		}, labels).With(labelsAndValues...),
		FinalizedHeaders: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "finalized_headers",
			Help:      "Number of finalized headers.",
		}, labels).With(labelsAndValues...),
		HeaderUpdates: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "header_updates",
			Help:      "Number of accepted header updates.",
		}, labels).With(labelsAndValues...),
		RejectedHeaders: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "rejected_headers",
			Help:      "Number of rejected header updates.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		LatestNumber:     discard.NewGauge(),
		TrustedHeaders:   discard.NewGauge(),
		FinalizedHeaders: discard.NewGauge(),
		HeaderUpdates:    discard.NewCounter(),
		RejectedHeaders:  discard.NewCounter(),
	}
}
