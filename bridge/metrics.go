package bridge

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "bridge"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of committed inbound transfers (releases and mints).
	Inbound metrics.Counter `metrics_labels:"instance"`
	// Number of committed outbound transfers (locks and burns).
	Outbound metrics.Counter `metrics_labels:"instance"`
	// Total amount moved, by direction.
	Volume metrics.Counter `metrics_labels:"instance, direction"`
	// Number of rejected operations by reason.
	Rejected metrics.Counter `metrics_labels:"instance, reason"`
	// Escrow balance of a vault after its last operation.
	EscrowBalance metrics.Gauge `metrics_labels:"instance"`
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
		Inbound: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "inbound",
			Help:      "Number of committed inbound transfers.",
		}, withLabels(labels, "instance")).With(labelsAndValues...),
		Outbound: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "outbound",
			Help:      "Number of committed outbound transfers.",
		}, withLabels(labels, "instance")).With(labelsAndValues...),
		Volume: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "volume",
			Help:      "Total amount moved, by direction.",
		}, withLabels(labels, "instance", "direction")).With(labelsAndValues...),
		Rejected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "rejected",
			Help:      "Number of rejected operations by reason.",
		}, withLabels(labels, "instance", "reason")).With(labelsAndValues...),
		EscrowBalance: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "escrow_balance",
			Help:      "Escrow balance of a vault after its last operation.",
		}, withLabels(labels, "instance")).With(labelsAndValues...),
	}
}

func withLabels(labels []string, extra ...string) []string {
	out := make([]string, 0, len(labels)+len(extra))
	out = append(out, labels...)
	return append(out, extra...)
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Inbound:       discard.NewCounter(),
		Outbound:      discard.NewCounter(),
		Volume:        discard.NewCounter(),
		Rejected:      discard.NewCounter(),
		EscrowBalance: discard.NewGauge(),
	}
}
