// Package metrics exposes the keeper bot's prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

const namespace = "dca_keeper"

// Metrics holds collectors registered on a private registry, so several
// bots can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	Sweeps         *prometheus.CounterVec
	Executions     *prometheus.CounterVec
	VaultFailures  prometheus.Counter
	EscrowClaims   prometheus.Counter
	EventsMirrored *prometheus.CounterVec
	InFlight       prometheus.Gauge
	StaleInFlight  prometheus.Gauge
	SweepDuration  prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Sweeps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "sweeps_total",
			Help:      "Sweeps of due triggers by result",
		}, []string{"result"}),
		Executions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "executions_total",
			Help:      "Trigger executions by outcome",
		}, []string{"outcome"}),
		VaultFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "vault_failures_total",
			Help:      "Vaults whose execution failed fatally during a sweep",
		}),
		EscrowClaims: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "escrow_claims_total",
			Help:      "Escrow settlements performed by sweeps",
		}),
		EventsMirrored: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mirror",
			Name:      "events_total",
			Help:      "Vault events copied into the local store by type",
		}, []string{"type"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "in_flight_executions",
			Help:      "Executions waiting on a venue reply",
		}),
		StaleInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "stale_in_flight_executions",
			Help:      "In-flight executions older than the stale threshold",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweeper",
			Name:      "sweep_duration_seconds",
			Help:      "Time spent in one sweep",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// ObserveSweep records a finished sweep. sweepErr is the error of the
// sweep as a whole, not of a single vault.
func (m *Metrics) ObserveSweep(report types.SweepReport, sweepErr error, took time.Duration) {
	m.SweepDuration.Observe(took.Seconds())
	if sweepErr != nil {
		m.Sweeps.WithLabelValues("error").Inc()
		return
	}
	m.Sweeps.WithLabelValues("ok").Inc()
	for outcome, n := range report.Outcomes {
		m.Executions.WithLabelValues(string(outcome)).Add(float64(n))
	}
	m.VaultFailures.Add(float64(len(report.Errors)))
	m.EscrowClaims.Add(float64(report.EscrowClaimed))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
