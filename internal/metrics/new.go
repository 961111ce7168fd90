package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "videoscribe"

type implMetrics struct {
	gatherer prometheus.Gatherer

	connections   prometheus.Gauge
	deliveries    *prometheus.CounterVec
	reaped        prometheus.Counter
	runsStarted   *prometheus.CounterVec
	runsRejected  prometheus.Counter
	runsFinished  *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	activeRuns    prometheus.Gauge
}

// New registers the collectors with reg. A nil reg uses a fresh registry,
// which keeps tests isolated from the default one.
func New(reg *prometheus.Registry) Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &implMetrics{
		gatherer: reg,
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "connections",
			Help:      "Open progress WebSocket connections.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "deliveries_total",
			Help:      "Progress messages handed to client transports by result.",
		}, []string{"result"}),
		reaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "reaped_total",
			Help:      "Clients removed by the heartbeat sweep.",
		}),
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_started_total",
			Help:      "Pipeline runs started by kind.",
		}, []string{"kind"}),
		runsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_rejected_total",
			Help:      "Submissions refused because the concurrency limit was reached.",
		}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_finished_total",
			Help:      "Pipeline runs finished by terminal status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of finished pipeline runs.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of pipeline stages by stage and result.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"stage", "result"}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "active_runs",
			Help:      "Admitted pipeline runs not yet finished.",
		}),
	}

	reg.MustRegister(
		m.connections,
		m.deliveries,
		m.reaped,
		m.runsStarted,
		m.runsRejected,
		m.runsFinished,
		m.runDuration,
		m.stageDuration,
		m.activeRuns,
	)
	return m
}
