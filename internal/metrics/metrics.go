package metrics

import (
	"net/http"
	"time"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func (m *implMetrics) SetConnections(n int) { m.connections.Set(float64(n)) }

func (m *implMetrics) ObserveDelivery(ok bool) { m.deliveries.WithLabelValues(result(ok)).Inc() }

func (m *implMetrics) IncReaped() { m.reaped.Inc() }

func (m *implMetrics) RunStarted(quick bool) {
	kind := "full"
	if quick {
		kind = "quick"
	}
	m.runsStarted.WithLabelValues(kind).Inc()
}

func (m *implMetrics) RunRejected() { m.runsRejected.Inc() }

func (m *implMetrics) RunFinished(status pipeline.Status, d time.Duration) {
	m.runsFinished.WithLabelValues(string(status)).Inc()
	m.runDuration.Observe(d.Seconds())
}

func (m *implMetrics) StageObserved(stage string, ok bool, d time.Duration) {
	m.stageDuration.WithLabelValues(stage, result(ok)).Observe(d.Seconds())
}

func (m *implMetrics) SetActiveRuns(n int) { m.activeRuns.Set(float64(n)) }

func (m *implMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
