package metrics

import (
	"net/http"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

// Metrics records notifier and orchestrator activity.
type Metrics interface {
	progress.Metrics
	pipeline.Metrics

	// Handler serves the registry in the Prometheus exposition format.
	Handler() http.Handler
}
