package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/videoscribe/internal/config"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type implServer struct {
	cfg      config.ServerConfig
	pipeline pipeline.Orchestrator
	notifier progress.Notifier
	metrics  http.Handler
	logger   logger.Logger
	router   *gin.Engine
}

// New builds the route table. A nil metrics handler leaves the metrics path
// unrouted.
func New(cfg config.ServerConfig, orch pipeline.Orchestrator, notifier progress.Notifier, metrics http.Handler, log logger.Logger) Server {
	s := &implServer{
		cfg:      cfg,
		pipeline: orch,
		notifier: notifier,
		metrics:  metrics,
		logger:   log.Named("http"),
	}
	s.router = s.setupRoutes()
	return s
}

func (s *implServer) Handler() http.Handler {
	return s.router
}
