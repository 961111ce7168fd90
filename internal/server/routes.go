package server

import (
	"time"

	"github.com/gin-gonic/gin"
)

func (s *implServer) setupRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET(s.cfg.WSPath, gin.WrapH(s.notifier.Handler()))
	if s.metrics != nil {
		r.GET(s.cfg.MetricsPath, gin.WrapH(s.metrics))
	}

	api := r.Group("/api")
	{
		runs := api.Group("/pipeline")
		{
			runs.POST("/execute", s.execute)
			runs.POST("/quick-transcribe", s.quickTranscribe)
			runs.POST("/batch", s.batch)
			runs.GET("/status/:id", s.status)
			runs.DELETE("/cancel/:id", s.cancel)
			runs.GET("/history", s.history)
			runs.GET("/stats", s.pipelineStats)
		}

		events := api.Group("/progress")
		{
			events.GET("/stats", s.progressStats)
			events.GET("/events", s.progressEvents)
			events.GET("/clients", s.clients)
			events.GET("/client/:id", s.client)
		}
	}

	return r
}

func (s *implServer) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
