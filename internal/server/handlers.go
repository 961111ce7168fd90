package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

type runRequest struct {
	URL     string           `json:"url"`
	Options pipeline.Options `json:"options"`
}

type batchRequest struct {
	URLs    []string         `json:"urls" binding:"required,min=1,dive,required"`
	Options pipeline.Options `json:"options"`
}

// execute admits a full run and returns without waiting for it.
func (s *implServer) execute(c *gin.Context) {
	var req runRequest
	if err := bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	h, err := s.pipeline.Submit(c.Request.Context(), req.URL, req.Options)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusAccepted, gin.H{"runId": h.RunID})
}

func (s *implServer) quickTranscribe(c *gin.Context) {
	var req runRequest
	if err := bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}

	h, err := s.pipeline.QuickTranscribe(c.Request.Context(), req.URL, req.Options)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusAccepted, gin.H{"runId": h.RunID, "quick": true})
}

// batch runs the URLs one after another and answers with the summary.
func (s *implServer) batch(c *gin.Context) {
	var req batchRequest
	if err := bind(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, s.pipeline.BatchExecute(c.Request.Context(), req.URLs, req.Options))
}

func (s *implServer) status(c *gin.Context) {
	snap, ok := s.pipeline.Status(c.Param("id"))
	if !ok {
		s.respondError(c, pipeline.ErrRunNotFound)
		return
	}
	respond(c, http.StatusOK, snap)
}

func (s *implServer) cancel(c *gin.Context) {
	id := c.Param("id")
	if err := s.pipeline.Cancel(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"runId": id, "status": pipeline.StatusCancelled})
}

func (s *implServer) history(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, s.pipeline.History(filter))
}

func parseFilter(c *gin.Context) (pipeline.Filter, error) {
	var f pipeline.Filter

	if v := c.Query("status"); v != "" {
		st := pipeline.Status(v)
		if !st.Terminal() {
			return f, fmt.Errorf("%w: unknown status %q", errBadRequest, v)
		}
		f.Status = st
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%w: invalid limit %q", errBadRequest, v)
		}
		f.Limit = n
	}
	return f, nil
}

func (s *implServer) pipelineStats(c *gin.Context) {
	respond(c, http.StatusOK, s.pipeline.Stats())
}

func (s *implServer) progressStats(c *gin.Context) {
	respond(c, http.StatusOK, s.notifier.Stats())
}

// progressEvents lists the run event names clients can expect, in pipeline order.
func (s *implServer) progressEvents(c *gin.Context) {
	respond(c, http.StatusOK, progress.ProgressEvents)
}

func (s *implServer) clients(c *gin.Context) {
	respond(c, http.StatusOK, s.notifier.Clients())
}

func (s *implServer) client(c *gin.Context) {
	info, ok := s.notifier.ClientInfo(c.Param("id"))
	if !ok {
		s.respondError(c, progress.ErrClientNotFound)
		return
	}
	respond(c, http.StatusOK, info)
}
