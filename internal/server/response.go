package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

var errBadRequest = errors.New("bad request")

func respond(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *implServer) respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	if errors.Is(err, pipeline.ErrCapacityExceeded) {
		c.Header("Retry-After", "30")
	}
	c.AbortWithStatusJSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, pipeline.ErrEmptyURL):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrCapacityExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, pipeline.ErrRunNotFound), errors.Is(err, progress.ErrClientNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// bind decodes the JSON body into dst, capped at maxBodyBytes.
func bind(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
