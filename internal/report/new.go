package report

import (
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
)

type implWriter struct {
	dir    string
	logger logger.Logger
}

// New creates a Writer that stores reports under dir.
func New(dir string, log logger.Logger) Writer {
	return &implWriter{
		dir:    dir,
		logger: log.Named("report"),
	}
}
