package media

import (
	"errors"

	"github.com/nguyentantai21042004/videoscribe/internal/config"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/pkg/executor"
)

var (
	ErrInvalidURL = errors.New("invalid media url")
	ErrNoOutput   = errors.New("yt-dlp reported no output file")
)

type implDownloader struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Downloader instance
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Downloader {
	return &implDownloader{
		cfg:      cfg,
		executor: exec,
		logger:   log.Named("media"),
	}
}
