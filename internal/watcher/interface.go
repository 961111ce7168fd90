package watcher

import (
	"context"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// Watcher defines the interface for drop folder monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles one dropped file
type EventHandler func(ctx context.Context, filePath string) error

// Batcher runs a list of URLs through the pipeline.
type Batcher interface {
	BatchExecute(ctx context.Context, urls []string, opts pipeline.Options) pipeline.BatchSummary
}
