package server

import (
	"context"
	"net/http"
)

// Server exposes the progress websocket, metrics and the pipeline control API.
type Server interface {
	Handler() http.Handler
	// Run serves on the configured address until ctx is done, then shuts down
	// gracefully.
	Run(ctx context.Context) error
}
