package executor

import "context"

// LineHandler receives each stdout line of a streamed command
type LineHandler func(line string)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// Stream runs the command and hands every stdout line to onLine as it arrives.
	// The full stdout is still returned once the process exits.
	Stream(ctx context.Context, onLine LineHandler, name string, args ...string) (string, error)
}
