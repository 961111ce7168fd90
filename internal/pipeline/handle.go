package pipeline

import "context"

// Handle tracks a submitted run.
type Handle struct {
	RunID string
	Quick bool
	r     *run
}

// Done is closed once the run reached a terminal state and its final event
// was handed to the emitter.
func (h *Handle) Done() <-chan struct{} {
	return h.r.done
}

// Wait blocks until the run finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.r.done:
		return h.r.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
