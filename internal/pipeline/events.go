package pipeline

import (
	"time"

	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

// emit queues an event for the run's forwarder. Events after the terminal
// one are dropped, which covers collaborators still reporting progress after
// a cancel.
func (r *run) emit(kind progress.EventKind, data any) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	if r.sealed {
		return
	}
	r.events <- runEvent{kind: kind, data: data}
}

// seal queues the run's terminal event. Only the first call has an effect.
func (r *run) seal(kind progress.EventKind, data any) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	if r.sealed {
		return
	}
	r.sealed = true
	r.events <- runEvent{kind: kind, data: data, final: true}
}

// forward is the only writer to the emitter for a run. It exits after the
// terminal event and then releases waiters.
func (o *implOrchestrator) forward(r *run) {
	defer close(r.done)
	for ev := range r.events {
		if o.deps.Emitter != nil {
			o.deps.Emitter.Emit(r.id, ev.kind, ev.data)
		}
		if ev.final {
			return
		}
	}
}

func stepPayload(name string, index, total int) map[string]any {
	return map[string]any{
		"stage":      name,
		"step":       index,
		"totalSteps": total,
	}
}

func completedPayload(res *Result, at time.Time) map[string]any {
	return map[string]any{
		"status":      string(StatusCompleted),
		"result":      res,
		"completedAt": at.UTC().Format(time.RFC3339),
	}
}

func failedPayload(stage, reason string, at time.Time) map[string]any {
	return map[string]any{
		"status":   "error",
		"stage":    stage,
		"error":    reason,
		"failedAt": at.UTC().Format(time.RFC3339),
	}
}

func cancelledPayload(at time.Time) map[string]any {
	return map[string]any{
		"status":      string(StatusCancelled),
		"message":     ErrRunCancelled.Error(),
		"cancelledAt": at.UTC().Format(time.RFC3339),
	}
}
