package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

func (o *implOrchestrator) Status(runID string) (RunSnapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if r, ok := o.active[runID]; ok {
		return r.snapshotLocked(o.now()), true
	}
	if r, ok := o.quick[runID]; ok {
		return r.snapshotLocked(o.now()), true
	}
	for _, s := range o.history {
		if s.ID == runID {
			return s, true
		}
	}
	return RunSnapshot{}, false
}

func (o *implOrchestrator) Cancel(ctx context.Context, runID string) error {
	o.mu.Lock()
	r, ok := o.active[runID]
	if !ok {
		r, ok = o.quick[runID]
	}
	o.mu.Unlock()
	if !ok {
		return ErrRunNotFound
	}

	if !o.finish(r, StatusCancelled, func(now time.Time) {
		r.err = ErrRunCancelled.Error()
	}) {
		return ErrRunNotFound
	}
	o.logger.Info(ctx, "run %s cancelled", runID)
	r.seal(progress.EventTaskError, cancelledPayload(o.now()))
	return nil
}

// History returns archived runs, newest first.
func (o *implOrchestrator) History(filter Filter) []RunSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]RunSnapshot, 0, len(o.history))
	for _, s := range o.history {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

func (o *implOrchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Stats{
		Total:  len(o.history),
		Active: len(o.active),
	}
	var completedMs int64
	for _, s := range o.history {
		switch s.Status {
		case StatusCompleted:
			st.Completed++
			completedMs += s.DurationMs
		case StatusFailed:
			st.Failed++
		case StatusCancelled:
			st.Cancelled++
		}
	}
	if st.Total > 0 {
		st.SuccessRate = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	if st.Completed > 0 {
		st.AvgDurationMs = int64(math.Round(float64(completedMs) / float64(st.Completed)))
	}
	return st
}

func (o *implOrchestrator) Config() Config {
	return o.cfg
}
