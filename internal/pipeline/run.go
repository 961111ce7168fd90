package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

func (o *implOrchestrator) Submit(ctx context.Context, url string, opts Options) (*Handle, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrEmptyURL
	}

	o.mu.Lock()
	if n := len(o.active); n >= o.cfg.MaxConcurrentRuns {
		o.mu.Unlock()
		if o.deps.Metrics != nil {
			o.deps.Metrics.RunRejected()
		}
		o.logger.Warn(ctx, "rejecting %s: %d/%d runs active", url, n, o.cfg.MaxConcurrentRuns)
		return nil, &CapacityError{Active: n, Limit: o.cfg.MaxConcurrentRuns}
	}
	r := o.registerLocked(ctx, url, opts, false)
	o.mu.Unlock()

	o.start(ctx, r, o.fullStages(opts))
	return &Handle{RunID: r.id, r: r}, nil
}

func (o *implOrchestrator) QuickTranscribe(ctx context.Context, url string, opts Options) (*Handle, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrEmptyURL
	}

	o.mu.Lock()
	r := o.registerLocked(ctx, url, opts, true)
	o.mu.Unlock()

	o.start(ctx, r, o.quickStages())
	return &Handle{RunID: r.id, Quick: true, r: r}, nil
}

// registerLocked creates a run in Running state and adds it to the matching
// active registry.
func (o *implOrchestrator) registerLocked(ctx context.Context, url string, opts Options, quick bool) *run {
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = o.cfg.DefaultTargetLanguage
	}
	r := &run{
		id:        o.newID(),
		url:       url,
		quick:     quick,
		opts:      opts,
		status:    StatusInitialized,
		startedAt: o.now(),
		events:    make(chan runEvent, o.cfg.EventBuffer),
		done:      make(chan struct{}),
	}
	r.status = StatusRunning
	if quick {
		o.quick[r.id] = r
	} else {
		o.active[r.id] = r
	}
	o.reportActiveLocked()
	if o.deps.Metrics != nil {
		o.deps.Metrics.RunStarted(quick)
	}
	o.logger.Info(ctx, "run %s admitted (quick=%t): %s", r.id, quick, url)
	return r
}

// start detaches the run from the caller's cancellation, bounds it by
// RunTimeout and launches the forwarder and the stage loop.
func (o *implOrchestrator) start(ctx context.Context, r *run, stages []Stage) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.RunTimeout)
	o.mu.Lock()
	r.cancel = cancel
	o.mu.Unlock()

	go o.forward(r)
	o.spawn(func() {
		defer cancel()
		o.execute(runCtx, r, stages)
	})
}

// execute runs the stages in order. Cancellation is observed between
// stages; a collaborator that ignores ctx keeps running in the background
// but its results are discarded.
func (o *implOrchestrator) execute(ctx context.Context, r *run, stages []Stage) {
	o.mu.Lock()
	if r.status.Terminal() {
		o.mu.Unlock()
		o.logger.Info(ctx, "run %s ended before its first stage", r.id)
		return
	}
	s := &runState{runID: r.id, url: r.url, opts: r.opts}
	o.mu.Unlock()

	total := len(stages)
	for i, stage := range stages {
		index := i + 1
		if o.terminal(r) {
			o.logger.Info(ctx, "run %s stopped before stage %s", r.id, stage.Name())
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			o.fail(ctx, r, stage.Name(), ErrRunTimeout)
			return
		}

		events := stage.Events(s.opts)
		base := stepPayload(stage.Name(), index, total)
		start := base
		if index == 1 {
			start = withFields(base, map[string]any{"url": r.url})
		}
		r.emit(events.Start, start)

		s.progress = nil
		if events.Progress != "" {
			s.progress = func(percent float64) {
				r.emit(events.Progress, withFields(base, map[string]any{"progress": percent}))
			}
		}

		o.logger.Info(ctx, "run %s: stage %d/%d %s", r.id, index, total, stage.Name())
		began := o.now()
		out, err := stage.Run(ctx, s)
		ended := o.now()

		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrRunTimeout
		}
		if o.deps.Metrics != nil {
			o.deps.Metrics.StageObserved(stage.Name(), err == nil, ended.Sub(began))
		}

		rec := StepRecord{
			Name:      stage.Name(),
			Index:     index,
			Required:  stage.Required(),
			StartedAt: began,
			EndedAt:   ended,
			Success:   err == nil,
			Output:    out.Output,
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if !o.recordStep(r, rec) {
			o.logger.Info(ctx, "run %s finished during stage %s, discarding its result", r.id, stage.Name())
			return
		}

		if err != nil {
			if stage.Required() || errors.Is(err, ErrRunTimeout) {
				o.fail(ctx, r, stage.Name(), err)
				return
			}
			o.logger.Warn(ctx, "run %s: optional stage %s failed, continuing: %v", r.id, stage.Name(), err)
			r.emit(events.Complete, withFields(base, map[string]any{"success": false, "error": err.Error()}))
			continue
		}
		r.emit(events.Complete, withFields(withFields(base, out.Data), map[string]any{"success": true}))
	}

	res := s.result()
	if r.quick {
		res.OptimizedText = ""
	}
	if o.deps.Reports != nil && !r.quick {
		path, err := o.deps.Reports.WriteRunReport(ctx, r.id, r.url, res)
		if err != nil {
			o.logger.Warn(ctx, "run %s: report export failed: %v", r.id, err)
		} else {
			res.ReportPath = path
		}
	}
	o.complete(ctx, r, res)
}

func withFields(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (o *implOrchestrator) terminal(r *run) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return r.status.Terminal()
}

// recordStep appends rec unless the run already reached a terminal state.
func (o *implOrchestrator) recordStep(r *run, rec StepRecord) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if r.status.Terminal() {
		return false
	}
	r.steps = append(r.steps, rec)
	return true
}

func (o *implOrchestrator) complete(ctx context.Context, r *run, res *Result) {
	ok := o.finish(r, StatusCompleted, func(now time.Time) {
		res.DurationMs = now.Sub(r.startedAt).Milliseconds()
		r.result = res
	})
	if !ok {
		return
	}
	o.logger.Info(ctx, "run %s completed in %dms", r.id, res.DurationMs)
	r.seal(progress.EventTaskComplete, completedPayload(res, o.now()))
}

func (o *implOrchestrator) fail(ctx context.Context, r *run, stage string, cause error) {
	err := &StageError{Stage: stage, Err: cause}
	ok := o.finish(r, StatusFailed, func(time.Time) {
		r.stage = stage
		r.err = err.Error()
	})
	if !ok {
		return
	}
	o.logger.Error(ctx, "run %s failed: %v", r.id, err)
	r.seal(progress.EventTaskError, failedPayload(stage, err.Error(), o.now()))
}

// finish moves r to status, archives it and fixes its Outcome. It reports
// false when r was already terminal; the first transition wins.
func (o *implOrchestrator) finish(r *run, status Status, apply func(now time.Time)) bool {
	o.mu.Lock()
	if r.status.Terminal() {
		o.mu.Unlock()
		return false
	}
	now := o.now()
	if apply != nil {
		apply(now)
	}
	r.status = status
	r.endedAt = now
	r.outcome = Outcome{
		Success: status == StatusCompleted,
		RunID:   r.id,
		Status:  status,
		Stage:   r.stage,
		Error:   r.err,
		Result:  r.result,
	}
	o.archiveLocked(r, now)
	o.reportActiveLocked()
	cancel := r.cancel
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.RunFinished(status, r.endedAt.Sub(r.startedAt))
	}
	return true
}

// archiveLocked moves r from its active registry to the front of history.
func (o *implOrchestrator) archiveLocked(r *run, now time.Time) {
	delete(o.active, r.id)
	delete(o.quick, r.id)
	o.history = append([]RunSnapshot{r.snapshotLocked(now)}, o.history...)
	if len(o.history) > o.cfg.HistorySize {
		o.history = o.history[:o.cfg.HistorySize]
	}
}

func (o *implOrchestrator) reportActiveLocked() {
	if o.deps.Metrics != nil {
		o.deps.Metrics.SetActiveRuns(len(o.active) + len(o.quick))
	}
}
