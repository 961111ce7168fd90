package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

// implOrchestrator owns the active registries and the bounded history. mu
// guards every run record reachable from them.
type implOrchestrator struct {
	cfg    Config
	deps   Deps
	logger logger.Logger

	mu      sync.Mutex
	active  map[string]*run
	quick   map[string]*run
	history []RunSnapshot

	now   func() time.Time
	newID func() string
	spawn func(func())
}

// New creates an Orchestrator.
func New(cfg Config, deps Deps, log logger.Logger) Orchestrator {
	return &implOrchestrator{
		cfg:    cfg.withDefaults(),
		deps:   deps,
		logger: log.Named("pipeline"),
		active: make(map[string]*run),
		quick:  make(map[string]*run),
		now:    time.Now,
		newID: func() string {
			return "run_" + uuid.NewString()
		},
		spawn: func(f func()) { go f() },
	}
}

// run is the mutable record behind a RunSnapshot. Fields other than events,
// done and the emit guard are protected by implOrchestrator.mu.
type run struct {
	id        string
	url       string
	quick     bool
	opts      Options
	status    Status
	startedAt time.Time
	endedAt   time.Time
	steps     []StepRecord
	result    *Result
	stage     string
	err       string
	outcome   Outcome
	cancel    context.CancelFunc

	emitMu sync.Mutex
	sealed bool
	events chan runEvent
	done   chan struct{}
}

type runEvent struct {
	kind  progress.EventKind
	data  any
	final bool
}

func (r *run) snapshotLocked(now time.Time) RunSnapshot {
	s := RunSnapshot{
		ID:        r.id,
		URL:       r.url,
		Quick:     r.quick,
		Active:    !r.status.Terminal(),
		Status:    r.status,
		StartedAt: r.startedAt,
		Options:   r.opts,
		Steps:     append([]StepRecord(nil), r.steps...),
		Result:    r.result,
		Stage:     r.stage,
		Error:     r.err,
	}
	if s.Steps == nil {
		s.Steps = []StepRecord{}
	}
	if s.Active {
		s.ElapsedMs = now.Sub(r.startedAt).Milliseconds()
	} else {
		s.EndedAt = r.endedAt
		s.DurationMs = r.endedAt.Sub(r.startedAt).Milliseconds()
	}
	return s
}
