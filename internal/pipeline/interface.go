package pipeline

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

// Orchestrator drives runs through the stage pipeline.
type Orchestrator interface {
	// Submit admits a run and starts it in the background. It fails with a
	// *CapacityError when MaxConcurrentRuns runs are already active.
	Submit(ctx context.Context, url string, opts Options) (*Handle, error)
	// Execute submits a run and waits for its outcome.
	Execute(ctx context.Context, url string, opts Options) Outcome
	// QuickTranscribe runs download-audio and transcribe only. Quick runs
	// are not counted against MaxConcurrentRuns.
	QuickTranscribe(ctx context.Context, url string, opts Options) (*Handle, error)
	// BatchExecute executes urls one after another.
	BatchExecute(ctx context.Context, urls []string, opts Options) BatchSummary
	Status(runID string) (RunSnapshot, bool)
	// Cancel stops a run at its next stage boundary and archives it as
	// cancelled. The run's context is cancelled as well, so collaborators
	// that honour it stop early.
	Cancel(ctx context.Context, runID string) error
	History(filter Filter) []RunSnapshot
	Stats() Stats
	Config() Config
}

type Downloader interface {
	DownloadVideo(ctx context.Context, url string, opts DownloadOptions) (string, error)
	DownloadAudio(ctx context.Context, url string, opts DownloadOptions) (string, error)
	ExtractAudio(ctx context.Context, videoPath, outPath string, opts AudioOptions) (string, error)
}

type Transcriber interface {
	TranscribeWithTimestamps(ctx context.Context, audioPath string, opts TranscribeOptions) (Transcript, error)
}

type TextOptimizer interface {
	FullOptimization(ctx context.Context, text string, opts OptimizeOptions) (string, error)
}

type MultilingualProcessor interface {
	Translate(ctx context.Context, text string, opts MultilingualOptions) (Multilingual, error)
	Summarize(ctx context.Context, text string, opts MultilingualOptions) (Multilingual, error)
	TranslateAndSummarize(ctx context.Context, text string, opts MultilingualOptions) (Multilingual, error)
}

// Emitter publishes run events. progress.Notifier satisfies it.
type Emitter interface {
	Emit(runID string, kind progress.EventKind, data any)
}

// ReportWriter exports a completed run and returns the artifact path.
type ReportWriter interface {
	WriteRunReport(ctx context.Context, runID, url string, res *Result) (string, error)
}

type Metrics interface {
	RunStarted(quick bool)
	RunRejected()
	RunFinished(status Status, d time.Duration)
	StageObserved(stage string, ok bool, d time.Duration)
	SetActiveRuns(n int)
}

// Deps are the orchestrator's collaborators. Emitter, Reports and Metrics
// may be nil.
type Deps struct {
	Downloader   Downloader
	Transcriber  Transcriber
	Optimizer    TextOptimizer
	Multilingual MultilingualProcessor
	Emitter      Emitter
	Reports      ReportWriter
	Metrics      Metrics
}
