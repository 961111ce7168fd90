package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

const (
	StageDownload      = "download"
	StageDownloadAudio = "download_audio"
	StageExtractAudio  = "audio_extraction"
	StageTranscribe    = "transcription"
	StageOptimize      = "text_optimization"
	StageMultilingual  = "multilingual"
)

// StageEvents are the event kinds a stage emits. Progress is empty for
// stages that do not report intermediate progress.
type StageEvents struct {
	Start    progress.EventKind
	Progress progress.EventKind
	Complete progress.EventKind
}

// StageOutcome is what a successful stage hands back: a reference to its
// output for the StepRecord and extra fields for the complete event.
type StageOutcome struct {
	Output string
	Data   map[string]any
}

// Stage is one step of the pipeline. Every concrete stage wraps a different
// collaborator behind the same Run signature so the run loop stays uniform.
type Stage interface {
	Name() string
	Required() bool
	Events(opts Options) StageEvents
	Run(ctx context.Context, s *runState) (StageOutcome, error)
}

// runState carries artifacts from one stage to the next.
type runState struct {
	runID string
	url   string
	opts  Options

	// progress is rebound by the run loop for each stage.
	progress Reporter

	videoPath    string
	audioPath    string
	transcript   Transcript
	optimized    string
	multilingual *Multilingual
}

// text is the best available text: the optimized one, or the raw transcript
// when optimization failed or was empty.
func (s *runState) text() string {
	if strings.TrimSpace(s.optimized) != "" {
		return s.optimized
	}
	return s.transcript.FullText
}

func (s *runState) result() *Result {
	return &Result{
		VideoPath:     s.videoPath,
		AudioPath:     s.audioPath,
		OriginalText:  s.transcript.FullText,
		OptimizedText: s.text(),
		Segments:      s.transcript.Segments,
		SRT:           s.transcript.SRT,
		VTT:           s.transcript.VTT,
		Multilingual:  s.multilingual,
	}
}

type downloadStage struct{ d Downloader }

func (downloadStage) Name() string   { return StageDownload }
func (downloadStage) Required() bool { return true }
func (downloadStage) Events(Options) StageEvents {
	return StageEvents{
		Start:    progress.EventVideoDownloadStart,
		Progress: progress.EventVideoDownloadProgress,
		Complete: progress.EventVideoDownloadComplete,
	}
}

func (st downloadStage) Run(ctx context.Context, s *runState) (StageOutcome, error) {
	if st.d == nil {
		return StageOutcome{}, ErrNoCollaborator
	}
	opts := s.opts.Download
	opts.Progress = s.progress
	path, err := st.d.DownloadVideo(ctx, s.url, opts)
	if err != nil {
		return StageOutcome{}, err
	}
	s.videoPath = path
	return StageOutcome{Output: path, Data: map[string]any{"videoPath": path}}, nil
}

// audioDownloadStage fetches audio only; quick runs start with it.
type audioDownloadStage struct{ d Downloader }

func (audioDownloadStage) Name() string   { return StageDownloadAudio }
func (audioDownloadStage) Required() bool { return true }
func (audioDownloadStage) Events(Options) StageEvents {
	return StageEvents{
		Start:    progress.EventVideoDownloadStart,
		Progress: progress.EventVideoDownloadProgress,
		Complete: progress.EventVideoDownloadComplete,
	}
}

func (st audioDownloadStage) Run(ctx context.Context, s *runState) (StageOutcome, error) {
	if st.d == nil {
		return StageOutcome{}, ErrNoCollaborator
	}
	opts := s.opts.Download
	opts.Progress = s.progress
	path, err := st.d.DownloadAudio(ctx, s.url, opts)
	if err != nil {
		return StageOutcome{}, err
	}
	s.audioPath = path
	return StageOutcome{Output: path, Data: map[string]any{"audioPath": path}}, nil
}

type extractStage struct{ d Downloader }

func (extractStage) Name() string   { return StageExtractAudio }
func (extractStage) Required() bool { return true }
func (extractStage) Events(Options) StageEvents {
	return StageEvents{
		Start:    progress.EventAudioExtractionStart,
		Complete: progress.EventAudioExtractionComplete,
	}
}

func (st extractStage) Run(ctx context.Context, s *runState) (StageOutcome, error) {
	if st.d == nil {
		return StageOutcome{}, ErrNoCollaborator
	}
	out := audioPathFor(s.videoPath)
	path, err := st.d.ExtractAudio(ctx, s.videoPath, out, s.opts.Audio)
	if err != nil {
		return StageOutcome{}, err
	}
	s.audioPath = path
	return StageOutcome{Output: path, Data: map[string]any{"audioPath": path}}, nil
}

// audioPathFor swaps the video extension for .mp3, next to the video.
func audioPathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
}

type transcribeStage struct{ t Transcriber }

func (transcribeStage) Name() string   { return StageTranscribe }
func (transcribeStage) Required() bool { return true }
func (transcribeStage) Events(Options) StageEvents {
	return StageEvents{
		Start:    progress.EventTranscriptionStart,
		Progress: progress.EventTranscriptionProgress,
		Complete: progress.EventTranscriptionComplete,
	}
}

func (st transcribeStage) Run(ctx context.Context, s *runState) (StageOutcome, error) {
	if st.t == nil {
		return StageOutcome{}, ErrNoCollaborator
	}
	opts := s.opts.Transcription
	opts.Progress = s.progress
	tr, err := st.t.TranscribeWithTimestamps(ctx, s.audioPath, opts)
	if err != nil {
		return StageOutcome{}, err
	}
	s.transcript = tr
	return StageOutcome{
		Output: fmt.Sprintf("%d segments", len(tr.Segments)),
		Data: map[string]any{
			"segments":   len(tr.Segments),
			"textLength": len([]rune(tr.FullText)),
		},
	}, nil
}

// optimizeStage is optional. On failure the run continues with the raw
// transcript as its optimized text.
type optimizeStage struct{ o TextOptimizer }

func (optimizeStage) Name() string   { return StageOptimize }
func (optimizeStage) Required() bool { return false }
func (optimizeStage) Events(Options) StageEvents {
	return StageEvents{
		Start:    progress.EventTextOptimizationStart,
		Complete: progress.EventTextOptimizationComplete,
	}
}

func (st optimizeStage) Run(ctx context.Context, s *runState) (StageOutcome, error) {
	if st.o == nil {
		return StageOutcome{}, ErrNoCollaborator
	}
	text, err := st.o.FullOptimization(ctx, s.transcript.FullText, s.opts.Optimization)
	if err != nil {
		return StageOutcome{}, err
	}
	s.optimized = text
	return StageOutcome{
		Output: fmt.Sprintf("%d chars", len([]rune(text))),
		Data:   map[string]any{"textLength": len([]rune(text))},
	}, nil
}

// multilingualStage is optional and only scheduled when Translate or
// Summarize is set. Translation alone reports translation_* events, anything
// involving a summary reports summary_generation_* events.
type multilingualStage struct {
	m               MultilingualProcessor
	defaultLanguage string
}

func (multilingualStage) Name() string   { return StageMultilingual }
func (multilingualStage) Required() bool { return false }
func (multilingualStage) Events(opts Options) StageEvents {
	if opts.Translate && !opts.Summarize {
		return StageEvents{
			Start:    progress.EventTranslationStart,
			Complete: progress.EventTranslationComplete,
		}
	}
	return StageEvents{
		Start:    progress.EventSummaryGenerationStart,
		Complete: progress.EventSummaryGenerationComplete,
	}
}

func (st multilingualStage) Run(ctx context.Context, s *runState) (StageOutcome, error) {
	if st.m == nil {
		return StageOutcome{}, ErrNoCollaborator
	}
	opts := MultilingualOptions{
		SourceLanguage: s.opts.SourceLanguage,
		TargetLanguage: s.opts.TargetLanguage,
		Model:          s.opts.Optimization.Model,
	}
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = "auto"
	}
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = st.defaultLanguage
	}

	var (
		out Multilingual
		err error
	)
	switch {
	case s.opts.Translate && s.opts.Summarize:
		out, err = st.m.TranslateAndSummarize(ctx, s.text(), opts)
	case s.opts.Translate:
		out, err = st.m.Translate(ctx, s.text(), opts)
	default:
		out, err = st.m.Summarize(ctx, s.text(), opts)
	}
	if err != nil {
		return StageOutcome{}, err
	}
	if out.TargetLanguage == "" {
		out.TargetLanguage = opts.TargetLanguage
	}
	s.multilingual = &out
	return StageOutcome{
		Output: "target " + out.TargetLanguage,
		Data: map[string]any{
			"targetLanguage": out.TargetLanguage,
			"hasTranslation": out.Translation != "",
			"hasSummary":     out.Summary != "",
		},
	}, nil
}

func (o *implOrchestrator) fullStages(opts Options) []Stage {
	stages := []Stage{
		downloadStage{d: o.deps.Downloader},
		extractStage{d: o.deps.Downloader},
		transcribeStage{t: o.deps.Transcriber},
		optimizeStage{o: o.deps.Optimizer},
	}
	if opts.Translate || opts.Summarize {
		stages = append(stages, multilingualStage{
			m:               o.deps.Multilingual,
			defaultLanguage: o.cfg.DefaultTargetLanguage,
		})
	}
	return stages
}

func (o *implOrchestrator) quickStages() []Stage {
	return []Stage{
		audioDownloadStage{d: o.deps.Downloader},
		transcribeStage{t: o.deps.Transcriber},
	}
}
