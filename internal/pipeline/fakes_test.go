package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
)

type fakeDownloader struct {
	mu    sync.Mutex
	calls []string

	video   func(ctx context.Context, url string, opts DownloadOptions) (string, error)
	audio   func(ctx context.Context, url string, opts DownloadOptions) (string, error)
	extract func(ctx context.Context, videoPath, outPath string) (string, error)
}

func (f *fakeDownloader) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeDownloader) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDownloader) DownloadVideo(ctx context.Context, url string, opts DownloadOptions) (string, error) {
	f.record("video:" + url)
	if f.video != nil {
		return f.video(ctx, url, opts)
	}
	return "/work/" + url + ".mp4", nil
}

func (f *fakeDownloader) DownloadAudio(ctx context.Context, url string, opts DownloadOptions) (string, error) {
	f.record("audio:" + url)
	if f.audio != nil {
		return f.audio(ctx, url, opts)
	}
	return "/work/" + url + ".mp3", nil
}

func (f *fakeDownloader) ExtractAudio(ctx context.Context, videoPath, outPath string, _ AudioOptions) (string, error) {
	f.record("extract:" + videoPath)
	if f.extract != nil {
		return f.extract(ctx, videoPath, outPath)
	}
	return outPath, nil
}

type fakeTranscriber struct {
	mu     sync.Mutex
	called int
	fn     func(ctx context.Context, audioPath string, opts TranscribeOptions) (Transcript, error)
}

func (f *fakeTranscriber) TranscribeWithTimestamps(ctx context.Context, audioPath string, opts TranscribeOptions) (Transcript, error) {
	f.mu.Lock()
	f.called++
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, audioPath, opts)
	}
	return Transcript{
		FullText: "hello world",
		Segments: []Segment{{Start: 0, End: 1.5, Text: "hello world"}},
		SRT:      "1\n00:00:00,000 --> 00:00:01,500\nhello world\n",
		VTT:      "WEBVTT\n\n00:00:00.000 --> 00:00:01.500\nhello world\n",
	}, nil
}

func (f *fakeTranscriber) Called() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.called
}

type fakeOptimizer struct {
	text string
	err  error
}

func (f fakeOptimizer) FullOptimization(context.Context, string, OptimizeOptions) (string, error) {
	return f.text, f.err
}

type fakeMultilingual struct {
	mu    sync.Mutex
	calls []string
	opts  MultilingualOptions
	err   error
}

func (f *fakeMultilingual) record(call string, opts MultilingualOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.opts = opts
}

func (f *fakeMultilingual) Translate(_ context.Context, text string, opts MultilingualOptions) (Multilingual, error) {
	f.record("translate", opts)
	return Multilingual{Translation: text}, f.err
}

func (f *fakeMultilingual) Summarize(_ context.Context, text string, opts MultilingualOptions) (Multilingual, error) {
	f.record("summarize", opts)
	return Multilingual{Summary: "summary of " + text}, f.err
}

func (f *fakeMultilingual) TranslateAndSummarize(_ context.Context, text string, opts MultilingualOptions) (Multilingual, error) {
	f.record("both", opts)
	return Multilingual{Translation: text, Summary: "summary"}, f.err
}

type emitted struct {
	runID string
	kind  progress.EventKind
	data  any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) Emit(runID string, kind progress.EventKind, data any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{runID: runID, kind: kind, data: data})
}

func (e *recordingEmitter) kinds(runID string) []progress.EventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []progress.EventKind
	for _, ev := range e.events {
		if ev.runID == runID {
			out = append(out, ev.kind)
		}
	}
	return out
}

func (e *recordingEmitter) find(runID string, kind progress.EventKind) (map[string]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if ev.runID == runID && ev.kind == kind {
			data, _ := ev.data.(map[string]any)
			return data, true
		}
	}
	return nil, false
}

type fakeReports struct {
	err error
}

func (f fakeReports) WriteRunReport(_ context.Context, runID, _ string, _ *Result) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "/reports/" + runID + ".docx", nil
}

type harness struct {
	orch        *implOrchestrator
	downloader  *fakeDownloader
	transcriber *fakeTranscriber
	multi       *fakeMultilingual
	emitter     *recordingEmitter
}

func newHarness(cfg Config, mutate func(*Deps)) *harness {
	h := &harness{
		downloader:  &fakeDownloader{},
		transcriber: &fakeTranscriber{},
		multi:       &fakeMultilingual{},
		emitter:     &recordingEmitter{},
	}
	deps := Deps{
		Downloader:   h.downloader,
		Transcriber:  h.transcriber,
		Optimizer:    fakeOptimizer{text: "Hello, world."},
		Multilingual: h.multi,
		Emitter:      h.emitter,
	}
	if mutate != nil {
		mutate(&deps)
	}
	h.orch = New(cfg, deps, logger.Nop()).(*implOrchestrator)
	return h
}

// blockUntil returns a video download func that waits for release or ctx.
func blockUntil(release <-chan struct{}) func(context.Context, string, DownloadOptions) (string, error) {
	return func(ctx context.Context, url string, _ DownloadOptions) (string, error) {
		select {
		case <-release:
			return "/work/" + url + ".mp4", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

var errBoom = errors.New("boom")
