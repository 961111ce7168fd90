package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/videoscribe/internal/config"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/pkg/executor"
)

// fakeExecutor plays ffmpeg and whisper: ffmpeg touches its output, whisper
// writes srt next to --output-file.
type fakeExecutor struct {
	srt        string
	whisperErr error
	calls      [][]string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f *fakeExecutor) ExecuteInDir(_ context.Context, _ string, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	switch name {
	case "ffmpeg":
		return "", os.WriteFile(args[len(args)-1], []byte("wav"), 0644)
	case "whisper-cli":
		if f.whisperErr != nil {
			return "", f.whisperErr
		}
		for i, a := range args {
			if a == "--output-file" {
				return "", os.WriteFile(args[i+1]+".srt", []byte(f.srt), 0644)
			}
		}
	}
	return "", nil
}

func (f *fakeExecutor) Stream(ctx context.Context, _ executor.LineHandler, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func newTestTranscriber(t *testing.T, exec *fakeExecutor) Transcriber {
	t.Helper()
	cfg := &config.Config{
		Whisper: config.WhisperConfig{ModelPath: "ggml-base.bin", BinaryPath: "whisper-cli", Prompt: "tech talk"},
		Paths:   config.PathsConfig{Work: t.TempDir()},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return New(cfg, exec, logger.Nop())
}

func TestTranscribeWithTimestamps(t *testing.T) {
	exec := &fakeExecutor{srt: goldenSRT}
	tr := newTestTranscriber(t, exec)
	audio := filepath.Join(t.TempDir(), "clip.mp3")

	var reports []float64
	got, err := tr.TranscribeWithTimestamps(context.Background(), audio, pipeline.TranscribeOptions{
		Language: "en",
		Progress: func(p float64) { reports = append(reports, p) },
	})
	if err != nil {
		t.Fatalf("TranscribeWithTimestamps() error = %v", err)
	}

	if got.FullText != "Hello world. Second line after an hour" {
		t.Errorf("FullText = %q", got.FullText)
	}
	if len(got.Segments) != 3 {
		t.Errorf("len(Segments) = %d, want 3", len(got.Segments))
	}
	if got.SRT != goldenSRT || got.VTT != goldenVTT {
		t.Errorf("captions do not match golden output")
	}
	if got.Language != "en" {
		t.Errorf("Language = %q, want en", got.Language)
	}
	if len(reports) != 2 || reports[1] != 100 {
		t.Errorf("reports = %v", reports)
	}

	whisperArgs := strings.Join(exec.calls[1], " ")
	for _, want := range []string{"-m ggml-base.bin", "-osrt", "-l en", "-t 8", "--prompt tech talk"} {
		if !strings.Contains(whisperArgs, want) {
			t.Errorf("whisper args %q missing %q", whisperArgs, want)
		}
	}

	wav := strings.TrimSuffix(audio, ".mp3") + "_16k.wav"
	for _, p := range []string{wav, strings.TrimSuffix(wav, ".wav") + ".srt"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("temp file %s was not cleaned up", p)
		}
	}
}

func TestTranscribeWhisperFailure(t *testing.T) {
	exec := &fakeExecutor{whisperErr: errors.New("exit status 3")}
	tr := newTestTranscriber(t, exec)

	_, err := tr.TranscribeWithTimestamps(context.Background(), filepath.Join(t.TempDir(), "a.mp3"), pipeline.TranscribeOptions{})
	if err == nil || !strings.Contains(err.Error(), "whisper transcribe") {
		t.Fatalf("error = %v, want whisper failure", err)
	}
}
