package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/videoscribe/internal/config"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/pkg/executor"
)

type call struct {
	name string
	args []string
}

type fakeExecutor struct {
	calls  []call
	lines  []string
	stdout string
	err    error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f *fakeExecutor) ExecuteInDir(_ context.Context, _ string, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.stdout, f.err
}

func (f *fakeExecutor) Stream(_ context.Context, onLine executor.LineHandler, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if onLine != nil {
		for _, l := range f.lines {
			onLine(l)
		}
	}
	return f.stdout, f.err
}

func newTestDownloader(t *testing.T, exec *fakeExecutor) Downloader {
	t.Helper()
	cfg := &config.Config{
		Whisper: config.WhisperConfig{ModelPath: "m", BinaryPath: "w"},
		Paths:   config.PathsConfig{Work: t.TempDir()},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return New(cfg, exec, logger.Nop())
}

func hasArgs(args []string, want ...string) bool {
	return strings.Contains(strings.Join(args, " "), strings.Join(want, " "))
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		line   string
		want   float64
		wantOK bool
	}{
		{"[download]  42.3% of   10.00MiB at  1.00MiB/s ETA 00:05", 42.3, true},
		{"[download] 100% of 10.00MiB in 00:10", 100, true},
		{"  [download]   7.0%", 7, true},
		{"[download] Destination: /tmp/x.mp4", 0, false},
		{"[Merger] Merging formats", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseProgress(tt.line)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseProgress(%q) = %v, %v, want %v, %v", tt.line, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{"path after progress", "[download]  50.0%\n[download] 100%\n/work/abc.mp4\n", "/work/abc.mp4"},
		{"trailing blank lines", "/work/abc.mp3\n\n\n", "/work/abc.mp3"},
		{"only chatter", "[download] 100%\n", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.stdout); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownloadVideo(t *testing.T) {
	exec := &fakeExecutor{
		lines:  []string{"[download]   0.5%", "[download]   1.2%", "[download]   1.4%", "[download]  60.0%", "[download] 100%"},
		stdout: "[download] 100%\n/work/abc.mp4\n",
	}
	d := newTestDownloader(t, exec)

	var reports []float64
	path, err := d.DownloadVideo(context.Background(), "https://example.com/watch?v=abc", pipeline.DownloadOptions{
		Progress: func(p float64) { reports = append(reports, p) },
	})
	if err != nil {
		t.Fatalf("DownloadVideo() error = %v", err)
	}
	if path != "/work/abc.mp4" {
		t.Errorf("path = %q, want /work/abc.mp4", path)
	}

	want := []float64{0.5, 60, 100}
	if len(reports) != len(want) {
		t.Fatalf("reports = %v, want %v", reports, want)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Errorf("reports[%d] = %v, want %v", i, reports[i], want[i])
		}
	}

	c := exec.calls[0]
	if c.name != "yt-dlp" {
		t.Errorf("binary = %q, want yt-dlp", c.name)
	}
	for _, want := range [][]string{
		{"--merge-output-format", "mp4"},
		{"--print", "after_move:filepath"},
		{"--no-playlist", "--newline", "--progress"},
	} {
		if !hasArgs(c.args, want...) {
			t.Errorf("args %v missing %v", c.args, want)
		}
	}
	if c.args[len(c.args)-1] != "https://example.com/watch?v=abc" {
		t.Errorf("url must be the last argument, got %v", c.args)
	}
}

func TestDownloadAudioUsesExtractFlags(t *testing.T) {
	exec := &fakeExecutor{stdout: "/work/abc.mp3\n"}
	d := newTestDownloader(t, exec)

	path, err := d.DownloadAudio(context.Background(), "https://example.com/v", pipeline.DownloadOptions{})
	if err != nil {
		t.Fatalf("DownloadAudio() error = %v", err)
	}
	if path != "/work/abc.mp3" {
		t.Errorf("path = %q", path)
	}
	if !hasArgs(exec.calls[0].args, "-x", "--audio-format", "mp3") {
		t.Errorf("args %v missing audio extraction flags", exec.calls[0].args)
	}
}

func TestDownloadErrors(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		exec    *fakeExecutor
		wantErr error
	}{
		{"empty url", "", &fakeExecutor{}, ErrInvalidURL},
		{"no scheme", "example.com/v", &fakeExecutor{}, ErrInvalidURL},
		{"ftp", "ftp://example.com/v", &fakeExecutor{}, ErrInvalidURL},
		{"no output", "https://example.com/v", &fakeExecutor{stdout: "[download] 100%\n"}, ErrNoOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDownloader(t, tt.exec)
			_, err := d.DownloadVideo(context.Background(), tt.url, pipeline.DownloadOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DownloadVideo() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("process failure", func(t *testing.T) {
		d := newTestDownloader(t, &fakeExecutor{err: errors.New("exit status 1")})
		_, err := d.DownloadVideo(context.Background(), "https://example.com/v", pipeline.DownloadOptions{})
		if err == nil || !strings.Contains(err.Error(), "yt-dlp download video") {
			t.Errorf("DownloadVideo() error = %v", err)
		}
	})
}

func TestExtractAudio(t *testing.T) {
	exec := &fakeExecutor{}
	d := newTestDownloader(t, exec)
	out := t.TempDir() + "/clip.mp3"

	path, err := d.ExtractAudio(context.Background(), "/work/clip.mp4", out, pipeline.AudioOptions{Bitrate: "128k"})
	if err != nil {
		t.Fatalf("ExtractAudio() error = %v", err)
	}
	if path != out {
		t.Errorf("path = %q, want %q", path, out)
	}

	c := exec.calls[0]
	if c.name != "ffmpeg" {
		t.Errorf("binary = %q, want ffmpeg", c.name)
	}
	want := []string{"-i", "/work/clip.mp4", "-vn", "-acodec", "libmp3lame", "-ab", "128k", "-ar", "44100", "-y", out}
	if strings.Join(c.args, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", c.args, want)
	}
}
