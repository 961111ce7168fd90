package media

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

var progressLine = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%`)

// DownloadVideo downloads url as an mp4 into the work directory and returns
// the final file path printed by yt-dlp.
func (d *implDownloader) DownloadVideo(ctx context.Context, rawURL string, opts pipeline.DownloadOptions) (string, error) {
	format := opts.Format
	if format == "" {
		format = d.cfg.Downloader.Format
	}
	return d.fetch(ctx, rawURL, opts, "video",
		"-f", format,
		"--merge-output-format", "mp4",
	)
}

// DownloadAudio downloads only the audio track of url as mp3.
func (d *implDownloader) DownloadAudio(ctx context.Context, rawURL string, opts pipeline.DownloadOptions) (string, error) {
	return d.fetch(ctx, rawURL, opts, "audio",
		"-x",
		"--audio-format", "mp3",
	)
}

func (d *implDownloader) fetch(ctx context.Context, rawURL string, opts pipeline.DownloadOptions, kind string, formatArgs ...string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = d.cfg.Paths.Work
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	// --print implies --quiet, --progress brings the progress lines back
	args := append([]string{}, formatArgs...)
	args = append(args,
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--no-playlist",
		"--newline",
		"--progress",
		"--print", "after_move:filepath",
	)
	if d.cfg.Downloader.Proxy != "" {
		args = append(args, "--proxy", d.cfg.Downloader.Proxy)
	}
	args = append(args, rawURL)

	d.logger.Info(ctx, "Downloading %s: %s", kind, rawURL)

	out, err := d.executor.Stream(ctx, progressReporter(opts.Progress), d.cfg.Downloader.YtDlpPath, args...)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download %s: %w", kind, err)
	}

	path := outputPath(out)
	if path == "" {
		return "", ErrNoOutput
	}

	d.logger.Info(ctx, "Downloaded %s: %s", kind, path)
	return path, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// parseProgress extracts the percentage from a yt-dlp "[download]  42.3%" line.
func parseProgress(line string) (float64, bool) {
	m := progressLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return pct, true
}

// progressReporter forwards at most one report per whole percent.
func progressReporter(report pipeline.Reporter) func(string) {
	if report == nil {
		return nil
	}
	last := -1.0
	return func(line string) {
		pct, ok := parseProgress(line)
		if !ok {
			return
		}
		if pct < 100 && pct-last < 1 {
			return
		}
		last = pct
		report(pct)
	}
}

// outputPath returns the last stdout line that is not yt-dlp chatter; with
// --print after_move:filepath that is the final file.
func outputPath(stdout string) string {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		return line
	}
	return ""
}
