package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// ExtractAudio strips the video track of videoPath into outPath.
func (d *implDownloader) ExtractAudio(ctx context.Context, videoPath, outPath string, opts pipeline.AudioOptions) (string, error) {
	codec := opts.Codec
	if codec == "" {
		codec = d.cfg.Downloader.AudioCodec
	}
	bitrate := opts.Bitrate
	if bitrate == "" {
		bitrate = d.cfg.Downloader.AudioBitrate
	}
	rate := d.cfg.Downloader.AudioSampleRate
	if opts.SampleRate > 0 {
		rate = strconv.Itoa(opts.SampleRate)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	d.logger.Info(ctx, "Extracting audio: %s", videoPath)

	// -vn: drop the video stream
	// -y: overwrite output file if exists
	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", codec,
		"-ab", bitrate,
		"-ar", rate,
		"-y",
		outPath,
	}

	if _, err := d.executor.Execute(ctx, d.cfg.Downloader.FFmpegPath, args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	d.logger.Info(ctx, "Audio extracted successfully: %s", outPath)
	return outPath, nil
}
