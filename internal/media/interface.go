package media

import (
	"context"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// Downloader fetches remote media with yt-dlp and converts it with ffmpeg.
type Downloader interface {
	DownloadVideo(ctx context.Context, url string, opts pipeline.DownloadOptions) (string, error)
	DownloadAudio(ctx context.Context, url string, opts pipeline.DownloadOptions) (string, error)
	ExtractAudio(ctx context.Context, videoPath, outPath string, opts pipeline.AudioOptions) (string, error)
}
