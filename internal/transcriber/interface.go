package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// Transcriber turns an audio file into timestamped text using whisper.cpp.
type Transcriber interface {
	TranscribeWithTimestamps(ctx context.Context, audioPath string, opts pipeline.TranscribeOptions) (pipeline.Transcript, error)
}
