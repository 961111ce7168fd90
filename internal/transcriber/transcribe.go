package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// TranscribeWithTimestamps converts audioPath to 16kHz mono WAV, runs whisper
// on it and returns the parsed segments with both caption encodings.
// Progress is reported at the two milestones: audio converted, text ready.
func (t *implTranscriber) TranscribeWithTimestamps(ctx context.Context, audioPath string, opts pipeline.TranscribeOptions) (pipeline.Transcript, error) {
	wavPath, err := t.toWAV(ctx, audioPath)
	if err != nil {
		return pipeline.Transcript{}, fmt.Errorf("prepare audio: %w", err)
	}
	defer t.cleanupTempFile(ctx, wavPath)
	report(opts.Progress, 10)

	srtPath, err := t.whisper(ctx, wavPath, opts)
	if err != nil {
		return pipeline.Transcript{}, err
	}
	defer t.cleanupTempFile(ctx, srtPath)

	raw, err := os.ReadFile(srtPath)
	if err != nil {
		return pipeline.Transcript{}, fmt.Errorf("read whisper output: %w", err)
	}
	segments, err := ParseSRT(string(raw))
	if err != nil {
		return pipeline.Transcript{}, fmt.Errorf("parse whisper output: %w", err)
	}
	report(opts.Progress, 100)

	language := opts.Language
	if language == "" {
		language = t.cfg.Whisper.Language
	}

	t.logger.Info(ctx, "Transcribed %s: %d segments", audioPath, len(segments))
	return pipeline.Transcript{
		FullText: FullText(segments),
		Language: language,
		Segments: segments,
		SRT:      EncodeSRT(segments),
		VTT:      EncodeVTT(segments),
	}, nil
}

func report(r pipeline.Reporter, percent float64) {
	if r != nil {
		r(percent)
	}
}

// toWAV converts audio to 16kHz mono PCM, the input whisper.cpp expects.
func (t *implTranscriber) toWAV(ctx context.Context, audioPath string) (string, error) {
	wavPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_16k.wav"

	// -ar 16000 -ac 1: whisper works on 16kHz mono
	// -c:a pcm_s16le: uncompressed 16-bit PCM
	// -threads 0: use all available threads
	args := []string{
		"-i", audioPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		wavPath,
	}

	if _, err := t.executor.Execute(ctx, t.cfg.Downloader.FFmpegPath, args...); err != nil {
		return "", fmt.Errorf("ffmpeg convert to wav: %w", err)
	}
	return wavPath, nil
}

// whisper runs whisper.cpp and returns the path of the SRT it wrote.
func (t *implTranscriber) whisper(ctx context.Context, wavPath string, opts pipeline.TranscribeOptions) (string, error) {
	outputPrefix := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))

	language := opts.Language
	if language == "" {
		language = t.cfg.Whisper.Language
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = t.cfg.Whisper.Prompt
	}

	t.logger.Info(ctx, "Starting transcription with %d threads: %s", t.cfg.Whisper.Threads, wavPath)

	// -osrt: write SRT next to --output-file
	// -ml 0 -mc 0: no segment length or context limit
	// -bo 5: best of 5 candidates
	args := []string{
		"-m", t.cfg.Whisper.ModelPath,
		"-f", wavPath,
		"-osrt",
		"-l", language,
		"-t", strconv.Itoa(t.cfg.Whisper.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if prompt != "" {
		args = append(args, "--prompt", prompt)
	}

	if _, err := t.executor.Execute(ctx, t.cfg.Whisper.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	srtPath := outputPrefix + ".srt"
	t.logger.Info(ctx, "Transcription completed: %s", srtPath)
	return srtPath, nil
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (t *implTranscriber) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil {
		t.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	} else {
		t.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
	}
}
