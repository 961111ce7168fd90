package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// FullOptimization cleans up a raw transcript. Long transcripts are sent in
// chunks and the cleaned chunks joined as paragraphs.
func (s *implService) FullOptimization(ctx context.Context, text string, opts pipeline.OptimizeOptions) (string, error) {
	chunks := splitText(text, maxChunkRunes)
	if len(chunks) == 0 {
		return "", nil
	}

	s.logger.Info(ctx, "Optimizing transcript: %d chars in %d chunk(s)", len([]rune(text)), len(chunks))

	out := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		answer, err := s.call(ctx, opts.Model, fmt.Sprintf(optimizePrompt, chunk))
		if err != nil {
			return "", fmt.Errorf("optimize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out = append(out, stripFences(answer))
	}
	return strings.Join(out, "\n\n"), nil
}
