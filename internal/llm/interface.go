package llm

import (
	"context"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

// Service polishes transcripts and produces translations and summaries with
// Gemini. It serves as both the text optimizer and the multilingual
// processor of the pipeline.
type Service interface {
	FullOptimization(ctx context.Context, text string, opts pipeline.OptimizeOptions) (string, error)
	Translate(ctx context.Context, text string, opts pipeline.MultilingualOptions) (pipeline.Multilingual, error)
	Summarize(ctx context.Context, text string, opts pipeline.MultilingualOptions) (pipeline.Multilingual, error)
	TranslateAndSummarize(ctx context.Context, text string, opts pipeline.MultilingualOptions) (pipeline.Multilingual, error)
}
