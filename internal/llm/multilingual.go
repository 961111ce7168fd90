package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
)

func (s *implService) Translate(ctx context.Context, text string, opts pipeline.MultilingualOptions) (pipeline.Multilingual, error) {
	src, dst := languages(opts)
	chunks := splitText(text, maxChunkRunes)

	s.logger.Info(ctx, "Translating %d chunk(s) %s -> %s", len(chunks), src, dst)

	out := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		prompt := fmt.Sprintf(translatePrompt, languageName(src), languageName(dst), chunk)
		answer, err := s.call(ctx, opts.Model, prompt)
		if err != nil {
			return pipeline.Multilingual{}, fmt.Errorf("translate chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out = append(out, stripFences(answer))
	}

	return pipeline.Multilingual{
		Translation:    strings.Join(out, "\n\n"),
		SourceLanguage: src,
		TargetLanguage: dst,
	}, nil
}

func (s *implService) Summarize(ctx context.Context, text string, opts pipeline.MultilingualOptions) (pipeline.Multilingual, error) {
	src, dst := languages(opts)

	s.logger.Info(ctx, "Summarizing %d chars in %s", len([]rune(text)), dst)

	answer, err := s.call(ctx, opts.Model, fmt.Sprintf(summarizePrompt, languageName(dst), text))
	if err != nil {
		return pipeline.Multilingual{}, fmt.Errorf("summarize: %w", err)
	}
	return pipeline.Multilingual{
		Summary:        stripFences(answer),
		SourceLanguage: src,
		TargetLanguage: dst,
	}, nil
}

type translationAndSummary struct {
	Translation string `json:"translation"`
	Summary     string `json:"summary"`
}

// TranslateAndSummarize asks for both in one request. Texts too long for a
// single request fall back to Translate followed by Summarize.
func (s *implService) TranslateAndSummarize(ctx context.Context, text string, opts pipeline.MultilingualOptions) (pipeline.Multilingual, error) {
	src, dst := languages(opts)

	if len([]rune(text)) > maxChunkRunes {
		tr, err := s.Translate(ctx, text, opts)
		if err != nil {
			return pipeline.Multilingual{}, err
		}
		sum, err := s.Summarize(ctx, tr.Translation, opts)
		if err != nil {
			return pipeline.Multilingual{}, err
		}
		tr.Summary = sum.Summary
		return tr, nil
	}

	prompt := fmt.Sprintf(translateAndSummarizePrompt, languageName(src), languageName(dst), languageName(dst), text)
	answer, err := s.call(ctx, opts.Model, prompt)
	if err != nil {
		return pipeline.Multilingual{}, fmt.Errorf("translate and summarize: %w", err)
	}

	var parsed translationAndSummary
	if err := json.Unmarshal([]byte(stripFences(answer)), &parsed); err != nil {
		return pipeline.Multilingual{}, fmt.Errorf("decode translate and summarize answer: %w", err)
	}
	return pipeline.Multilingual{
		Translation:    strings.TrimSpace(parsed.Translation),
		Summary:        strings.TrimSpace(parsed.Summary),
		SourceLanguage: src,
		TargetLanguage: dst,
	}, nil
}

func languages(opts pipeline.MultilingualOptions) (string, string) {
	src, dst := opts.SourceLanguage, opts.TargetLanguage
	if src == "" {
		src = "auto"
	}
	if dst == "" {
		dst = "zh"
	}
	return src, dst
}
