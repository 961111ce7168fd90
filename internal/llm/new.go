package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/nguyentantai21042004/videoscribe/internal/config"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
)

var (
	ErrNoAPIKeys     = errors.New("no Gemini API keys configured")
	ErrEmptyResponse = errors.New("empty response from Gemini")
)

// maxChunkRunes bounds the text sent in one optimize or translate request.
const maxChunkRunes = 8000

// generateFunc sends one prompt with one key and returns the text answer.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

type implService struct {
	logger   logger.Logger
	model    string
	generate generateFunc

	mu         sync.Mutex
	apiKeys    []string
	currentKey int
}

// New creates a Service that rotates through the configured Gemini API keys.
func New(cfg config.GeminiConfig, log logger.Logger) Service {
	return &implService{
		logger:   log.Named("llm"),
		model:    cfg.Model,
		generate: generateGemini,
		apiKeys:  cfg.APIKeys,
	}
}
