package pipeline

import (
	"time"
)

// Status is a run's lifecycle state.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Reporter receives a collaborator's intermediate progress in percent (0-100).
type Reporter func(percent float64)

type DownloadOptions struct {
	Format    string   `json:"format,omitempty"`
	OutputDir string   `json:"outputDir,omitempty"`
	Progress  Reporter `json:"-"`
}

type AudioOptions struct {
	Codec      string `json:"codec,omitempty"`
	Bitrate    string `json:"bitrate,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
}

type TranscribeOptions struct {
	Language string   `json:"language,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Progress Reporter `json:"-"`
}

type OptimizeOptions struct {
	Model string `json:"model,omitempty"`
}

type MultilingualOptions struct {
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Model          string `json:"model,omitempty"`
}

// Options configures one run. Translate and Summarize enable the optional
// multilingual stage.
type Options struct {
	Download       DownloadOptions   `json:"download"`
	Audio          AudioOptions      `json:"audio"`
	Transcription  TranscribeOptions `json:"transcription"`
	Optimization   OptimizeOptions   `json:"optimization"`
	Translate      bool              `json:"translate"`
	Summarize      bool              `json:"summarize"`
	SourceLanguage string            `json:"sourceLanguage,omitempty"`
	TargetLanguage string            `json:"targetLanguage,omitempty"`
}

// Segment is one timestamped piece of a transcript. Times are in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is what a Transcriber returns: the full text, its segments and
// the segments rendered as SRT and WebVTT captions.
type Transcript struct {
	FullText string    `json:"fullText"`
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
	SRT      string    `json:"srt"`
	VTT      string    `json:"vtt"`
}

// Multilingual holds the output of the translate/summarize stage.
type Multilingual struct {
	Translation    string `json:"translation,omitempty"`
	Summary        string `json:"summary,omitempty"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
}

// Result is the assembled output of a completed run.
type Result struct {
	VideoPath     string        `json:"videoPath,omitempty"`
	AudioPath     string        `json:"audioPath"`
	OriginalText  string        `json:"originalText"`
	OptimizedText string        `json:"optimizedText"`
	Segments      []Segment     `json:"segments"`
	SRT           string        `json:"srt"`
	VTT           string        `json:"vtt"`
	Multilingual  *Multilingual `json:"multilingual,omitempty"`
	ReportPath    string        `json:"reportPath,omitempty"`
	DurationMs    int64         `json:"durationMs"`
}

// StepRecord traces one stage of a run.
type StepRecord struct {
	Name      string    `json:"name"`
	Index     int       `json:"index"`
	Required  bool      `json:"required"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Success   bool      `json:"success"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// RunSnapshot is a read-only copy of a run. Active runs report ElapsedMs,
// archived runs report EndedAt and DurationMs.
type RunSnapshot struct {
	ID         string       `json:"id"`
	URL        string       `json:"url"`
	Quick      bool         `json:"quick,omitempty"`
	Active     bool         `json:"active"`
	Status     Status       `json:"status"`
	StartedAt  time.Time    `json:"startedAt"`
	EndedAt    time.Time    `json:"endedAt,omitzero"`
	ElapsedMs  int64        `json:"elapsedMs,omitempty"`
	DurationMs int64        `json:"durationMs,omitempty"`
	Options    Options      `json:"options"`
	Steps      []StepRecord `json:"steps"`
	Result     *Result      `json:"result,omitempty"`
	Stage      string       `json:"stage,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// Outcome is the tagged result of a run as seen by API callers.
type Outcome struct {
	Success    bool    `json:"success"`
	RunID      string  `json:"runId,omitempty"`
	Status     Status  `json:"status,omitempty"`
	Stage      string  `json:"stage,omitempty"`
	Error      string  `json:"error,omitempty"`
	ActiveRuns int     `json:"activeRuns,omitempty"`
	Result     *Result `json:"result,omitempty"`
}

type BatchItem struct {
	URL     string `json:"url"`
	RunID   string `json:"runId,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BatchSummary struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []BatchItem `json:"results"`
}

// Filter narrows History. Zero values match everything.
type Filter struct {
	Status Status
	Limit  int
}

// Stats aggregates the archived runs.
type Stats struct {
	Total         int   `json:"total"`
	Completed     int   `json:"completed"`
	Failed        int   `json:"failed"`
	Cancelled     int   `json:"cancelled"`
	SuccessRate   int   `json:"successRate"`
	AvgDurationMs int64 `json:"avgDurationMs"`
	Active        int   `json:"active"`
}

// Config bounds the orchestrator.
type Config struct {
	MaxConcurrentRuns     int           `json:"maxConcurrentRuns"`
	RunTimeout            time.Duration `json:"runTimeout"`
	HistorySize           int           `json:"historySize"`
	DefaultTargetLanguage string        `json:"defaultTargetLanguage"`
	EventBuffer           int           `json:"eventBuffer"`
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentRuns <= 0 {
		c.MaxConcurrentRuns = 3
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = 10 * time.Minute
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 200
	}
	if c.DefaultTargetLanguage == "" {
		c.DefaultTargetLanguage = "zh"
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
	return c
}
