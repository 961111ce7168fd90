package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Paths      PathsConfig      `yaml:"paths"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	WSPath      string `yaml:"ws_path"`
	MetricsPath string `yaml:"metrics_path"`
}

type PipelineConfig struct {
	MaxConcurrentRuns     int           `yaml:"max_concurrent_runs"`
	RunTimeout            time.Duration `yaml:"run_timeout"`
	HistorySize           int           `yaml:"history_size"`
	DefaultTargetLanguage string        `yaml:"default_target_language"`
	WriteReports          bool          `yaml:"write_reports"`
}

type NotifierConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	HistorySize       int           `yaml:"history_size"`
	ReplayLimit       int           `yaml:"replay_limit"`
	SnapshotTTL       time.Duration `yaml:"snapshot_ttl"`
	MaxConnections    int           `yaml:"max_connections"`
	SendBuffer        int           `yaml:"send_buffer"`
}

type DownloaderConfig struct {
	YtDlpPath       string `yaml:"ytdlp_path"`
	FFmpegPath      string `yaml:"ffmpeg_path"`
	Format          string `yaml:"format"`
	AudioCodec      string `yaml:"audio_codec"`
	AudioBitrate    string `yaml:"audio_bitrate"`
	AudioSampleRate string `yaml:"audio_sample_rate"`
	Proxy           string `yaml:"proxy"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type PathsConfig struct {
	Work    string `yaml:"work"`
	Reports string `yaml:"reports"`
	Watch   string `yaml:"watch"`
}

type WatchConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxConcurrent int  `yaml:"max_concurrent"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Paths.Work == "" {
		return fmt.Errorf("paths.work is required")
	}
	if c.Pipeline.MaxConcurrentRuns < 0 {
		return fmt.Errorf("pipeline.max_concurrent_runs must not be negative")
	}
	if c.Watch.Enabled && c.Paths.Watch == "" {
		return fmt.Errorf("paths.watch is required when watch.enabled is set")
	}

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = "/ws/progress"
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = "/metrics"
	}

	if c.Pipeline.MaxConcurrentRuns == 0 {
		c.Pipeline.MaxConcurrentRuns = 3
	}
	if c.Pipeline.RunTimeout == 0 {
		c.Pipeline.RunTimeout = 10 * time.Minute
	}
	if c.Pipeline.HistorySize == 0 {
		c.Pipeline.HistorySize = 200
	}
	if c.Pipeline.DefaultTargetLanguage == "" {
		c.Pipeline.DefaultTargetLanguage = "zh"
	}

	if c.Notifier.HeartbeatInterval == 0 {
		c.Notifier.HeartbeatInterval = 30 * time.Second
	}
	if c.Notifier.HistorySize == 0 {
		c.Notifier.HistorySize = 1000
	}
	if c.Notifier.ReplayLimit == 0 {
		c.Notifier.ReplayLimit = 50
	}
	if c.Notifier.SnapshotTTL == 0 {
		c.Notifier.SnapshotTTL = time.Hour
	}
	if c.Notifier.MaxConnections == 0 {
		c.Notifier.MaxConnections = 100
	}
	if c.Notifier.SendBuffer == 0 {
		c.Notifier.SendBuffer = 64
	}

	if c.Downloader.YtDlpPath == "" {
		c.Downloader.YtDlpPath = "yt-dlp"
	}
	if c.Downloader.FFmpegPath == "" {
		c.Downloader.FFmpegPath = "ffmpeg"
	}
	if c.Downloader.Format == "" {
		c.Downloader.Format = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	}
	if c.Downloader.AudioCodec == "" {
		c.Downloader.AudioCodec = "libmp3lame"
	}
	if c.Downloader.AudioBitrate == "" {
		c.Downloader.AudioBitrate = "192k"
	}
	if c.Downloader.AudioSampleRate == "" {
		c.Downloader.AudioSampleRate = "44100"
	}

	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Paths.Reports == "" {
		c.Paths.Reports = "data/reports"
	}
	if c.Watch.MaxConcurrent == 0 {
		c.Watch.MaxConcurrent = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
