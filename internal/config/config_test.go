package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Whisper: WhisperConfig{
					ModelPath:  "models/test.bin",
					BinaryPath: "./whisper",
				},
				Paths: PathsConfig{Work: "data/work"},
			},
			wantErr: false,
		},
		{
			name: "missing model path",
			config: Config{
				Whisper: WhisperConfig{BinaryPath: "./whisper"},
				Paths:   PathsConfig{Work: "data/work"},
			},
			wantErr: true,
		},
		{
			name: "missing work dir",
			config: Config{
				Whisper: WhisperConfig{
					ModelPath:  "models/test.bin",
					BinaryPath: "./whisper",
				},
			},
			wantErr: true,
		},
		{
			name: "watch enabled without watch dir",
			config: Config{
				Whisper: WhisperConfig{
					ModelPath:  "models/test.bin",
					BinaryPath: "./whisper",
				},
				Paths: PathsConfig{Work: "data/work"},
				Watch: WatchConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "negative concurrency",
			config: Config{
				Whisper: WhisperConfig{
					ModelPath:  "models/test.bin",
					BinaryPath: "./whisper",
				},
				Paths:    PathsConfig{Work: "data/work"},
				Pipeline: PipelineConfig{MaxConcurrentRuns: -1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Config{
		Whisper: WhisperConfig{ModelPath: "m.bin", BinaryPath: "whisper-cli"},
		Paths:   PathsConfig{Work: "data/work"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Pipeline.MaxConcurrentRuns != 3 {
		t.Errorf("MaxConcurrentRuns = %d, want 3", cfg.Pipeline.MaxConcurrentRuns)
	}
	if cfg.Pipeline.HistorySize != 200 {
		t.Errorf("Pipeline.HistorySize = %d, want 200", cfg.Pipeline.HistorySize)
	}
	if cfg.Pipeline.RunTimeout != 10*time.Minute {
		t.Errorf("RunTimeout = %v, want 10m", cfg.Pipeline.RunTimeout)
	}
	if cfg.Notifier.HistorySize != 1000 {
		t.Errorf("Notifier.HistorySize = %d, want 1000", cfg.Notifier.HistorySize)
	}
	if cfg.Notifier.ReplayLimit != 50 {
		t.Errorf("ReplayLimit = %d, want 50", cfg.Notifier.ReplayLimit)
	}
	if cfg.Notifier.HeartbeatInterval != 30*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 30s", cfg.Notifier.HeartbeatInterval)
	}
	if cfg.Server.WSPath != "/ws/progress" {
		t.Errorf("WSPath = %q, want /ws/progress", cfg.Server.WSPath)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q", cfg.Gemini.Model)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvGeminiAPIKeys, "key-a, key-b,,")
	t.Setenv(EnvListenAddr, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_addr: ":9090"

pipeline:
  max_concurrent_runs: 5
  run_timeout: 90s

notifier:
  heartbeat_interval: 15s

whisper:
  model_path: "models/test.bin"
  binary_path: "./whisper"
  language: "en"

paths:
  work: "data/work"

logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %v, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Pipeline.MaxConcurrentRuns != 5 {
		t.Errorf("MaxConcurrentRuns = %d, want 5", cfg.Pipeline.MaxConcurrentRuns)
	}
	if cfg.Pipeline.RunTimeout != 90*time.Second {
		t.Errorf("RunTimeout = %v, want 90s", cfg.Pipeline.RunTimeout)
	}
	if cfg.Notifier.HeartbeatInterval != 15*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 15s", cfg.Notifier.HeartbeatInterval)
	}
	if len(cfg.Gemini.APIKeys) != 2 || cfg.Gemini.APIKeys[0] != "key-a" || cfg.Gemini.APIKeys[1] != "key-b" {
		t.Errorf("APIKeys = %v, want [key-a key-b]", cfg.Gemini.APIKeys)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("loadDotEnv() error = %v, want nil", err)
	}
}
