package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/videoscribe/internal/config"
	"github.com/nguyentantai21042004/videoscribe/internal/llm"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
	"github.com/nguyentantai21042004/videoscribe/internal/media"
	"github.com/nguyentantai21042004/videoscribe/internal/metrics"
	"github.com/nguyentantai21042004/videoscribe/internal/pipeline"
	"github.com/nguyentantai21042004/videoscribe/internal/progress"
	"github.com/nguyentantai21042004/videoscribe/internal/report"
	"github.com/nguyentantai21042004/videoscribe/internal/server"
	"github.com/nguyentantai21042004/videoscribe/internal/transcriber"
	"github.com/nguyentantai21042004/videoscribe/internal/watcher"
	"github.com/nguyentantai21042004/videoscribe/pkg/executor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "videoscribe: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Videoscribe media pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	log.Info(ctx, "Max concurrent runs: %d, run timeout: %s", cfg.Pipeline.MaxConcurrentRuns, cfg.Pipeline.RunTimeout)

	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	notifier := progress.New(progress.Config{
		HistorySize:       cfg.Notifier.HistorySize,
		ReplayLimit:       cfg.Notifier.ReplayLimit,
		SnapshotTTL:       cfg.Notifier.SnapshotTTL,
		MaxConnections:    cfg.Notifier.MaxConnections,
		HeartbeatInterval: cfg.Notifier.HeartbeatInterval,
		SendBuffer:        cfg.Notifier.SendBuffer,
	}, log, m)
	defer notifier.Shutdown()

	exec := executor.New()
	text := llm.New(cfg.Gemini, log)
	deps := pipeline.Deps{
		Downloader:   media.New(cfg, exec, log),
		Transcriber:  transcriber.New(cfg, exec, log),
		Optimizer:    text,
		Multilingual: text,
		Emitter:      notifier,
		Metrics:      m,
	}
	if cfg.Pipeline.WriteReports {
		deps.Reports = report.New(cfg.Paths.Reports, log)
	}

	orch := pipeline.New(pipeline.Config{
		MaxConcurrentRuns:     cfg.Pipeline.MaxConcurrentRuns,
		RunTimeout:            cfg.Pipeline.RunTimeout,
		HistorySize:           cfg.Pipeline.HistorySize,
		DefaultTargetLanguage: cfg.Pipeline.DefaultTargetLanguage,
	}, deps, log)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(cfg.Server, orch, notifier, m.Handler(), log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return ignoreCanceled(notifier.Run(ctx)) })

	if cfg.Watch.Enabled {
		w, err := watcher.New(cfg.Paths.Watch, watcher.BatchHandler(orch, pipeline.Options{}, log.Named("intake")), log, cfg.Watch.MaxConcurrent)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer w.Stop()
		g.Go(func() error { return ignoreCanceled(w.Start(ctx)) })
		log.Info(ctx, "Watching %s for URL lists", cfg.Paths.Watch)
	}

	log.Info(ctx, "Pipeline ready. Progress at ws://%s%s, press Ctrl+C to stop", cfg.Server.ListenAddr, cfg.Server.WSPath)

	if err := g.Wait(); err != nil {
		log.Error(ctx, "Shutting down after error: %v", err)
		return err
	}
	log.Info(context.Background(), "Videoscribe stopped")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{cfg.Paths.Work}
	if cfg.Pipeline.WriteReports {
		dirs = append(dirs, cfg.Paths.Reports)
	}
	if cfg.Watch.Enabled {
		dirs = append(dirs, cfg.Paths.Watch)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
