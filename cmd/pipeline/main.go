package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/processor"
	"github.com/nguyentantai21042004/transcript-flow/internal/summarizer"
	"github.com/nguyentantai21042004/transcript-flow/internal/sysload"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcriber"
	"github.com/nguyentantai21042004/transcript-flow/internal/watcher"
	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	filePath := flag.String("file", "", "process a single media file and exit")
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Transcript Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "CPU Cores: %d", runtime.NumCPU())
	log.Info(ctx, "Configuration loaded successfully")

	// Verify required directories exist
	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	// Initialize dependencies
	exec := executor.New()
	sttEngine := transcriber.NewWhisperEngine(
		cfg.Whisper.BinaryPath,
		cfg.Whisper.ModelPath,
		cfg.Whisper.Language,
		cfg.Whisper.Threads,
		exec,
		log,
	)
	sumEngine := summarizer.NewGeminiEngine(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
	controller := sysload.New(cfg.Pipeline.CPUThreshold, log)
	proc := processor.New(cfg, exec, log, sttEngine, sumEngine, controller)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *filePath != "" {
		runOnce(ctx, cancel, proc, *filePath, sigChan, log)
		return
	}

	// Create watcher with processor as handler and concurrency control
	w, err := watcher.New(cfg.Paths.Input, proc.Process, log, cfg.Pipeline.MaxConcurrent)
	if err != nil {
		log.Error(ctx, "Failed to create watcher: %v", err)
		os.Exit(1)
	}
	defer w.Stop()

	// Start watcher in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Transcript Pipeline is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "")
	log.Info(ctx, "  - Whisper: %s (%d threads)", cfg.Whisper.ModelPath, cfg.Whisper.Threads)
	log.Info(ctx, "  - Chunks: %ds, up to %d workers below %.0f%% CPU", cfg.Pipeline.ChunkSeconds, cfg.Pipeline.Workers, cfg.Pipeline.CPUThreshold)
	log.Info(ctx, "  - Summary: %s, %d word limit", cfg.Gemini.Model, cfg.Summary.WordLimit)
	log.Info(ctx, "")
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Watcher error: %v", err)
	}

	// Graceful shutdown
	log.Info(ctx, "Shutting down gracefully...")
	if err := proc.Cancel(); err == nil {
		log.Info(ctx, "Cancellation requested for running job")
	}
	cancel()

	log.Info(ctx, "Transcript Pipeline stopped")
}

// runOnce processes a single file, cancelling on the first signal.
func runOnce(ctx context.Context, cancel context.CancelFunc, proc processor.Processor, path string, sigChan chan os.Signal, log logger.Logger) {
	done := make(chan error, 1)
	go func() {
		done <- proc.Process(ctx, path)
	}()

	for {
		select {
		case <-sigChan:
			log.Info(ctx, "Shutdown signal received, cancelling job...")
			if err := proc.Cancel(); err != nil {
				cancel()
			}
		case err := <-done:
			if err != nil {
				log.Error(ctx, "Processing failed: %v", err)
				os.Exit(1)
			}
			return
		}
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Scratch,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
