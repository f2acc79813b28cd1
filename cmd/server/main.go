package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yegors/aeroai/internal/ai"
	"github.com/yegors/aeroai/internal/ai/gemini"
	"github.com/yegors/aeroai/internal/api"
	"github.com/yegors/aeroai/internal/config"
	"github.com/yegors/aeroai/internal/metrics"
	"github.com/yegors/aeroai/internal/turbulence"
	"github.com/yegors/aeroai/internal/voice"
	"github.com/yegors/aeroai/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, usedPath, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if usedPath == "" {
		usedPath = "(defaults)"
	}
	log.Info("Starting AeroAI server",
		logger.String("version", Version),
		logger.String("config_path", usedPath),
	)

	// Metrics registry shared by the collectors and GET /metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Voice mode is fixed for the process lifetime
	var gen ai.TextGenerator
	if cfg.VoiceEnabled() {
		client, err := gemini.NewClient(ctx, gemini.ConfigFromSettings(cfg.Gemini), log)
		if err != nil {
			// Continue in offline mode rather than failing
			log.Error("Failed to create Gemini client, voice assistant offline", logger.Error(err))
		} else {
			log.Info("Gemini client created", logger.String("model", client.Model()))
			gen = client
		}
	}

	relay := voice.New(gen, log)
	if relay.Mode() == voice.ModeOnline {
		m.VoiceOnline.Set(1)
	}
	log.Info("Voice assistant ready",
		logger.String("mode", string(relay.Mode())),
		logger.Bool("api_key_configured", cfg.VoiceEnabled()))

	estimator := turbulence.NewEstimator(nil)

	// Create API router
	router := api.NewRouter(estimator, relay, cfg, m, reg, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		// Wait for interrupt signal or a listener failure
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		log.Info("HTTP server shutdown complete", logger.String("addr", addr))
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}

	log.Info("Server fully stopped")
}
