// Command server runs the headless token table API: HTTP query endpoints,
// a WebSocket stream of view updates, and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/config"
	"github.com/sangram-sethi/Axiom-pulse/internal/engine"
	"github.com/sangram-sethi/Axiom-pulse/internal/feed"
	"github.com/sangram-sethi/Axiom-pulse/internal/observability"
	"github.com/sangram-sethi/Axiom-pulse/internal/provider"
	"github.com/sangram-sethi/Axiom-pulse/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("fatal", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	client := provider.NewClient(cfg.Provider.APIKey,
		provider.WithBaseURL(cfg.Provider.BaseURL),
		provider.WithTimeout(cfg.Provider.Timeout),
		provider.WithLogger(logger),
	)

	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), cfg.Provider.Timeout)
	snapshot := client.Fetch(fetchCtx)
	cancelFetch()
	if snapshot.UsedFallback {
		logger.Warn("serving fallback snapshot", zap.String("reason", snapshot.Reason))
	}

	var src feed.Source
	switch cfg.Feed.Mode {
	case config.FeedModeWS:
		src = feed.NewWSSource(cfg.Feed.WSURL, feed.DefaultWSConfig(), logger)
	case config.FeedModeSim:
		src = feed.NewSimulator(snapshot.Tokens, feed.SimulatorConfig{
			Interval: cfg.Feed.Interval,
			Seed:     cfg.Feed.Seed,
		})
	default:
		return fmt.Errorf("unknown feed mode %q", cfg.Feed.Mode)
	}

	eng := engine.New(engine.Options{
		Feed:     src,
		Logger:   logger,
		PageSize: cfg.Table.PageSize,
	})
	if err := eng.LoadSnapshot(snapshot.Tokens, snapshot.UsedFallback); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	go eng.Run(ctx)

	// Dedicated metrics listener, separate from the API surface.
	if cfg.Server.MetricsAddr != "" && cfg.Server.MetricsAddr != cfg.Server.Addr {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Info("metrics listening", zap.String("addr", cfg.Server.MetricsAddr))
			if err := http.ListenAndServe(cfg.Server.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
	}

	srv := server.New(server.Options{
		Engine: eng,
		Logger: logger,
		Refresh: func(ctx context.Context) error {
			res := client.Fetch(ctx)
			return eng.LoadSnapshot(res.Tokens, res.UsedFallback)
		},
	})

	if err := srv.Start(ctx, cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
