// Command pulse runs the live token table in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/config"
	"github.com/sangram-sethi/Axiom-pulse/internal/engine"
	"github.com/sangram-sethi/Axiom-pulse/internal/feed"
	"github.com/sangram-sethi/Axiom-pulse/internal/provider"
	"github.com/sangram-sethi/Axiom-pulse/internal/tui"
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
		logger.Error("fatal", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
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

	src, err := buildFeed(cfg, snapshot, logger)
	if err != nil {
		return err
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
	go eng.Run(ctx)

	model := tui.NewModel(tui.Options{
		Engine: eng,
		Logger: logger,
		Refetch: func(ctx context.Context) error {
			res := client.Fetch(ctx)
			return eng.LoadSnapshot(res.Tokens, res.UsedFallback)
		},
	})
	defer model.Close()

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func buildFeed(cfg *config.Config, snapshot provider.FetchResult, logger *zap.Logger) (feed.Source, error) {
	switch cfg.Feed.Mode {
	case config.FeedModeWS:
		return feed.NewWSSource(cfg.Feed.WSURL, feed.DefaultWSConfig(), logger), nil
	case config.FeedModeSim:
		return feed.NewSimulator(snapshot.Tokens, feed.SimulatorConfig{
			Interval: cfg.Feed.Interval,
			Seed:     cfg.Feed.Seed,
		}), nil
	default:
		return nil, fmt.Errorf("unknown feed mode %q", cfg.Feed.Mode)
	}
}
