package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/myrjola/duckwod/internal/aggregator"
	"github.com/myrjola/duckwod/internal/envstruct"
	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/logging"
	"github.com/myrjola/duckwod/internal/scrape"
	"github.com/myrjola/duckwod/internal/sources"
	"github.com/myrjola/duckwod/internal/store"
	"github.com/robfig/cron"
)

type config struct {
	// DataFile is the path of the rolling workout store.
	DataFile string `env:"DUCKWOD_DATA_FILE" envDefault:"./data/workouts.json"`
	// SourcesFile is the optional YAML file disabling individual sources.
	SourcesFile string `env:"DUCKWOD_SOURCES_FILE" envDefault:"./sources.yaml"`
	// FetchTimeout bounds each HTTP request.
	FetchTimeout time.Duration `env:"DUCKWOD_FETCH_TIMEOUT" envDefault:"15s"`
	// Schedule is an optional cron expression. When set, the process stays
	// resident and re-runs the fetch pass on that schedule.
	Schedule string `env:"DUCKWOD_SCHEDULE" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file", errors.SlogError(err))
	}

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	overrides, err := sources.LoadConfig(cfg.SourcesFile, logger)
	if err != nil {
		return errors.Wrap(err, "load source overrides")
	}

	// Each pass builds its own client and sources so scheduled runs do not
	// inherit a stale or failed pool cache from an earlier pass.
	pass := func(ctx context.Context) error {
		client := scrape.NewClient(cfg.FetchTimeout, logger)
		srcs := sources.Filter(sources.All(client, logger), overrides, logger)

		st := store.Load(cfg.DataFile, logger)
		stats, err := aggregator.New(st, srcs, logger).Run(ctx)
		if err != nil {
			return errors.Wrap(err, "run fetch pass")
		}
		if err := st.Save(cfg.DataFile, time.Now()); err != nil {
			return errors.Wrap(err, "save store")
		}

		summary := st.Summarize()
		logger.LogAttrs(ctx, slog.LevelInfo, "pass complete",
			slog.Int("fetched", stats.Fetched),
			slog.Int("cached", stats.Cached),
			slog.Int("empty", stats.Empty),
			slog.Int("failed", stats.Failed),
			slog.Int("total_entries", summary.TotalEntries),
			slog.Int("days_with_data", summary.DaysWithData))
		return nil
	}

	if cfg.Schedule == "" {
		return pass(ctx)
	}

	scheduler := cron.New()
	if err := scheduler.AddFunc(cfg.Schedule, func() {
		if err := pass(ctx); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "scheduled pass failed", errors.SlogError(err))
		}
	}); err != nil {
		return errors.Wrap(err, "parse schedule", slog.String("schedule", cfg.Schedule))
	}
	scheduler.Start()
	logger.LogAttrs(ctx, slog.LevelInfo, "scheduler started", slog.String("schedule", cfg.Schedule))

	<-ctx.Done()
	scheduler.Stop()
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure running fetch", errors.SlogError(err))
		os.Exit(1)
	}
}
