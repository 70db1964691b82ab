// Command show prints the stored workouts for a date, or today's when no
// date is given, followed by the store summary. It is the quick operational
// check that the fetch pass produced data.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/duckwod/internal/envstruct"
	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/logging"
	"github.com/myrjola/duckwod/internal/store"
	"github.com/myrjola/duckwod/internal/wod"
)

type config struct {
	// DataFile is the path of the rolling workout store.
	DataFile string `env:"DUCKWOD_DATA_FILE" envDefault:"./data/workouts.json"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool), args []string) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	date := wod.FormatDate(time.Now())
	if len(args) > 0 {
		parsed, err := time.Parse(wod.DateFormat, args[0])
		if err != nil {
			return errors.Wrap(err, "parse date argument", slog.String("arg", args[0]))
		}
		date = wod.FormatDate(parsed)
	}

	st := store.Load(cfg.DataFile, logger)
	entries := st.Entries(date)
	if len(entries) == 0 {
		fmt.Printf("no workouts stored for %s\n", date)
	}
	for _, entry := range entries {
		fmt.Printf("\n=== %s (%s)\n", entry.SourceName, date)
		if entry.Note != "" {
			fmt.Printf("%s\n", entry.Note)
		}
		for _, section := range entry.Sections {
			fmt.Printf("\n%s\n", section.Title)
			for _, line := range section.Lines {
				fmt.Printf("  %s\n", line)
			}
		}
	}

	summary := st.Summarize()
	logger.LogAttrs(ctx, slog.LevelInfo, "store summary",
		slog.Int("total_entries", summary.TotalEntries),
		slog.Int("days_with_data", summary.DaysWithData))
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv, os.Args[1:]); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure showing workouts", errors.SlogError(err))
		os.Exit(1)
	}
}
