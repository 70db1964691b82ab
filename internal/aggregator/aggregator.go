// Package aggregator runs one fetch pass: the last fourteen days crossed
// with every enabled source, skipping what the store already holds.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/sources"
	"github.com/myrjola/duckwod/internal/store"
	"github.com/myrjola/duckwod/internal/wod"
	"golang.org/x/sync/errgroup"
)

// Stats summarises one pass.
type Stats struct {
	// Fetched counts entries newly inserted into the store.
	Fetched int
	// Cached counts (date, source) pairs skipped because the store
	// already held an entry.
	Cached int
	// Empty counts fetches that completed without finding a workout.
	Empty int
	// Failed counts fetch and insert errors, all absorbed.
	Failed int
}

// Aggregator drives the fetch pass over a store and a set of sources.
type Aggregator struct {
	store   *store.Store
	sources []sources.Source
	logger  *slog.Logger

	now func() time.Time
}

// New constructs an aggregator.
func New(st *store.Store, srcs []sources.Source, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:   st,
		sources: srcs,
		logger:  logger,
		now:     time.Now,
	}
}

type fetchResult struct {
	source string
	date   string
	entry  *wod.Entry
	err    error
}

// Run executes one pass. Sources fetch concurrently; the store is only
// touched from this goroutine. Per-fetch failures are logged and counted,
// never returned; the error is non-nil only when the context ends the pass
// early.
func (a *Aggregator) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	today := a.now()

	// Resolve the work items up front so HasEntry runs single-threaded.
	missing := make(map[string][]time.Time, len(a.sources))
	for _, src := range a.sources {
		for i := wod.WindowDays - 1; i >= 0; i-- {
			date := today.AddDate(0, 0, -i)
			if a.store.HasEntry(wod.FormatDate(date), src.ID) {
				stats.Cached++
				continue
			}
			missing[src.ID] = append(missing[src.ID], date)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make(chan fetchResult)

	for _, src := range a.sources {
		dates := missing[src.ID]
		g.Go(func() error {
			for _, date := range dates {
				entry, err := src.Fetcher.Fetch(ctx, date)
				res := fetchResult{
					source: src.ID,
					date:   wod.FormatDate(date),
					entry:  entry,
					err:    err,
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.Wait()
		close(results)
	}()

	for res := range results {
		a.collect(res, &stats)
	}
	<-done

	if err := g.Wait(); err != nil {
		return stats, errors.Wrap(err, "fetch pass interrupted")
	}

	a.store.Prune(today)
	return stats, nil
}

// collect folds one fetch result into the store and the pass statistics.
func (a *Aggregator) collect(res fetchResult, stats *Stats) {
	switch {
	case res.err != nil:
		stats.Failed++
		level := slog.LevelWarn
		if errors.Is(res.err, wod.ErrEmptyPool) {
			// An unavailable pool repeats for every date; keep it quiet.
			level = slog.LevelDebug
		}
		a.logger.Log(context.Background(), level, "fetch failed",
			slog.String("source", res.source),
			slog.String("date", res.date),
			errors.SlogError(res.err))
	case res.entry == nil:
		stats.Empty++
	default:
		if err := a.store.Insert(res.date, *res.entry); err != nil {
			stats.Failed++
			a.logger.Warn("insert rejected",
				slog.String("source", res.source),
				slog.String("date", res.date),
				errors.SlogError(err))
			return
		}
		stats.Fetched++
		a.logger.Info("workout stored",
			slog.String("source", res.source),
			slog.String("date", res.date))
	}
}
