package scrape

import (
	"context"
	"time"

	"github.com/myrjola/duckwod/internal/wod"
)

// Fetcher produces the workout entry for one source and one date.
//
// A nil entry with a nil error means the source has nothing for that date,
// e.g. a rest day or a today-only source asked about the past. Errors are
// absorbed at the orchestration boundary and downgraded to "no result";
// they never abort the pass.
type Fetcher interface {
	Fetch(ctx context.Context, date time.Time) (*wod.Entry, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, date time.Time) (*wod.Entry, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, date time.Time) (*wod.Entry, error) {
	return f(ctx, date)
}
