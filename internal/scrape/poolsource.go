package scrape

import (
	"context"
	"time"

	"github.com/myrjola/duckwod/internal/wod"
)

// PoolSource adapts a pool [Loader] into a [Fetcher]: instead of scraping a
// per-date page, it deterministically selects one pooled workout for the
// requested date with a 14-day non-repetition window.
type PoolSource struct {
	loader *Loader

	id   string
	name string
	url  string
	// sectionTitle overrides the item name as the section header when set.
	sectionTitle string
	// notePrefix produces a "Benchmark: FRAN" style note when set.
	notePrefix string
}

// NewHeroSource constructs the hero workout source.
func NewHeroSource(loader *Loader) *PoolSource {
	return &PoolSource{
		loader:       loader,
		id:           "hero",
		name:         "CrossFit Hero Workouts",
		url:          "",
		sectionTitle: "",
		notePrefix:   "",
	}
}

// NewBenchmarkSource constructs the benchmark workout source.
func NewBenchmarkSource(loader *Loader, listingURL string) *PoolSource {
	return &PoolSource{
		loader:       loader,
		id:           "benchmark",
		name:         "CrossFit Benchmark Workouts",
		url:          listingURL,
		sectionTitle: "BENCHMARK",
		notePrefix:   "Benchmark",
	}
}

// NewOpenSource constructs the CrossFit Open workout source.
func NewOpenSource(loader *Loader, listingURL string) *PoolSource {
	return &PoolSource{
		loader:       loader,
		id:           "open",
		name:         "CrossFit Open Workouts",
		url:          listingURL,
		sectionTitle: "",
		notePrefix:   "Open",
	}
}

// Fetch selects the pooled workout for the date. An empty pool surfaces as
// [wod.ErrEmptyPool], which the orchestrator treats as "no workout
// available" for this source.
func (p *PoolSource) Fetch(ctx context.Context, date time.Time) (*wod.Entry, error) {
	sel, err := wod.Select(p.loader.Pool(ctx), date)
	if err != nil {
		return nil, err
	}

	title := p.sectionTitle
	if title == "" {
		title = sel.Item.Name
	}
	note := ""
	if p.notePrefix != "" {
		note = p.notePrefix + ": " + sel.Item.Name
	}

	return &wod.Entry{
		Date:       wod.FormatDate(date),
		Source:     p.id,
		SourceName: p.name,
		URL:        p.url,
		Note:       note,
		Sections:   []wod.Section{{Title: title, Lines: sel.Item.Lines}},
	}, nil
}
