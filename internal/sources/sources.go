// Package sources assembles the workout sources the fetch pass runs over
// and applies the optional YAML enable/disable overrides.
package sources

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/scrape"
	"gopkg.in/yaml.v3"
)

// Production endpoints for every supported site.
const (
	myleoURL      = "https://myleo.de"
	crossfitURL   = "https://www.crossfit.com"
	greenBeachURL = "https://crossfitgreenbeach.com"
	linchpinURL   = "https://crossfitlinchpin.com"
	postalURL     = "https://www.crossfitpostal.com"
	wodconnectURL = "https://www.wodconnect.com"
	wodwellURL    = "https://wodwell.com"
)

// Source pairs a stable identifier with the fetcher that produces entries
// for it. The ID doubles as the source key in the workout store.
type Source struct {
	ID      string
	Name    string
	Fetcher scrape.Fetcher
}

// All builds the full registry of supported sources. The pool-backed
// sources share nothing with each other; each owns its loader.
func All(client *scrape.Client, logger *slog.Logger) []Source {
	heroes := scrape.NewHeroLoader(client, crossfitURL, logger)
	benchmarks := scrape.NewBenchmarkLoader(client, wodconnectURL, logger)
	open := scrape.NewOpenLoader(client, wodwellURL, logger)

	return []Source{
		{ID: "myleo", Name: "myleo CrossFit", Fetcher: scrape.NewMyleo(client, myleoURL)},
		{ID: "crossfit_com", Name: "CrossFit.com", Fetcher: scrape.NewCrossFitCom(client, crossfitURL)},
		{ID: "greenbeach", Name: "CrossFit Green Beach", Fetcher: scrape.NewGreenBeach(client, greenBeachURL)},
		{ID: "linchpin", Name: "CrossFit Linchpin", Fetcher: scrape.NewLinchpin(client, linchpinURL)},
		{ID: "postal", Name: "CrossFit Postal", Fetcher: scrape.NewPostal(client, postalURL)},
		{ID: "hero", Name: "CrossFit Hero Workouts", Fetcher: scrape.NewHeroSource(heroes)},
		{ID: "benchmark", Name: "CrossFit Benchmark Workouts",
			Fetcher: scrape.NewBenchmarkSource(benchmarks, wodconnectURL+"/workout_lists/benchmarks")},
		{ID: "open", Name: "CrossFit Open Workouts",
			Fetcher: scrape.NewOpenSource(open, wodwellURL+"/wods/tag/crossfit-games-open-workouts/")},
	}
}

// Config holds the per-source enable flags read from the YAML overrides
// file. Sources absent from the file stay enabled.
type Config struct {
	Sources map[string]bool `yaml:"sources"`
}

// LoadConfig reads the overrides file. A missing file means no overrides.
func LoadConfig(path string, logger *slog.Logger) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no source overrides file", slog.String("path", path))
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "read source overrides", slog.String("path", path))
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse source overrides", slog.String("path", path))
	}
	return cfg, nil
}

// Enabled reports whether the source with the given ID should run.
func (c Config) Enabled(id string) bool {
	enabled, ok := c.Sources[id]
	if !ok {
		return true
	}
	return enabled
}

// Filter drops the sources the config disables.
func Filter(all []Source, cfg Config, logger *slog.Logger) []Source {
	var kept []Source
	for _, src := range all {
		if !cfg.Enabled(src.ID) {
			logger.Info("source disabled", slog.String("source", src.ID))
			continue
		}
		kept = append(kept, src)
	}
	return kept
}
