// Package store persists the rolling 14-day workout collection as a single
// JSON file keyed by calendar date.
package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/wod"
)

// Store holds at most one entry per (date, source) pair across a trailing
// 14-day window. Its lifecycle is linear: load, insert during a fetch pass,
// prune, save. It is not safe for concurrent mutation; the aggregator
// serializes inserts through a single collector.
type Store struct {
	workouts    map[string][]wod.Entry
	lastUpdated time.Time
	logger      *slog.Logger
}

// fileFormat is the persisted layout. It is the only wire contract the
// store honors for compatibility with existing data files.
type fileFormat struct {
	Workouts    map[string][]wod.Entry `json:"workouts"`
	LastUpdated string                 `json:"last_updated,omitempty"`
}

// New returns an empty store.
func New(logger *slog.Logger) *Store {
	return &Store{
		workouts:    make(map[string][]wod.Entry),
		lastUpdated: time.Time{},
		logger:      logger,
	}
}

// Load reads the store from path. A missing or corrupt file degrades to an
// empty store: load failures are logged, never surfaced, so a broken data
// file cannot abort a fetch pass.
func Load(path string, logger *slog.Logger) *Store {
	s := New(logger)

	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read data file, starting empty",
				slog.String("path", path), errors.SlogError(err))
		}
		return s
	}

	var ff fileFormat
	if err = json.Unmarshal(data, &ff); err != nil {
		logger.Warn("could not parse data file, starting empty",
			slog.String("path", path), errors.SlogError(err))
		return s
	}
	if ff.Workouts != nil {
		s.workouts = ff.Workouts
	}
	return s
}

// Save rewrites the full file at path, stamping last_updated with now even
// when no entries changed.
func (s *Store) Save(path string, now time.Time) error {
	s.lastUpdated = now
	ff := fileFormat{
		Workouts:    s.workouts,
		LastUpdated: now.Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal store")
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "create data dir", slog.String("path", path))
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "write data file", slog.String("path", path))
	}
	return nil
}

// HasEntry reports whether an entry from the given source is already stored
// for the given date.
func (s *Store) HasEntry(date, source string) bool {
	for _, entry := range s.workouts[date] {
		if entry.Source == source {
			return true
		}
	}
	return false
}

// Insert appends the entry to the date's sequence. Inserting a duplicate
// (date, source) silently no-ops rather than overwriting. Entries without
// workout content are rejected with [wod.ErrInvalidEntry] and never stored.
func (s *Store) Insert(date string, entry wod.Entry) error {
	if !entry.Valid() {
		return errors.Wrap(wod.ErrInvalidEntry, "insert entry",
			slog.String("date", date), slog.String("source", entry.Source))
	}
	if s.HasEntry(date, entry.Source) {
		return nil
	}
	s.workouts[date] = append(s.workouts[date], entry)
	return nil
}

// Prune deletes every date key that falls outside the trailing window:
// "keep the last 14 days" means dates strictly newer than 14 days before
// today, so the date exactly 14 days ago is dropped too.
func (s *Store) Prune(today time.Time) {
	cutoff := wod.FormatDate(today.AddDate(0, 0, -wod.WindowDays))
	for date := range s.workouts {
		if date <= cutoff {
			delete(s.workouts, date)
			s.logger.Debug("removed old date", slog.String("date", date))
		}
	}
}

// Entries returns the stored entries for a date in insertion order.
func (s *Store) Entries(date string) []wod.Entry {
	return s.workouts[date]
}

// Summary is a derived read-only view of the store used for reporting.
type Summary struct {
	TotalEntries    int
	DaysWithData    int
	PerSourceCounts map[string]int
}

// Summarize folds the current contents into counts.
func (s *Store) Summarize() Summary {
	summary := Summary{
		TotalEntries:    0,
		DaysWithData:    len(s.workouts),
		PerSourceCounts: make(map[string]int),
	}
	for _, entries := range s.workouts {
		summary.TotalEntries += len(entries)
		for _, entry := range entries {
			summary.PerSourceCounts[entry.Source]++
		}
	}
	return summary
}

// Dates returns the stored date keys in ascending order.
func (s *Store) Dates() []string {
	dates := make([]string, 0, len(s.workouts))
	for date := range s.workouts {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
