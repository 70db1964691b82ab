// Package wod defines the workout data model shared by the scrapers, the
// pool selector, and the store, along with the deterministic selection of
// pool-backed workouts.
package wod

import (
	"time"

	"github.com/myrjola/duckwod/internal/errors"
)

// DateFormat is the ISO calendar date layout used for store keys, entry
// dates, and selection hashing.
const DateFormat = "2006-01-02"

// WindowDays is the length of the rolling window: the store keeps this many
// days of entries and the selector avoids repeats across it.
const WindowDays = 14

// ErrInvalidEntry marks an entry that carries no workout content.
var ErrInvalidEntry = errors.NewSentinel("entry has no workout content")

// Section is one titled block of workout text.
type Section struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Entry is one workout for one (date, source) pair.
type Entry struct {
	Date       string    `json:"date"`
	Source     string    `json:"source"`
	SourceName string    `json:"source_name"`
	URL        string    `json:"url,omitempty"`
	Note       string    `json:"note,omitempty"`
	Sections   []Section `json:"sections"`
}

// Valid reports whether the entry carries any workout content: at least one
// section with a non-empty line sequence. Entries failing this are treated
// as "no workout produced" and must not be stored.
func (e Entry) Valid() bool {
	for _, section := range e.Sections {
		if len(section.Lines) > 0 {
			return true
		}
	}
	return false
}

// PoolItem is an immutable named workout from a static pool, e.g. a single
// hero or benchmark workout scraped from a listing page.
type PoolItem struct {
	Name  string
	Lines []string
}

// Pool is an ordered sequence of pool items. Items are never mutated after
// loading and index order must stay stable within a run; that stability is
// what makes date-based selection deterministic.
type Pool []PoolItem

// FormatDate renders t as an ISO calendar date string.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}
