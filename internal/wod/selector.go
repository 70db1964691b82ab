package wod

import (
	"crypto/md5" //nolint:gosec // stable digest for selection, not security
	"encoding/binary"
	"time"

	"github.com/myrjola/duckwod/internal/errors"
)

// ErrEmptyPool is returned when selection is attempted on an empty pool.
// Callers treat it as "no workout available" and skip the source.
var ErrEmptyPool = errors.NewSentinel("pool has no items")

// Selection is the result of picking a pool item for a date.
type Selection struct {
	Index int
	Item  PoolItem
}

// Select deterministically picks one item from the pool for the given date.
//
// The item is chosen so that it differs from the base picks of the
// preceding 14 calendar days: each of those dates hashes to an excluded
// index, and selection probes forward from the target date's own index
// until it clears the exclusion set. When the pool is too small for 14
// unique picks the exclusion is best-effort and the base index is used.
//
// Select is a pure function of (pool, date): same inputs give the same
// item across calls and across process restarts, so re-running a pass
// never appears to rewrite history.
func Select(pool Pool, date time.Time) (Selection, error) {
	if len(pool) == 0 {
		return Selection{}, ErrEmptyPool
	}

	base := int(dateHash(date) % uint64(len(pool)))
	excluded := excludedIndices(date, len(pool))

	for attempt := 0; attempt < len(pool); attempt++ {
		idx := (base + attempt) % len(pool)
		if !excluded[idx] {
			return Selection{Index: idx, Item: pool[idx]}, nil
		}
	}

	// Every index is hit by the trailing window; repeating is unavoidable.
	return Selection{Index: base, Item: pool[base]}, nil
}

// excludedIndices hashes each of the 14 preceding dates to its pool index.
func excludedIndices(date time.Time, poolSize int) map[int]bool {
	excluded := make(map[int]bool, WindowDays)
	for daysAgo := 1; daysAgo <= WindowDays; daysAgo++ {
		past := date.AddDate(0, 0, -daysAgo)
		excluded[int(dateHash(past)%uint64(poolSize))] = true
	}
	return excluded
}

// dateHash maps an ISO date string to a uniformly distributed uint64: the
// first eight bytes of the MD5 digest of the date string, big-endian. MD5
// is used purely as a stable, well-distributed digest; the determinism
// contract requires the same algorithm across runs, not collision
// resistance.
func dateHash(date time.Time) uint64 {
	sum := md5.Sum([]byte(date.Format(DateFormat))) //nolint:gosec // see above
	return binary.BigEndian.Uint64(sum[:8])
}
