package wod

import (
	"testing"
	"time"

	"github.com/myrjola/duckwod/internal/errors"
)

func date(s string) time.Time {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

// fifteenItemPool returns a pool large enough that the 14-day exclusion
// window can never cover every index.
func fifteenItemPool() Pool {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O"}
	pool := make(Pool, 0, len(names))
	for _, name := range names {
		pool = append(pool, PoolItem{Name: name, Lines: []string{"21-15-9", "Thrusters", "Pull-ups"}})
	}
	return pool
}

// TestDateHashStable pins the hash algorithm: the first eight bytes of the
// MD5 digest of the ISO date string, big-endian. Selection fixtures below
// depend on these exact values.
func TestDateHashStable(t *testing.T) {
	tests := []struct {
		date string
		want uint64
	}{
		{date: "2026-02-20", want: 15045501296447862002},
		{date: "2026-02-19", want: 4320824040508516790},
		{date: "2026-02-06", want: 5712379538769935796},
		{date: "2026-02-07", want: 14249474844451656279},
	}
	for _, tt := range tests {
		if got := dateHash(date(tt.date)); got != tt.want {
			t.Errorf("dateHash(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

// TestSelectFixtures pins the full algorithm against precomputed indices
// for a 15-item pool: base index, exclusion set, and forward probing.
func TestSelectFixtures(t *testing.T) {
	pool := fifteenItemPool()

	tests := []struct {
		name      string
		date      string
		wantIndex int
	}{
		// Base index 2 is not excluded, no probing needed.
		{name: "base index free", date: "2026-02-20", wantIndex: 2},
		// Base index 0 is excluded, one probe step.
		{name: "single probe step", date: "2026-02-13", wantIndex: 1},
		// Base index 5 is excluded along with 6..10, probing lands on 11.
		{name: "multi-step probe", date: "2026-01-30", wantIndex: 11},
		// Base index 13 is excluded and probing wraps past the end.
		{name: "probe wraps around", date: "2026-01-27", wantIndex: 0},
		// Base index 12 probes through 13, 14, 0, 1, 2 before landing on 3.
		{name: "long wrap", date: "2026-02-10", wantIndex: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Select(pool, date(tt.date))
			if err != nil {
				t.Fatalf("Select returned unexpected error: %v", err)
			}
			if sel.Index != tt.wantIndex {
				t.Errorf("Select(%s) index = %d, want %d", tt.date, sel.Index, tt.wantIndex)
			}
			if sel.Item.Name != pool[tt.wantIndex].Name {
				t.Errorf("Select(%s) item = %s, want %s", tt.date, sel.Item.Name, pool[tt.wantIndex].Name)
			}
		})
	}
}

// TestSelectDeterministic verifies that repeated calls with the same pool
// and date always return the same item.
func TestSelectDeterministic(t *testing.T) {
	pool := fifteenItemPool()
	day := date("2026-01-01")

	for i := range 60 {
		d := day.AddDate(0, 0, i)
		first, err := Select(pool, d)
		if err != nil {
			t.Fatalf("Select returned unexpected error: %v", err)
		}
		second, err := Select(pool, d)
		if err != nil {
			t.Fatalf("Select returned unexpected error: %v", err)
		}
		if first.Index != second.Index {
			t.Errorf("Select(%s) not deterministic: %d != %d", FormatDate(d), first.Index, second.Index)
		}
	}
}

// TestSelectAvoidsExclusionWindow verifies the non-repetition guarantee for
// pools with at least 15 items: the selected index never collides with the
// base index of any of the 14 preceding dates.
func TestSelectAvoidsExclusionWindow(t *testing.T) {
	pool := fifteenItemPool()
	day := date("2026-01-01")

	for i := range 365 {
		d := day.AddDate(0, 0, i)
		sel, err := Select(pool, d)
		if err != nil {
			t.Fatalf("Select returned unexpected error: %v", err)
		}
		if excludedIndices(d, len(pool))[sel.Index] {
			t.Errorf("Select(%s) returned excluded index %d", FormatDate(d), sel.Index)
		}
	}
}

// TestSelectSingleItemPool verifies graceful degradation: a one-item pool
// always yields that item regardless of the exclusion window.
func TestSelectSingleItemPool(t *testing.T) {
	pool := Pool{{Name: "Murph", Lines: []string{"1 mile run", "100 pull-ups"}}}
	day := date("2026-02-01")

	for i := range 30 {
		sel, err := Select(pool, day.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("Select returned unexpected error: %v", err)
		}
		if sel.Index != 0 {
			t.Errorf("Select on single-item pool returned index %d, want 0", sel.Index)
		}
	}
}

func TestSelectEmptyPool(t *testing.T) {
	_, err := Select(nil, date("2026-02-20"))
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Select on empty pool: err = %v, want ErrEmptyPool", err)
	}
}

// TestSelectSmallPoolFallsBack verifies the best-effort escape hatch: when
// the trailing window excludes every index, Select returns the base index
// instead of failing.
func TestSelectSmallPoolFallsBack(t *testing.T) {
	pool := Pool{
		{Name: "Fran", Lines: []string{"21-15-9", "Thrusters", "Pull-ups"}},
		{Name: "Grace", Lines: []string{"30 clean and jerks", "135/95 lb"}},
		{Name: "Helen", Lines: []string{"3 rounds", "400 m run"}},
	}
	target := date("2026-02-20")

	// Precondition for the fixture: all three indices are excluded.
	excluded := excludedIndices(target, len(pool))
	for idx := range pool {
		if !excluded[idx] {
			t.Fatalf("fixture invalid: index %d not excluded", idx)
		}
	}

	sel, err := Select(pool, target)
	if err != nil {
		t.Fatalf("Select returned unexpected error: %v", err)
	}
	if want := int(dateHash(target) % uint64(len(pool))); sel.Index != want {
		t.Errorf("Select fallback index = %d, want base index %d", sel.Index, want)
	}
	if sel.Index != 2 {
		t.Errorf("Select fallback index = %d, want 2", sel.Index)
	}
}
