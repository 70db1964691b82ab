package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/duckwod/internal/testhelpers"
	"github.com/myrjola/duckwod/internal/wod"
)

const heroFixture = `<html><body>
<h3>Murph</h3>
<p>For time:</p>
<p>1 mile run</p>
<p>100 pull-ups</p>
<p>200 push-ups</p>
<p>300 squats</p>
<p>1 mile run</p>
<p>In memory of Navy Lieutenant Michael Murphy, killed in action in Afghanistan</p>
<h3>Michael</h3>
<p>3 rounds for time of:</p>
<p>800 meter run</p>
<p>50 back extensions</p>
<p>50 sit-ups</p>
<p>Share this workout</p>
</body></html>`

func TestHeroLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/heroes" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(heroFixture))
	}))
	t.Cleanup(srv.Close)

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	loader := NewHeroLoader(newTestClient(t), srv.URL, logger)

	want := wod.Pool{
		{Name: "Murph", Lines: []string{
			"For time:", "1 mile run", "100 pull-ups", "200 push-ups", "300 squats", "1 mile run",
		}},
		{Name: "Michael", Lines: []string{
			"3 rounds for time of:", "800 meter run", "50 back extensions", "50 sit-ups",
		}},
	}
	if diff := cmp.Diff(want, loader.Pool(context.Background())); diff != "" {
		t.Errorf("hero pool mismatch (-want +got):\n%s", diff)
	}
}

func TestBenchmarkLoaderMultiPage(t *testing.T) {
	pageOne := `<html><body>
<p>Sign up for WODconnect</p>
<h4>FRAN Workout - Benchmark</h4>
<p>21-15-9 reps for time of</p>
<p>Thrusters 95 lb</p>
<p>Pull-ups</p>
<h4>GRACE Workout - Benchmark</h4>
<p>For time</p>
<p>30 clean and jerks 135 lb</p>
</body></html>`
	pageTwo := `<html><body>
<h4>HELEN Workout - Benchmark</h4>
<p>3 rounds for time of</p>
<p>400 meter run</p>
<p>21 kettlebell swings</p>
<p>12 pull-ups</p>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workout_lists/benchmarks" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(pageOne))
		case "2":
			_, _ = w.Write([]byte(pageTwo))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	loader := NewBenchmarkLoader(newTestClient(t), srv.URL, logger)

	want := wod.Pool{
		{Name: "FRAN", Lines: []string{"21-15-9 reps for time of", "Thrusters 95 lb", "Pull-ups"}},
		{Name: "GRACE", Lines: []string{"For time", "30 clean and jerks 135 lb"}},
		{Name: "HELEN", Lines: []string{"3 rounds for time of", "400 meter run", "21 kettlebell swings", "12 pull-ups"}},
	}
	if diff := cmp.Diff(want, loader.Pool(context.Background())); diff != "" {
		t.Errorf("benchmark pool mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenLoader(t *testing.T) {
	page := `<html><body>
<div class="wod-card">
<h3>Open 24.1</h3>
<p>For time:</p>
<p>21 dumbbell snatches, arm 1</p>
<p>21 lateral burpees over dumbbell</p>
<p>♀ 35 lb ♂ 50 lb</p>
<p>Movement standards apply</p>
</div>
<div class="wod-card">
<h3>Open 24.1</h3>
<p>For time:</p>
<p>21 dumbbell snatches, arm 1</p>
<p>21 lateral burpees over dumbbell</p>
</div>
<div class="wod-card">
<h3>Open 23.2</h3>
<p>AMRAP 15</p>
<p>5 burpee pull-ups</p>
<p>10 shuttle runs</p>
</div>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wods/tag/crossfit-games-open-workouts/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	loader := NewOpenLoader(newTestClient(t), srv.URL, logger)

	want := wod.Pool{
		{Name: "Open 24.1", Lines: []string{
			"For time:", "21 dumbbell snatches, arm 1", "21 lateral burpees over dumbbell", "*♀ 35 lb ♂ 50 lb*",
		}},
		{Name: "Open 23.2", Lines: []string{
			"AMRAP 15", "5 burpee pull-ups", "10 shuttle runs",
		}},
	}
	if diff := cmp.Diff(want, loader.Pool(context.Background())); diff != "" {
		t.Errorf("open pool mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderCachesScrape(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(heroFixture))
	}))
	t.Cleanup(srv.Close)

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	loader := NewHeroLoader(newTestClient(t), srv.URL, logger)

	ctx := context.Background()
	first := loader.Pool(ctx)
	second := loader.Pool(ctx)

	if got := requests.Load(); got != 1 {
		t.Errorf("loader made %d requests over two Pool calls, want 1", got)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached pool changed between calls (-first +second):\n%s", diff)
	}
}

func TestLoaderCachesFailure(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	loader := NewHeroLoader(newTestClient(t), srv.URL, logger)

	ctx := context.Background()
	if pool := loader.Pool(ctx); len(pool) != 0 {
		t.Errorf("Pool after failed scrape has %d items, want 0", len(pool))
	}
	if pool := loader.Pool(ctx); len(pool) != 0 {
		t.Errorf("Pool on second call has %d items, want 0", len(pool))
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("failed loader made %d requests, want 1", got)
	}
}
