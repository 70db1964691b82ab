package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/duckwod/internal/wod"
)

const linchpinFixture = `<html><body>
<article>
<p>ab</p>
<p>For time:</p>
<p>50 wall balls</p>
<p>40 box jumps</p>
<p>Subscribe to our newsletter</p>
<p>30 push-ups</p>
</article>
</body></html>`

func TestDailySiteFetchToday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/blogs/wod" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(linchpinFixture))
	}))
	t.Cleanup(srv.Close)

	today := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	site := NewLinchpin(newTestClient(t), srv.URL)
	site.now = func() time.Time { return today }

	entry, err := site.Fetch(context.Background(), today)
	if err != nil {
		t.Fatalf("Fetch returned unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("Fetch returned nil entry for today's page")
	}

	want := &wod.Entry{
		Date:       "2026-02-20",
		Source:     "linchpin",
		SourceName: "CrossFit Linchpin",
		URL:        srv.URL + "/blogs/wod",
		Note:       "This source provides daily workouts only",
		Sections: []wod.Section{
			{Title: "WORKOUT", Lines: []string{"For time:", "50 wall balls", "40 box jumps"}},
		},
	}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("Fetch mismatch (-want +got):\n%s", diff)
	}
}

func TestDailySiteSkipsPastDates(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(linchpinFixture))
	}))
	t.Cleanup(srv.Close)

	today := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	site := NewLinchpin(newTestClient(t), srv.URL)
	site.now = func() time.Time { return today }

	entry, err := site.Fetch(context.Background(), today.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("Fetch returned unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("Fetch = %v, want nil for a past date", entry)
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("past-date fetch made %d requests, want 0", got)
	}
}

func TestDailySiteFallbackSelector(t *testing.T) {
	page := `<html><body>
<article>
<p>Home</p>
<p>AMRAP 20</p>
<p>5 pull-ups</p>
<p>10 push-ups</p>
<p>15 squats</p>
</article>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	today := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	site := NewGreenBeach(newTestClient(t), srv.URL)
	site.now = func() time.Time { return today }

	entry, err := site.Fetch(context.Background(), today)
	if err != nil {
		t.Fatalf("Fetch returned unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("Fetch returned nil entry, want fallback to article content")
	}

	wantLines := []string{"AMRAP 20", "5 pull-ups", "10 push-ups", "15 squats"}
	if diff := cmp.Diff(wantLines, entry.Sections[0].Lines); diff != "" {
		t.Errorf("fallback lines mismatch (-want +got):\n%s", diff)
	}
	if entry.Source != "greenbeach" {
		t.Errorf("Source = %q, want %q", entry.Source, "greenbeach")
	}
}

func TestDailySiteEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><div>No content here</div></body></html>"))
	}))
	t.Cleanup(srv.Close)

	today := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	site := NewPostal(newTestClient(t), srv.URL)
	site.now = func() time.Time { return today }

	entry, err := site.Fetch(context.Background(), today)
	if err != nil {
		t.Fatalf("Fetch returned unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("Fetch = %v, want nil when no content selector matches", entry)
	}
}
