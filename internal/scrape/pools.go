package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/wod"
)

// A pool item needs at least this many body lines to count as a workout
// rather than stray navigation text.
const minPoolItemLines = 2

// Loader scrapes a candidate pool from a listing page once per process and
// caches the result for its lifetime. A failed scrape caches an empty pool;
// selection rejects it and the source is skipped for the run.
type Loader struct {
	name   string
	scrape func(ctx context.Context) (wod.Pool, error)
	logger *slog.Logger

	once sync.Once
	pool wod.Pool
}

// Pool returns the cached pool, scraping it on first use.
func (l *Loader) Pool(ctx context.Context) wod.Pool {
	l.once.Do(func() {
		pool, err := l.scrape(ctx)
		if err != nil {
			l.logger.Warn("pool scrape failed", slog.String("pool", l.name), errors.SlogError(err))
			return
		}
		l.logger.Info("pool loaded", slog.String("pool", l.name), slog.Int("items", len(pool)))
		l.pool = pool
	})
	return l.pool
}

// ---- Hero workouts (crossfit.com/heroes) ----

var (
	heroSkipKeywords = []string{
		"newsletter", "facebook", "instagram", "find a gym",
		"privacy", "copyright", "crossfit games", "skip to",
	}
	heroStopKeywords     = []string{"share this", "posted by", "learn more about"}
	heroMemorialKeywords = []string{"fallen", "killed in action"}
)

const (
	heroMaxLines      = 15
	heroMaxNameLength = 25
)

// NewHeroLoader constructs the loader for the hero workout listing.
func NewHeroLoader(client *Client, baseURL string, logger *slog.Logger) *Loader {
	return &Loader{
		name:   "heroes",
		logger: logger,
		scrape: func(ctx context.Context) (wod.Pool, error) {
			doc, err := client.document(ctx, baseURL+"/heroes")
			if err != nil {
				return nil, errors.Wrap(err, "fetch hero listing")
			}
			stripNoise(doc, "script, style, img, picture")
			return parseHeroes(textLines(doc.Selection)), nil
		},
	}
}

// parseHeroes walks the flattened page text pairing short title lines with
// the workout lines that follow them.
func parseHeroes(lines []string) wod.Pool {
	var pool wod.Pool
	i := 0
	for i < len(lines) {
		line := lines[i]
		if containsAny(line, heroSkipKeywords) || !isHeroName(line) {
			i++
			continue
		}

		name := line
		var body []string
		i++
		for i < len(lines) {
			next := lines[i]
			if isHeroName(next) || containsAny(next, heroStopKeywords) ||
				containsAny(next, heroMemorialKeywords) {
				break
			}
			body = append(body, next)
			i++
			if len(body) >= heroMaxLines {
				break
			}
		}

		if len(body) >= minPoolItemLines {
			pool = append(pool, wod.PoolItem{Name: name, Lines: body})
		}
	}
	return pool
}

// isHeroName matches the listing's workout titles: short, no colon, and not
// running text in all lowercase.
func isHeroName(line string) bool {
	return len(line) > 2 && len(line) < heroMaxNameLength &&
		!strings.Contains(line, ":") && !isAllLower(line)
}

// ---- Benchmark workouts (wodconnect listing) ----

var (
	benchmarkSkipKeywords = []string{
		"wodconnect", "sign up", "log in", "privacy", "terms",
		"download", "blog", "athletes", "coaches", "gyms",
		"programs", "kisko labs", "crossfit ®", "resources",
		"prev", "next", "fill in your details",
	}
	benchmarkStopKeywords = []string{
		"resources", "scaling options", "intermediate:",
		"beginner:", "time cap", "please run the same",
	}
	benchmarkSuffixPattern  = regexp.MustCompile(`(?i)\s*[-–]\s*benchmark.*`)
	benchmarkWorkoutPattern = regexp.MustCompile(`(?i)\s*workout.*`)
)

const (
	benchmarkMaxLines      = 25
	benchmarkMaxNameLength = 30
	benchmarkMinNameLength = 3
	benchmarkMaxNameWords  = 4
	benchmarkListingPages  = 4
)

// NewBenchmarkLoader constructs the loader for the benchmark workout
// listing, which spreads its entries over several pages.
func NewBenchmarkLoader(client *Client, baseURL string, logger *slog.Logger) *Loader {
	return &Loader{
		name:   "benchmarks",
		logger: logger,
		scrape: func(ctx context.Context) (wod.Pool, error) {
			var pool wod.Pool
			for page := 1; page <= benchmarkListingPages; page++ {
				url := baseURL + "/workout_lists/benchmarks"
				if page > 1 {
					url = fmt.Sprintf("%s?page=%d", url, page)
				}
				doc, err := client.document(ctx, url)
				if err != nil {
					// Missing pages are expected as the listing shrinks.
					logger.Debug("benchmark page unavailable",
						slog.Int("page", page), errors.SlogError(err))
					continue
				}
				stripNoise(doc, "script, style, img, picture, video, iframe")
				pool = append(pool, parseBenchmarks(textLines(doc.Selection))...)
			}
			return pool, nil
		},
	}
}

// parseBenchmarks pairs title lines with workout bodies in the flattened
// listing text.
func parseBenchmarks(lines []string) wod.Pool {
	var pool wod.Pool
	i := 0
	for i < len(lines) {
		line := lines[i]
		if containsAny(line, benchmarkSkipKeywords) || !isBenchmarkName(line) {
			i++
			continue
		}

		name := cleanBenchmarkName(line)
		var body []string
		i++
		for i < len(lines) {
			next := lines[i]
			if isBenchmarkName(next) || containsAny(next, benchmarkStopKeywords) {
				break
			}
			if len(next) < benchmarkMinNameLength {
				i++
				continue
			}
			body = append(body, next)
			i++
			if len(body) >= benchmarkMaxLines {
				break
			}
		}

		if len(body) >= minPoolItemLines && len(name) >= benchmarkMinNameLength {
			pool = append(pool, wod.PoolItem{Name: name, Lines: capLines(body, benchmarkMaxLines)})
		}
	}
	return pool
}

// isBenchmarkName matches listing titles like `"ANNIE" Workout - Benchmark`.
// The name itself may be wrapped in quotes.
func isBenchmarkName(line string) bool {
	return len(line) > 0 && len(line) < benchmarkMaxNameLength &&
		startsUpper(strings.TrimLeft(line, `"`)) &&
		strings.Contains(strings.ToLower(line), "workout") &&
		len(strings.Fields(line)) <= benchmarkMaxNameWords
}

// cleanBenchmarkName strips the listing decorations around the bare name.
func cleanBenchmarkName(line string) string {
	name := benchmarkSuffixPattern.ReplaceAllString(line, "")
	name = benchmarkWorkoutPattern.ReplaceAllString(name, "")
	return strings.Trim(name, ` "`)
}

// ---- Open workouts (wodwell tag listing) ----

var (
	openTitlePattern  = regexp.MustCompile(`(?i)(open\s+)?\d{2}[.\s]\d`)
	openWeightPattern = regexp.MustCompile(`[♀♂].*\d+\s*(lb|kg)`)
	openStopKeywords  = []string{
		"movement standards", "time cap", "explanation", "learn more",
		"video", "athlete performs", "score by", "leaderboard",
	}
)

const (
	openMaxLines         = 25
	openMaxLineLength    = 120
	openMaxContainers    = 50
	openMinContainerText = 50
)

// NewOpenLoader constructs the loader for the CrossFit Open workout
// listing.
func NewOpenLoader(client *Client, baseURL string, logger *slog.Logger) *Loader {
	return &Loader{
		name:   "open",
		logger: logger,
		scrape: func(ctx context.Context) (wod.Pool, error) {
			url := baseURL + "/wods/tag/crossfit-games-open-workouts/?sort=newest"
			doc, err := client.document(ctx, url)
			if err != nil {
				return nil, errors.Wrap(err, "fetch open listing")
			}
			stripNoise(doc, "script, style, img, picture, video, iframe")
			return parseOpenWorkouts(doc), nil
		},
	}
}

// parseOpenWorkouts finds workout containers by their "24.1"-style titles
// and extracts one pool item per container, deduplicated by name.
func parseOpenWorkouts(doc *goquery.Document) wod.Pool {
	containers := findOpenContainers(doc)

	var pool wod.Pool
	seen := make(map[string]bool)
	for _, container := range containers {
		item, ok := parseOpenContainer(container)
		if !ok {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(item.Name), " ", "")
		if seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, item)
	}
	return pool
}

// findOpenContainers prefers headers carrying the Open title pattern and
// falls back to scanning generic content blocks.
func findOpenContainers(doc *goquery.Document) []*goquery.Selection {
	var containers []*goquery.Selection

	doc.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		if openTitlePattern.MatchString(strings.TrimSpace(s.Text())) {
			containers = append(containers, s.Parent())
		}
	})

	if len(containers) == 0 {
		doc.Find("div, article, section").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if openTitlePattern.MatchString(text) && len(text) > openMinContainerText {
				containers = append(containers, s)
			}
		})
	}

	if len(containers) > openMaxContainers {
		containers = containers[:openMaxContainers]
	}
	return containers
}

// parseOpenContainer extracts the title line and workout body from one
// container.
func parseOpenContainer(container *goquery.Selection) (wod.PoolItem, bool) {
	lines := textLines(container)
	if len(lines) < 3 {
		return wod.PoolItem{}, false
	}

	titleIdx := -1
	for i, line := range lines {
		if openTitlePattern.MatchString(line) {
			titleIdx = i
			break
		}
	}
	if titleIdx == -1 {
		return wod.PoolItem{}, false
	}

	var body []string
	for _, line := range lines[titleIdx+1:] {
		if containsAny(line, openStopKeywords) {
			break
		}
		if len(line) > openMaxLineLength {
			continue
		}
		// Keep the gender weight standards but set them off as a note.
		if openWeightPattern.MatchString(line) {
			line = "*" + line + "*"
		}
		body = append(body, line)
		if len(body) >= openMaxLines {
			break
		}
	}

	if len(body) < minPoolItemLines {
		return wod.PoolItem{}, false
	}
	return wod.PoolItem{Name: lines[titleIdx], Lines: body}, true
}

// ---- shared text predicates ----

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func isAllLower(s string) bool {
	return s == strings.ToLower(s) && s != strings.ToUpper(s)
}
