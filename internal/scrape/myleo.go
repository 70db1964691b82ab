package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/wod"
)

// myleoSkipKeywords filters marketing and navigation lines that survive the
// content selectors.
var myleoSkipKeywords = []string{
	"weekly overview",
	"post your score",
	"compare to",
	"skill class",
}

// myleoSectionPattern matches the "a) Strength", "b) Metcon" headers myleo
// uses to structure its daily post.
var myleoSectionPattern = regexp.MustCompile(`(?i)^([a-z])\)\s*(.+)`)

// Myleo scrapes the per-date workout archive of myleo CrossFit.
type Myleo struct {
	client  *Client
	baseURL string
}

// NewMyleo constructs the myleo scraper. baseURL is the site root without a
// trailing slash, e.g. "https://myleo.de".
func NewMyleo(client *Client, baseURL string) *Myleo {
	return &Myleo{client: client, baseURL: baseURL}
}

// Fetch retrieves and parses the workout post for the given date.
func (m *Myleo) Fetch(ctx context.Context, date time.Time) (*wod.Entry, error) {
	dateStr := wod.FormatDate(date)
	url := fmt.Sprintf("%s/en/wods/%s/", m.baseURL, dateStr)

	doc, err := m.client.document(ctx, url)
	if err != nil {
		if errors.Is(err, ErrBadStatus) {
			// No post for this date.
			return nil, nil
		}
		return nil, errors.Wrap(err, "fetch myleo")
	}

	stripNoise(doc, "script, style, nav, footer, header, img, figure")

	article := doc.Find("article.post").First()
	if article.Length() == 0 {
		return nil, nil
	}
	article.Find(".post-navigation, .comments, .meta, .tags, .share").Remove()

	content := article.Find("div.entry-content").First()
	if content.Length() == 0 {
		return nil, nil
	}

	sections := parseMyleoSections(textLines(content))
	if len(sections) == 0 {
		return nil, nil
	}

	return &wod.Entry{
		Date:       dateStr,
		Source:     "myleo",
		SourceName: "myleo CrossFit",
		URL:        url,
		Note:       "",
		Sections:   sections,
	}, nil
}

// parseMyleoSections splits the post lines into sections on the lettered
// headers. Lines before the first header open an implicit WORKOUT section.
func parseMyleoSections(lines []string) []wod.Section {
	var (
		sections []wod.Section
		current  *wod.Section
	)

	for _, line := range lines {
		if len(line) < 2 || containsAny(line, myleoSkipKeywords) {
			continue
		}

		if match := myleoSectionPattern.FindStringSubmatch(line); match != nil {
			if current != nil && len(current.Lines) > 0 {
				sections = append(sections, *current)
			}
			current = &wod.Section{Title: strings.ToUpper(strings.TrimSpace(match[2])), Lines: nil}
			continue
		}

		if current != nil {
			current.Lines = append(current.Lines, line)
		} else if len(sections) == 0 {
			current = &wod.Section{Title: "WORKOUT", Lines: []string{line}}
		}
	}

	if current != nil && len(current.Lines) > 0 {
		sections = append(sections, *current)
	}
	return sections
}
