package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/myrjola/duckwod/internal/errors"
	"github.com/myrjola/duckwod/internal/wod"
)

// The main-site workout post continues with coaching notes after the
// workout itself; everything from these headers on is cut.
var crossfitStopKeywords = []string{
	"stimulus",
	"scaling",
	"intermediate option",
	"beginner option",
	"resources",
}

var crossfitSkipKeywords = []string{
	"find a gym",
	"crossfit games",
	"subscribe",
	"sign up",
}

const (
	crossfitMaxLines        = 50
	crossfitMaxHeaderLength = 40
)

// CrossFitCom scrapes the official crossfit.com workout archive, which
// serves each day under a /YYMMDD path.
type CrossFitCom struct {
	client  *Client
	baseURL string
}

// NewCrossFitCom constructs the crossfit.com scraper.
func NewCrossFitCom(client *Client, baseURL string) *CrossFitCom {
	return &CrossFitCom{client: client, baseURL: baseURL}
}

// Fetch retrieves and parses the workout of the day for the given date.
func (c *CrossFitCom) Fetch(ctx context.Context, date time.Time) (*wod.Entry, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, date.Format("060102"))

	doc, err := c.client.document(ctx, url)
	if err != nil {
		if errors.Is(err, ErrBadStatus) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "fetch crossfit.com")
	}

	stripNoise(doc, "script, style, nav, footer, header, img")

	article := doc.Find("article").First()
	if article.Length() == 0 {
		return nil, nil
	}

	lines := cutAtStopKeywords(textLines(article))
	sections := parseCrossFitSections(lines)
	if len(sections) == 0 {
		return nil, nil
	}

	return &wod.Entry{
		Date:       wod.FormatDate(date),
		Source:     "crossfit_com",
		SourceName: "CrossFit.com",
		URL:        url,
		Note:       "",
		Sections:   sections,
	}, nil
}

// cutAtStopKeywords keeps lines up to the first coaching-note header,
// dropping navigation junk along the way.
func cutAtStopKeywords(lines []string) []string {
	var kept []string
	for _, line := range lines {
		if containsAny(line, crossfitStopKeywords) {
			break
		}
		if containsAny(line, crossfitSkipKeywords) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// parseCrossFitSections splits the article lines into sections on short
// "Title:" header lines.
func parseCrossFitSections(lines []string) []wod.Section {
	var sections []wod.Section
	current := wod.Section{Title: "WORKOUT", Lines: nil}

	for _, line := range capLines(lines, crossfitMaxLines) {
		if strings.Contains(line, ":") && len(line) < crossfitMaxHeaderLength {
			if len(current.Lines) > 0 {
				sections = append(sections, current)
			}
			current = wod.Section{Title: strings.ToUpper(strings.Trim(line, ":")), Lines: nil}
			continue
		}
		current.Lines = append(current.Lines, line)
	}

	if len(current.Lines) > 0 {
		sections = append(sections, current)
	}
	return sections
}
