// Package scrape fetches workout pages from the supported gym websites and
// extracts workout text from their fragile, site-specific HTML.
package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/duckwod/internal/errors"
)

// Some of the sites block default Go user agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// ErrBadStatus marks a non-200 response. Scrapers treat it as "no workout
// on this page" rather than a failure worth reporting.
var ErrBadStatus = errors.NewSentinel("unexpected HTTP status")

// Client is the HTTP client shared by all scrapers.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient constructs a scraping client with the given per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout:       timeout,
			Transport:     nil,
			CheckRedirect: nil,
			Jar:           nil,
		},
		logger: logger,
	}
}

// document fetches url and parses the response body into a goquery
// document. Non-200 responses return an error matching [ErrBadStatus].
func (c *Client) document(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request", slog.String("url", url))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch page", slog.String("url", url))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("close response body", errors.SlogError(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(ErrBadStatus, "fetch page",
			slog.String("url", url), slog.Int("status", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse html", slog.String("url", url))
	}
	return doc, nil
}
