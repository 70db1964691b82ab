package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// mojibake repairs UTF-8 text that was decoded as Latin-1 upstream. Some of
// the scraped sites serve workout descriptions with these artifacts. The
// bare "â" must come last so the longer sequences win.
var mojibake = strings.NewReplacer(
	"â", "–",
	"â", "—",
	"â", "'",
	"â", "“",
	"â", "”",
	"â¢", "•",
	"â", "♀",
	"â", "♂",
	"â", "",
)

// stripNoise removes elements matching the selector from the document,
// typically scripts, styles, navigation, and media.
func stripNoise(doc *goquery.Document, selector string) {
	doc.Find(selector).Remove()
}

// textLines flattens the selection into cleaned, non-empty text lines. Each
// HTML text node becomes its own line, mirroring how the sites visually
// separate workout movements.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	for _, node := range sel.Nodes {
		collectTextLines(node, &lines)
	}
	return lines
}

func collectTextLines(n *html.Node, lines *[]string) {
	if n.Type == html.TextNode {
		for _, part := range strings.Split(n.Data, "\n") {
			if line := cleanLine(part); line != "" {
				*lines = append(*lines, line)
			}
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTextLines(c, lines)
	}
}

// cleanLine trims whitespace and repairs encoding artifacts.
func cleanLine(line string) string {
	return mojibake.Replace(strings.TrimSpace(line))
}

// containsAny reports whether the lowercased line contains any of the
// keywords. All scraper skip/stop lists go through this.
func containsAny(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// capLines truncates lines to at most n entries.
func capLines(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
