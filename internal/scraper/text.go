package scraper

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/pfrederiksen/club-fixtures/internal/classifier"
	"github.com/pfrederiksen/club-fixtures/internal/match"
	"github.com/pfrederiksen/club-fixtures/internal/normalize"
)

var (
	scriptOrStyle = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)>`)
	blockBreak    = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr|h[1-6]|table|section|article)>`)
	markupTag     = regexp.MustCompile(`<[^>]*>`)

	// "TEAM A - TEAM B", "TEAM A vs TEAM B"
	pairPattern = regexp.MustCompile(`(?i)([\p{L}\p{N}][\p{L}\p{N}.'&]*(?:\s+[\p{L}\p{N}.'&]+)*?)\s+(?:vs\.?|[-–])\s+([\p{L}\p{N}][\p{L}\p{N}.'&]*(?:\s+[\p{L}\p{N}.'&]+)*)`)
)

// TextScan walks the raw markup line by line. Lines the classifier accepts
// after tag stripping yield a record when they contain a team pairing; the
// first date on the line is kept. Records carry no score or venue.
func TextScan(c *classifier.Classifier) Strategy {
	return Strategy{
		Name: StrategyTextScan,
		Extract: func(_ context.Context, page *Page) ([]match.Record, error) {
			records := make([]match.Record, 0)
			for _, line := range TextLines(page.Markup) {
				if !c.Relevant(line) {
					continue
				}
				if rec, ok := recordFromLine(line); ok {
					records = append(records, rec)
				}
			}
			return match.Dedupe(records), nil
		},
	}
}

// TextLines strips scripts and tags from markup and returns its non-empty
// normalized lines. Block-level closing tags also end a line.
func TextLines(markup string) []string {
	markup = scriptOrStyle.ReplaceAllString(markup, "\n")
	markup = blockBreak.ReplaceAllString(markup, "\n")

	var lines []string
	for _, raw := range strings.Split(markup, "\n") {
		line := normalize.Text(html.UnescapeString(markupTag.ReplaceAllString(raw, " ")))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func recordFromLine(line string) (match.Record, bool) {
	date := normalize.ExtractDate(line)
	rest := line
	if date != "" {
		rest = normalize.Text(strings.Replace(line, date, " ", 1))
	}

	m := pairPattern.FindStringSubmatch(rest)
	if m == nil {
		return match.Record{}, false
	}

	return match.Record{
		DateText: date,
		HomeTeam: strings.TrimSpace(m[1]),
		AwayTeam: strings.TrimSpace(m[2]),
	}, true
}
