// Package layout maps the cells of a results-table row onto record fields.
//
// Results pages mix several column orders. Each known order is a Layout; the
// Resolver tries them in priority order and the first one that applies wins.
// Rows no layout accepts are reported as unresolved and skipped by callers.
package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/club-fixtures/internal/match"
	"github.com/pfrederiksen/club-fixtures/internal/normalize"
)

// Layout detects and maps one column order
type Layout interface {
	// Name identifies the layout in logs and tests
	Name() string
	// Resolve returns the mapped record, or false when the layout does not apply
	Resolve(cells []string) (match.Record, bool)
}

var (
	versusMarker = regexp.MustCompile(`(?i)(^|\s)vs\.?(\s|$)`)
	spacedDash   = regexp.MustCompile(`\s+[-–]\s+`)
	spacedVersus = regexp.MustCompile(`(?i)\s+vs\.?\s+`)
	scoreShaped  = regexp.MustCompile(`^[\d\s]*[-–][\d\s\-–]*$`)
)

// Resolver tries each Layout in order
type Resolver struct {
	layouts []Layout
}

// NewResolver returns a Resolver with the known layouts ranked by priority.
// organization is substituted for the missing side of rows that hit the
// swapped-score defect.
func NewResolver(organization string) *Resolver {
	return &Resolver{
		layouts: []Layout{
			DateFirst{},
			SwappedScore{Organization: organization},
			PairingFirst{},
		},
	}
}

// NewResolverWith returns a Resolver using the given layouts in order
func NewResolverWith(layouts ...Layout) *Resolver {
	return &Resolver{layouts: layouts}
}

// Resolve normalizes the cells once and returns the record produced by the
// first applicable layout along with that layout's name.
func (r *Resolver) Resolve(rawCells []string) (match.Record, string, bool) {
	cells := make([]string, len(rawCells))
	for i, c := range rawCells {
		cells[i] = normalize.Text(c)
	}

	for _, l := range r.layouts {
		rec, ok := l.Resolve(cells)
		if !ok || rec.Empty() {
			continue
		}
		return rec, l.Name(), true
	}
	return match.Record{}, "", false
}

// DateFirst handles rows shaped: date | home | away | score | [venue]
type DateFirst struct{}

func (DateFirst) Name() string { return "date-first" }

func (DateFirst) Resolve(cells []string) (match.Record, bool) {
	if len(cells) < 3 || !normalize.HasDate(cells[0]) {
		return match.Record{}, false
	}
	return match.Record{
		DateText: normalize.ExtractDate(cells[0]),
		HomeTeam: cells[1],
		AwayTeam: cells[2],
		Score:    ScoreOrStatus(cell(cells, 3), ""),
		Venue:    cell(cells, 4),
	}, true
}

// SwappedScore handles an upstream defect of the date-first order where the
// score lands in column 0 and the date in column 2:
// score | home | date | venue | [status]. The missing side is the
// tracked organization.
type SwappedScore struct {
	Organization string
}

func (SwappedScore) Name() string { return "swapped-score" }

func (l SwappedScore) Resolve(cells []string) (match.Record, bool) {
	if len(cells) < 4 || normalize.HasDate(cells[0]) || !normalize.HasDate(cells[2]) {
		return match.Record{}, false
	}
	if !scoreShaped.MatchString(cells[0]) {
		return match.Record{}, false
	}
	status := cell(cells, 4)
	return match.Record{
		DateText: normalize.ExtractDate(cells[2]),
		HomeTeam: cells[1],
		AwayTeam: l.Organization,
		Score:    ScoreOrStatus(cells[0], status),
		Venue:    cells[3],
		Status:   status,
	}, true
}

// PairingFirst handles rows shaped: "home - away" | score | date | venue | [status].
// An empty or date-less date cell triggers a lookahead for the first later
// cell carrying a date.
type PairingFirst struct{}

func (PairingFirst) Name() string { return "pairing-first" }

func (PairingFirst) Resolve(cells []string) (match.Record, bool) {
	if len(cells) < 4 || !isPairing(cells[0]) {
		return match.Record{}, false
	}

	home, away := SplitTeams(cells[0])

	dateText := cells[2]
	rest := cells[3:]
	if normalize.HasDate(dateText) {
		dateText = normalize.ExtractDate(dateText)
	} else {
		for i, c := range rest {
			if normalize.HasDate(c) {
				dateText = normalize.ExtractDate(c)
				rest = append(append([]string{}, rest[:i]...), rest[i+1:]...)
				break
			}
		}
	}

	status := cell(rest, 1)
	return match.Record{
		DateText: dateText,
		HomeTeam: home,
		AwayTeam: away,
		Score:    ScoreOrStatus(cells[1], status),
		Venue:    cell(rest, 0),
		Status:   status,
	}, true
}

// SplitTeams separates a combined pairing cell. It splits on the first dash
// surrounded by spaces, then on a "vs" marker, then on a bare dash; otherwise
// the whole cell is the home side.
func SplitTeams(s string) (home, away string) {
	s = normalize.StripVersus(strings.TrimSpace(s))
	if loc := spacedDash.FindStringIndex(s); loc != nil {
		return trimSide(s[:loc[0]]), trimSide(s[loc[1]:])
	}
	if loc := spacedVersus.FindStringIndex(s); loc != nil {
		return trimSide(s[:loc[0]]), trimSide(s[loc[1]:])
	}
	if i := strings.IndexAny(s, "-–"); i >= 0 {
		_, width := utf8.DecodeRuneInString(s[i:])
		return trimSide(s[:i]), trimSide(s[i+width:])
	}
	return s, ""
}

func trimSide(s string) string {
	return normalize.StripVersus(strings.TrimSpace(s))
}

func isPairing(s string) bool {
	if normalize.IsScore(s) {
		return false
	}
	return strings.ContainsAny(s, "-–") || versusMarker.MatchString(s)
}

// ScoreOrStatus resolves the score column: a numeric score wins, then an
// upper-cased result token, then an upper-cased status column value.
func ScoreOrStatus(scoreCell, status string) string {
	if s := normalize.Score(scoreCell); s != "" {
		return s
	}
	if scoreShaped.MatchString(scoreCell) {
		// "-" or "- -" placeholders mean no result yet
		scoreCell = ""
	}
	if scoreCell != "" {
		return normalize.StatusToken(scoreCell)
	}
	if status != "" {
		return normalize.StatusToken(status)
	}
	return ""
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
