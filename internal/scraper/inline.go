package scraper

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/club-fixtures/internal/classifier"
	"github.com/pfrederiksen/club-fixtures/internal/layout"
	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/pfrederiksen/club-fixtures/internal/match"
	"github.com/pfrederiksen/club-fixtures/internal/normalize"
)

// Key aliases accepted for each record field, compared case-insensitively
var (
	dateKeys   = []string{"date", "fecha", "startdate", "start_date", "start", "datetime", "fecha_hora", "kickoff"}
	timeKeys   = []string{"time", "hora"}
	homeKeys   = []string{"home", "home_team", "hometeam", "local", "equipo_local", "localteam"}
	awayKeys   = []string{"away", "away_team", "awayteam", "visitante", "equipo_visitante", "visitor"}
	venueKeys  = []string{"venue", "location", "lugar", "pabellon", "campo", "place"}
	scoreKeys  = []string{"score", "resultado", "result"}
	statusKeys = []string{"status", "estado", "eventstatus"}
	nameKeys   = []string{"name", "title", "summary", "partido", "match"}
)

var (
	eventKeyHint = regexp.MustCompile(`(?i)["']?(date|fecha|start|event|match|partido)`)
	clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}`)
)

var isoLayouts = []struct {
	layout   string
	withTime bool
}{
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02 15:04", true},
	{"2006-01-02", false},
}

// InlineData scans embedded scripts for structured event data: JSON-LD
// Event objects and array-of-object literals mentioning date or event keys.
// Literals that fail to decode are discarded. Only records the classifier
// accepts are kept.
func InlineData(c *classifier.Classifier, loc *time.Location) Strategy {
	return Strategy{
		Name: StrategyInlineData,
		Extract: func(_ context.Context, page *Page) ([]match.Record, error) {
			doc, err := page.Document()
			if err != nil {
				return nil, err
			}

			var objects []map[string]interface{}
			doc.Find("script").Each(func(_ int, s *goquery.Selection) {
				text := s.Text()
				if strings.Contains(strings.ToLower(s.AttrOr("type", "")), "ld+json") {
					objects = append(objects, linkedDataEvents(text)...)
					return
				}
				objects = append(objects, decodeLiterals(ArrayLiterals(text))...)
			})

			records := make([]match.Record, 0)
			for _, obj := range objects {
				rec := recordFromObject(obj, loc)
				if rec.Empty() {
					continue
				}
				if !c.Relevant(rec.HomeTeam + " " + rec.AwayTeam) {
					continue
				}
				records = append(records, rec)
			}
			return records, nil
		},
	}
}

// ArrayLiterals returns every top-level "[{...}]" literal in script text.
// Brackets inside quoted strings are ignored.
func ArrayLiterals(script string) []string {
	var literals []string
	for i := 0; i < len(script); i++ {
		if script[i] != '[' || !nextNonSpaceIs(script, i+1, '{') {
			continue
		}
		end := matchingBracket(script, i)
		if end < 0 {
			// unbalanced, e.g. "[{" inside a string; try the next bracket
			continue
		}
		literals = append(literals, script[i:end+1])
		i = end
	}
	return literals
}

func nextNonSpaceIs(s string, i int, want byte) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return s[i] == want
	}
	return false
}

// matchingBracket returns the index of the bracket closing s[start], or -1
func matchingBracket(s string, start int) int {
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// linkedDataEvents decodes a JSON-LD block and returns its Event objects,
// including those nested in @graph or arrays
func linkedDataEvents(text string) []map[string]interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		logger.Debug("JSON-LD block not decodable", logger.Fields{"error": err.Error()})
		return nil
	}

	var events []map[string]interface{}
	var walk func(interface{})
	walk = func(v interface{}) {
		switch t := v.(type) {
		case []interface{}:
			for _, item := range t {
				walk(item)
			}
		case map[string]interface{}:
			if isEventType(t["@type"]) {
				events = append(events, t)
			}
			if graph, ok := t["@graph"]; ok {
				walk(graph)
			}
		}
	}
	walk(v)
	return events
}

// isEventType reports whether a JSON-LD @type, a string or an array of
// strings, names an Event subtype
func isEventType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return strings.HasSuffix(t, "Event")
	case []interface{}:
		for _, item := range t {
			if isEventType(item) {
				return true
			}
		}
	}
	return false
}

func recordFromObject(obj map[string]interface{}, loc *time.Location) match.Record {
	fields := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		fields[strings.ToLower(k)] = v
	}

	status := normalize.Text(lookup(fields, statusKeys))
	// schema.org statuses are URLs such as https://schema.org/EventPostponed
	if i := strings.LastIndex(status, "/"); i >= 0 {
		status = status[i+1:]
	}

	home := normalize.Text(lookup(fields, homeKeys))
	away := normalize.Text(lookup(fields, awayKeys))
	if home == "" && away == "" {
		home, away = layout.SplitTeams(normalize.Text(lookup(fields, nameKeys)))
	}

	return match.Record{
		DateText: looseDateText(lookup(fields, dateKeys), lookup(fields, timeKeys), loc),
		HomeTeam: home,
		AwayTeam: away,
		Score:    layout.ScoreOrStatus(normalize.Text(lookup(fields, scoreKeys)), ""),
		Venue:    normalize.Text(lookup(fields, venueKeys)),
		Status:   status,
	}
}

// lookup returns the first alias present, flattening numbers and
// {"name": ...} objects to text
func lookup(fields map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		v, ok := fields[alias]
		if !ok || v == nil {
			continue
		}
		if s := scalarText(v); s != "" {
			return s
		}
	}
	return ""
}

func scalarText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]interface{}:
		if name, ok := t["name"]; ok {
			return scalarText(name)
		}
	}
	return ""
}

// looseDateText converts day/month/year text or ISO-8601 values into the
// record date shape, appending a separate time value when the date lacks one
func looseDateText(dateValue, timeValue string, loc *time.Location) string {
	dateValue = normalize.Text(dateValue)
	if dateValue == "" {
		return ""
	}

	text := dateValue
	if normalize.HasDate(dateValue) {
		text = normalize.ExtractDate(dateValue)
	} else {
		for _, l := range isoLayouts {
			t, err := time.Parse(l.layout, dateValue)
			if err != nil {
				continue
			}
			if loc != nil && l.layout == time.RFC3339 {
				t = t.In(loc)
			}
			text = match.FormatDateText(t, l.withTime)
			break
		}
	}

	clock := clockPattern.FindString(normalize.Text(timeValue))
	if clock != "" && normalize.HasDate(text) && !strings.Contains(text, match.DateTimeSeparator) {
		text += match.DateTimeSeparator + clock
	}
	return text
}
