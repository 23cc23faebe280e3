package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	ics "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/club-fixtures/internal/layout"
	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/pfrederiksen/club-fixtures/internal/match"
	"github.com/pfrederiksen/club-fixtures/internal/normalize"
)

var errNotCalendar = errors.New("not an iCalendar document")

// maxExportCandidates bounds how many linked exports are downloaded per page
const maxExportCandidates = 3

var (
	icsExtension    = regexp.MustCompile(`(?i)\.ics($|[?#])`)
	calendarKeyword = regexp.MustCompile(`(?i)(^webcal:|ical|calendar)`)
	icsTextEscapes  = strings.NewReplacer(`\\`, `\`, `\,`, `,`, `\;`, `;`, `\n`, " ", `\N`, " ")
)

// CalendarExport looks for a link to a calendar export, downloads it and
// turns its events into records. Links ending in .ics are tried before
// keyword matches.
func CalendarExport(f Fetcher, loc *time.Location) Strategy {
	return Strategy{
		Name: StrategyCalendarExport,
		Extract: func(ctx context.Context, page *Page) ([]match.Record, error) {
			if f == nil {
				return nil, nil
			}
			doc, err := page.Document()
			if err != nil {
				return nil, err
			}

			links := calendarLinks(doc, page.Source)
			var lastErr error
			for i, link := range links {
				if i == maxExportCandidates {
					break
				}

				body, err := f.Fetch(ctx, link)
				if err != nil {
					lastErr = err
					continue
				}

				records, err := ParseCalendarExport(body, loc)
				if err != nil {
					logger.Debug("Linked calendar export unreadable", logger.Fields{
						"url":   link,
						"error": err.Error(),
					})
					lastErr = err
					continue
				}
				if len(records) > 0 {
					return records, nil
				}
			}
			return nil, lastErr
		},
	}
}

// calendarLinks returns absolute export URLs found in anchors, best first
func calendarLinks(doc *goquery.Document, base *url.URL) []string {
	type candidate struct {
		url  string
		rank int
	}

	var candidates []candidate
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		rank := 0
		switch {
		case icsExtension.MatchString(href):
			rank = 1
		case calendarKeyword.MatchString(href):
			rank = 2
		default:
			return
		}

		abs, ok := resolveLink(base, href)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		candidates = append(candidates, candidate{url: abs, rank: rank})
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rank < candidates[j].rank
	})

	links := make([]string, len(candidates))
	for i, c := range candidates {
		links[i] = c.url
	}
	return links
}

func resolveLink(base *url.URL, href string) (string, bool) {
	if strings.HasPrefix(strings.ToLower(href), "webcal://") {
		href = "https://" + href[len("webcal://"):]
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

// ParseCalendarExport turns the VEVENTs of an iCalendar document into
// records. A "home vs away" summary is split into the two team fields.
// UTC start times are shown in loc.
func ParseCalendarExport(body string, loc *time.Location) ([]match.Record, error) {
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		return nil, errNotCalendar
	}
	cal, err := ics.ParseCalendar(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	records := make([]match.Record, 0)
	for _, ev := range cal.Events() {
		summary := normalize.Text(propertyText(ev, ics.ComponentPropertySummary))
		if summary == "" {
			continue
		}
		home, away := layout.SplitTeams(summary)

		records = append(records, match.Record{
			DateText: eventDateText(ev, loc),
			HomeTeam: home,
			AwayTeam: away,
			Venue:    normalize.Text(propertyText(ev, ics.ComponentPropertyLocation)),
			Status:   normalize.Text(propertyText(ev, ics.ComponentPropertyStatus)),
		})
	}
	return records, nil
}

func eventDateText(ev *ics.VEvent, loc *time.Location) string {
	prop := ev.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return ""
	}
	start, err := ev.GetStartAt()
	if err != nil {
		return ""
	}
	if loc != nil && strings.HasSuffix(prop.Value, "Z") {
		start = start.In(loc)
	}
	return match.FormatDateText(start, strings.Contains(prop.Value, "T"))
}

func propertyText(ev *ics.VEvent, p ics.ComponentProperty) string {
	prop := ev.GetProperty(p)
	if prop == nil {
		return ""
	}
	return icsTextEscapes.Replace(prop.Value)
}
