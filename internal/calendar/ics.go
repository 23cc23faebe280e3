// Package calendar renders extracted fixtures as an iCalendar (.ics) document.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/club-fixtures/internal/match"
)

const (
	// DefaultDuration is the length given to every fixture
	DefaultDuration = 90 * time.Minute
	// DefaultLocation is used when a record has no venue
	DefaultLocation = "Por confirmar"

	prodID  = "-//club-fixtures//club-fixtures//ES"
	uidHost = "club-fixtures"
)

// uidNamespace scopes the name-based UUIDs used as event UIDs
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pfrederiksen/club-fixtures"))

// Emitter converts records into a calendar document
type Emitter struct {
	// Duration of each event; DefaultDuration when zero
	Duration time.Duration
	// Location interprets record dates. Times are written in UTC when set and
	// as floating local times when nil.
	Location *time.Location
	// Now stamps DTSTAMP; time.Now when nil
	Now func() time.Time
}

// GenerateBulkICS renders records with default settings and floating times
func GenerateBulkICS(records []match.Record, calendarName string, category match.Category) string {
	return (&Emitter{}).Generate(records, calendarName, category)
}

// Generate renders one VCALENDAR with a VEVENT per record whose DateText
// parses. Records without a usable date are skipped. The container is always
// written, even when no event qualifies.
func (e *Emitter) Generate(records []match.Record, calendarName string, category match.Category) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString(fmt.Sprintf("PRODID:%s\r\n", prodID))
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(calendarName)))
	}
	if e.Location != nil {
		ics.WriteString(fmt.Sprintf("X-WR-TIMEZONE:%s\r\n", e.Location.String()))
	}

	stamp := e.now().UTC()
	for i, rec := range records {
		start, ok := match.ParseDate(rec.DateText, e.Location)
		if !ok {
			continue
		}
		e.writeEvent(&ics, i, rec, start, stamp, category)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func (e *Emitter) writeEvent(ics *strings.Builder, seq int, rec match.Record, start, stamp time.Time, category match.Category) {
	duration := e.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	end := start.Add(duration)

	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s\r\n", EventUID(category.Slug, seq, start)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(stamp)))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", e.formatTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", e.formatTime(end)))
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(Summary(rec))))

	description := fmt.Sprintf("Categoría: %s", category.DisplayName())
	if rec.Status != "" {
		description += fmt.Sprintf("\nEstado: %s", rec.Status)
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	location := rec.Venue
	if location == "" {
		location = DefaultLocation
	}
	ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(location)))

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// Summary renders "<home> vs <away>", with the score in parentheses when known
func Summary(rec match.Record) string {
	var sides []string
	for _, side := range []string{rec.HomeTeam, rec.AwayTeam} {
		if side != "" {
			sides = append(sides, side)
		}
	}
	summary := strings.Join(sides, " vs ")
	if rec.Score != "" {
		summary = fmt.Sprintf("%s (%s)", summary, rec.Score)
	}
	return summary
}

// EventUID derives a stable identifier from the category, the record's
// position and its start time
func EventUID(slug string, seq int, start time.Time) string {
	name := fmt.Sprintf("%s|%d|%s", slug, seq, formatICSTime(start))
	return fmt.Sprintf("%s@%s", uuid.NewSHA1(uidNamespace, []byte(name)), uidHost)
}

func (e *Emitter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Emitter) formatTime(t time.Time) string {
	if e.Location == nil {
		return t.Format("20060102T150405")
	}
	return formatICSTime(t)
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar text values (RFC 5545)
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
