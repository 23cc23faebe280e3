package match

import (
	"regexp"
	"strconv"
	"time"
)

// DateTimeSeparator joins the date and the time inside DateText
const DateTimeSeparator = " | "

var dateTextPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})(?:\s*\|\s*(\d{1,2}):(\d{2}))?`)

// ParseDate parses the first "dd/mm/yyyy" pattern in dateText, optionally
// followed by the separator and "hh:mm". A missing time means 00:00.
// The result is interpreted in loc (UTC when loc is nil).
// Returns false for empty text, placeholders and impossible dates.
func ParseDate(dateText string, loc *time.Location) (time.Time, bool) {
	if dateText == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	m := dateTextPattern.FindStringSubmatch(dateText)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}
	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	// time.Date normalizes 31/02 into March; reject instead
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// FormatDateText renders t in the DateText shape. The time part is omitted
// when withTime is false.
func FormatDateText(t time.Time, withTime bool) string {
	if !withTime {
		return t.Format("02/01/2006")
	}
	return t.Format("02/01/2006") + DateTimeSeparator + t.Format("15:04")
}
