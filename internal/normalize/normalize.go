// Package normalize canonicalizes raw text fragments scraped from results
// tables: whitespace, glued date/time tokens, scores and "versus" markers.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// "18/01/2026 12:00", "18/01/202612:00" and "18/01/2026 | 12:00"
	dateTimePattern = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})\s*(?:\|\s*)?(\d{1,2}:\d{2})`)
	datePattern     = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	dateTextPattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}(?: \| \d{1,2}:\d{2})?`)
	scorePattern    = regexp.MustCompile(`^(\d+)\s*[-–]\s*(\d+)$`)
	leadingVersus   = regexp.MustCompile(`(?i)^vs\.?\s+`)
)

// Text collapses whitespace runs (including non-breaking spaces), splits a
// date glued to a time with " | " and strips a leading "VS" marker.
// Text is idempotent.
func Text(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = dateTimePattern.ReplaceAllString(s, "$1 | $2")
	return StripVersus(s)
}

// StripVersus removes a leading "VS" token from a team-pairing cell
func StripVersus(s string) string {
	for {
		stripped := leadingVersus.ReplaceAllString(s, "")
		if stripped == s {
			return s
		}
		s = stripped
	}
}

// Score returns the canonical "<int>-<int>" form of s, or "" when the
// cleaned text is not exactly two integers separated by a dash.
func Score(s string) string {
	m := scorePattern.FindStringSubmatch(Text(s))
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2]
}

// IsScore reports whether the cleaned text is exactly a two-integer score
func IsScore(s string) bool {
	return scorePattern.MatchString(Text(s))
}

// HasDate reports whether s contains a dd/mm/yyyy pattern
func HasDate(s string) bool {
	return datePattern.MatchString(s)
}

// ExtractDate returns the first "dd/mm/yyyy" pattern of the normalized
// text, keeping a trailing " | hh:mm" when present.
func ExtractDate(s string) string {
	return dateTextPattern.FindString(Text(s))
}

// StatusToken upper-cases a non-score result token such as "aplazado"
func StatusToken(s string) string {
	return strings.ToUpper(Text(s))
}
