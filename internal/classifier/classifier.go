// Package classifier decides whether a table row concerns the tracked
// organization.
//
// Matching is substring based over a caller-supplied keyword set. Both the row
// text and the keywords are case folded and stripped of diacritics, so
// "Valsequillo", "VALSEQUILLO" and "Valséquillo" are equivalent.
package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Classifier matches row text against a fixed keyword set
type Classifier struct {
	keywords []string
}

// New creates a Classifier. Blank keywords are ignored.
func New(keywords []string) *Classifier {
	c := &Classifier{}
	for _, kw := range keywords {
		if k := fold(kw); k != "" {
			c.keywords = append(c.keywords, k)
		}
	}
	return c
}

// Keywords returns the folded keyword set
func (c *Classifier) Keywords() []string {
	out := make([]string, len(c.keywords))
	copy(out, c.keywords)
	return out
}

// Relevant reports whether any keyword is a substring of text.
// Empty text is never relevant.
func (c *Classifier) Relevant(text string) bool {
	if c == nil || len(c.keywords) == 0 {
		return false
	}
	folded := fold(text)
	if folded == "" {
		return false
	}
	for _, kw := range c.keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// fold upper-cases then case-folds s, drops combining marks and collapses
// whitespace. Upper-casing first maps letters such as the dotless ı to the
// same form their upper-case row text folds to.
func fold(s string) string {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err == nil {
		s = stripped
	}
	return cases.Fold().String(s)
}
