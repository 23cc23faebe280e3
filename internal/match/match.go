package match

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// Record represents one extracted fixture
type Record struct {
	DateText string `json:"date_text"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Score    string `json:"score"`
	Venue    string `json:"venue"`
	Status   string `json:"status"`
}

// Category is one tracked competition page
type Category struct {
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// DisplayName returns the human label, falling back to the slug
func (c Category) DisplayName() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.Slug
}

// Document is the per-category JSON output
type Document struct {
	Category string   `json:"categoria"`
	Matches  []Record `json:"matches"`
}

// NewDocument builds a Document, never leaving Matches nil so that an empty
// run serializes as "matches": []
func NewDocument(category Category, records []Record) *Document {
	if records == nil {
		records = []Record{}
	}
	return &Document{
		Category: category.DisplayName(),
		Matches:  records,
	}
}

// Empty reports whether the record carries no team at all
func (r Record) Empty() bool {
	return r.HomeTeam == "" && r.AwayTeam == ""
}

// Key returns a deterministic hash of every field, used for deduplication
func (r Record) Key() string {
	h := sha1.New()
	h.Write([]byte(strings.Join([]string{r.DateText, r.HomeTeam, r.AwayTeam, r.Score, r.Venue, r.Status}, "|")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Dedupe drops repeated records, keeping the first occurrence and page order
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	unique := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, r)
	}
	return unique
}
