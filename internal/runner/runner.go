// Package runner drives one extraction run across every configured category.
//
// Categories are processed one after another. Each is fetched, run through
// the extraction chain, rendered as a JSON document and a calendar feed, and
// written out. A failure in one category never stops the others: a page that
// cannot be fetched still produces an empty document and an empty calendar.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/club-fixtures/internal/calendar"
	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/pfrederiksen/club-fixtures/internal/match"
	"github.com/pfrederiksen/club-fixtures/internal/scraper"
)

// Store persists the outputs of one category
type Store interface {
	Write(slug string, doc *match.Document, ics string) error
}

// Runner processes categories
type Runner struct {
	fetcher   scraper.Fetcher
	extractor *scraper.Extractor
	emitter   *calendar.Emitter
	store     Store
	order     func([]match.Record)
}

// Options holds the collaborators of a Runner
type Options struct {
	Fetcher   scraper.Fetcher
	Extractor *scraper.Extractor
	Emitter   *calendar.Emitter
	Store     Store
	// Order reorders records in place before output; page order when nil
	Order func([]match.Record)
}

// New creates a Runner
func New(opts Options) *Runner {
	emitter := opts.Emitter
	if emitter == nil {
		emitter = &calendar.Emitter{}
	}
	return &Runner{
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		emitter:   emitter,
		store:     opts.Store,
		order:     opts.Order,
	}
}

// Summary describes what happened to one category
type Summary struct {
	Category match.Category `json:"category"`

	// Strategy that produced the records, empty when nothing was found
	Strategy string `json:"strategy"`

	Matches    int           `json:"matches"`
	Events     int           `json:"events"`
	Duration   time.Duration `json:"duration"`
	FetchError string        `json:"fetch_error,omitempty"`
	WriteError string        `json:"write_error,omitempty"`

	// Panic holds a recovered panic; the category then gets empty outputs
	Panic string `json:"panic,omitempty"`

	Records []match.Record `json:"-"`
}

// Failed reports whether the category's outputs could not be written
func (s Summary) Failed() bool {
	return s.WriteError != ""
}

// Run processes every category in order. It stops early only when ctx is
// cancelled; categories not reached are left out of the result.
func (r *Runner) Run(ctx context.Context, categories []match.Category) []Summary {
	logger.SetGauge("run.categories", float64(len(categories)))
	summaries := make([]Summary, 0, len(categories))
	for _, cat := range categories {
		if ctx.Err() != nil {
			logger.Warn("Run cancelled", logger.Fields{
				"remaining": len(categories) - len(summaries),
			})
			break
		}
		summaries = append(summaries, r.RunCategory(ctx, cat))
	}
	return summaries
}

// RunCategory fetches, extracts and stores a single category
func (r *Runner) RunCategory(ctx context.Context, cat match.Category) (summary Summary) {
	start := time.Now()
	summary.Category = cat

	defer func() {
		if p := recover(); p != nil {
			logger.Error("Category processing panicked", logger.Fields{"category": cat.Slug}, fmt.Errorf("%v", p))
			summary = Summary{
				Category:   cat,
				FetchError: summary.FetchError,
				Panic:      fmt.Sprint(p),
				Records:    []match.Record{},
			}
			if err := r.writeEmpty(cat); err != nil {
				logger.IncrCounter("write.failure")
				summary.WriteError = err.Error()
			}
		}
		summary.Duration = time.Since(start)
	}()

	markup, err := r.fetch(ctx, cat)
	if err != nil {
		summary.FetchError = err.Error()
		markup = ""
	}

	var result scraper.Result
	if markup != "" {
		result = r.extractor.Extract(ctx, markup, cat.URL)
	} else {
		result = scraper.Result{Records: []match.Record{}}
	}

	doc, ics := r.Render(cat, result.Records)
	summary.Strategy = result.Strategy
	summary.Matches = len(doc.Matches)
	summary.Events = strings.Count(ics, "BEGIN:VEVENT")
	summary.Records = doc.Matches

	if r.store != nil {
		if err := r.store.Write(cat.Slug, doc, ics); err != nil {
			logger.Error("Failed to write category output", logger.Fields{"category": cat.Slug}, err)
			logger.IncrCounter("write.failure")
			summary.WriteError = err.Error()
			return summary
		}
	}

	logger.Info("Category processed", logger.Fields{
		"category": cat.Slug,
		"strategy": result.Strategy,
		"matches":  summary.Matches,
		"events":   summary.Events,
	})
	return summary
}

// writeEmpty stores an empty document and an empty calendar for cat,
// reporting a panic in the emitter or store as an error
func (r *Runner) writeEmpty(cat match.Category) (err error) {
	if r.store == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("writing empty output: panic: %v", p)
		}
	}()

	doc := match.NewDocument(cat, nil)
	return r.store.Write(cat.Slug, doc, r.emitter.Generate(doc.Matches, cat.DisplayName(), cat))
}

// Render builds the JSON document and calendar feed for extracted records
func (r *Runner) Render(cat match.Category, records []match.Record) (*match.Document, string) {
	if r.order != nil && len(records) > 1 {
		r.order(records)
	}
	doc := match.NewDocument(cat, records)
	ics := r.emitter.Generate(doc.Matches, cat.DisplayName(), cat)
	return doc, ics
}

func (r *Runner) fetch(ctx context.Context, cat match.Category) (string, error) {
	if r.fetcher == nil {
		return "", errors.New("no fetcher configured")
	}

	start := time.Now()
	markup, err := r.fetcher.Fetch(ctx, cat.URL)
	logger.RecordTiming("fetch.duration", time.Since(start))
	if err != nil {
		logger.IncrCounter("fetch.failure")

		fields := logger.Fields{"category": cat.Slug, "url": cat.URL}
		var fetchErr *scraper.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
			fields["status"] = fetchErr.StatusCode
		}
		logger.Error("Failed to fetch category page", fields, err)
		return "", err
	}
	return markup, nil
}
