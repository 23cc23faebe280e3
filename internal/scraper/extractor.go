package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/club-fixtures/internal/classifier"
	"github.com/pfrederiksen/club-fixtures/internal/layout"
	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/pfrederiksen/club-fixtures/internal/match"
)

// Strategy names, in chain order
const (
	StrategyTable          = "table"
	StrategyCalendarExport = "calendar-export"
	StrategyInlineData     = "inline-data"
	StrategyTextScan       = "text-scan"
)

// Page is the markup of one results page plus its address
type Page struct {
	Markup string
	Source *url.URL

	doc    *goquery.Document
	docErr error
	parsed bool
}

// NewPage wraps markup fetched from sourceURL. An unparsable sourceURL leaves
// Source nil, which only disables resolving relative links.
func NewPage(markup, sourceURL string) *Page {
	p := &Page{Markup: markup}
	if u, err := url.Parse(sourceURL); err == nil && sourceURL != "" {
		p.Source = u
	}
	return p
}

// Document parses the markup once and caches the result
func (p *Page) Document() (*goquery.Document, error) {
	if !p.parsed {
		p.doc, p.docErr = goquery.NewDocumentFromReader(strings.NewReader(p.Markup))
		if p.docErr != nil {
			p.docErr = fmt.Errorf("parsing HTML: %w", p.docErr)
		}
		p.parsed = true
	}
	return p.doc, p.docErr
}

// Strategy is one independent way of extracting records from a page
type Strategy struct {
	Name    string
	Extract func(ctx context.Context, page *Page) ([]match.Record, error)
}

// Result is the outcome of running the chain on one page
type Result struct {
	Records []match.Record
	// Strategy is the name of the strategy that produced Records, empty when
	// every strategy came back empty
	Strategy string
}

// Options configures the default strategy chain
type Options struct {
	Classifier *classifier.Classifier
	Resolver   *layout.Resolver
	// Fetcher downloads linked calendar exports; nil disables that strategy
	Fetcher Fetcher
	// Location interprets times found in calendar exports and inline data
	Location *time.Location
}

// Extractor runs strategies in order and keeps the first non-empty result
type Extractor struct {
	strategies []Strategy
}

// New creates an Extractor with the default chain:
// table scan, calendar export, inline data, text scan
func New(opts Options) *Extractor {
	return NewWithStrategies(
		TableScan(opts.Classifier, opts.Resolver),
		CalendarExport(opts.Fetcher, opts.Location),
		InlineData(opts.Classifier, opts.Location),
		TextScan(opts.Classifier),
	)
}

// NewWithStrategies creates an Extractor running exactly the given strategies
func NewWithStrategies(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract runs the chain over markup fetched from sourceURL. Strategy errors
// and panics are logged and treated as an empty result.
func (e *Extractor) Extract(ctx context.Context, markup, sourceURL string) Result {
	page := NewPage(markup, sourceURL)

	for _, s := range e.strategies {
		if ctx.Err() != nil {
			logger.Warn("Extraction cancelled", logger.Fields{"source": sourceURL})
			break
		}

		records := e.run(ctx, s, page)
		if len(records) == 0 {
			logger.Debug("Strategy yielded no records", logger.Fields{
				"strategy": s.Name,
				"source":   sourceURL,
			})
			continue
		}

		logger.IncrCounter("strategy." + s.Name + ".hit")
		return Result{Records: records, Strategy: s.Name}
	}

	return Result{Records: []match.Record{}}
}

func (e *Extractor) run(ctx context.Context, s Strategy, page *Page) (records []match.Record) {
	defer func() {
		if r := recover(); r != nil {
			logger.IncrCounter("strategy." + s.Name + ".error")
			logger.Error("Strategy panicked", logger.Fields{"strategy": s.Name}, fmt.Errorf("%v", r))
			records = nil
		}
	}()

	records, err := s.Extract(ctx, page)
	if err != nil {
		logger.IncrCounter("strategy." + s.Name + ".error")
		logger.Warn("Strategy failed", logger.Fields{
			"strategy": s.Name,
			"error":    err.Error(),
		})
		return nil
	}
	return records
}
