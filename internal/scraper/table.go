package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/club-fixtures/internal/classifier"
	"github.com/pfrederiksen/club-fixtures/internal/layout"
	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/pfrederiksen/club-fixtures/internal/match"
)

// TableScan keeps table rows the classifier accepts and maps their cells
// through the layout resolver. Unresolved rows are skipped.
func TableScan(c *classifier.Classifier, r *layout.Resolver) Strategy {
	return Strategy{
		Name: StrategyTable,
		Extract: func(_ context.Context, page *Page) ([]match.Record, error) {
			doc, err := page.Document()
			if err != nil {
				return nil, err
			}

			records := make([]match.Record, 0)
			doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
				cells := rowCells(tr)
				if len(cells) == 0 || !c.Relevant(strings.Join(cells, " ")) {
					return
				}

				rec, name, ok := r.Resolve(cells)
				if !ok {
					logger.IncrCounter("layout.unresolved")
					logger.Debug("Row matched no layout", logger.Fields{"cells": cells})
					return
				}

				logger.Debug("Row resolved", logger.Fields{"layout": name})
				records = append(records, rec)
			})
			return records, nil
		},
	}
}

// rowCells returns the text of the row's own cells, ignoring nested tables
func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, td.Text())
	})
	return cells
}
