package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/club-fixtures/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortBySource SortOrder = "source"
	SortByDate   SortOrder = "date"
	SortByHome   SortOrder = "home"
)

// parseSortOrder validates a --sort value
func parseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case "":
		return SortBySource, nil
	case SortBySource, SortByDate, SortByHome:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'source', 'date' or 'home')", s)
	}
}

// sortRecords sorts records in place. SortBySource keeps page order.
func sortRecords(records []match.Record, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(records, func(i, j int) bool {
			return compareByDate(records[i], records[j])
		})
	case SortByHome:
		sort.SliceStable(records, func(i, j int) bool {
			hi, hj := strings.ToLower(records[i].HomeTeam), strings.ToLower(records[j].HomeTeam)
			if hi != hj {
				return hi < hj
			}
			// If home teams are equal, sort by date
			return compareByDate(records[i], records[j])
		})
	}
}

// orderFunc adapts a SortOrder to the runner's Order hook
func orderFunc(sortOrder SortOrder) func([]match.Record) {
	if sortOrder == SortBySource {
		return nil
	}
	return func(records []match.Record) {
		sortRecords(records, sortOrder)
	}
}

// compareByDate reports whether record i should come before record j.
// Undated records go last, keeping their relative order.
func compareByDate(i, j match.Record) bool {
	dateI, okI := match.ParseDate(i.DateText, nil)
	dateJ, okJ := match.ParseDate(j.DateText, nil)

	switch {
	case okI && okJ:
		return dateI.Before(dateJ)
	case okI:
		return true
	default:
		return false
	}
}
