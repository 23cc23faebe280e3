package cli

import (
	"testing"

	"github.com/pfrederiksen/club-fixtures/internal/match"
)

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		input   string
		want    SortOrder
		wantErr bool
	}{
		{"", SortBySource, false},
		{"source", SortBySource, false},
		{"DATE", SortByDate, false},
		{" home ", SortByHome, false},
		{"title", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSortOrder(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSortOrder(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseSortOrder(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSortRecords(t *testing.T) {
	records := func() []match.Record {
		return []match.Record{
			{DateText: "07/02/2026 | 18:30", HomeTeam: "RHINOS", AwayTeam: "BEARS"},
			{DateText: "", HomeTeam: "owls", AwayTeam: "RHINOS"},
			{DateText: "24/01/2026", HomeTeam: "EAGLES", AwayTeam: "RHINOS"},
			{DateText: "07/02/2026 | 10:00", HomeTeam: "RHINOS", AwayTeam: "WOLVES"},
		}
	}

	tests := []struct {
		name      string
		sortOrder SortOrder
		wantAways []string
	}{
		{
			name:      "source keeps page order",
			sortOrder: SortBySource,
			wantAways: []string{"BEARS", "RHINOS", "RHINOS", "WOLVES"},
		},
		{
			name:      "date puts undated last",
			sortOrder: SortByDate,
			wantAways: []string{"RHINOS", "WOLVES", "BEARS", "RHINOS"},
		},
		{
			name:      "home then date",
			sortOrder: SortByHome,
			wantAways: []string{"RHINOS", "RHINOS", "WOLVES", "BEARS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := records()
			sortRecords(got, tt.sortOrder)

			for i, want := range tt.wantAways {
				if got[i].AwayTeam != want {
					t.Errorf("position %d: away = %q, want %q (%+v)", i, got[i].AwayTeam, want, got)
					break
				}
			}
		})
	}
}

func TestOrderFunc(t *testing.T) {
	if orderFunc(SortBySource) != nil {
		t.Error("source order should not reorder records")
	}
	if orderFunc(SortByDate) == nil {
		t.Error("date order should return a reorder hook")
	}
}
