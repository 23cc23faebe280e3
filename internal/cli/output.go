package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/club-fixtures/internal/runner"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time              `json:"checked_at"`
	OutputDir  string                 `json:"output_dir"`
	Categories []runner.Summary       `json:"categories"`
	MatchCount int                    `json:"match_count"`
	EventCount int                    `json:"event_count"`
	Failed     int                    `json:"failed"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
}

// newOutputResult totals a run's summaries
func newOutputResult(outputDir string, summaries []runner.Summary) *OutputResult {
	result := &OutputResult{
		CheckedAt:  time.Now().UTC(),
		OutputDir:  outputDir,
		Categories: summaries,
	}
	for _, s := range summaries {
		result.MatchCount += s.Matches
		result.EventCount += s.Events
		if s.Failed() {
			result.Failed++
		}
	}
	return result
}

// parseFormat validates a --format value
func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(s)
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if len(result.Categories) == 0 {
		fmt.Fprintln(w, "No categories processed.")
		return nil
	}

	for _, s := range result.Categories {
		strategy := s.Strategy
		if strategy == "" {
			strategy = "none"
		}

		fmt.Fprintf(w, "%s: %d matches, %d events (%s)\n", s.Category.DisplayName(), s.Matches, s.Events, strategy)
		if s.FetchError != "" {
			fmt.Fprintf(w, "  fetch failed: %s\n", s.FetchError)
		}
		if s.Panic != "" {
			fmt.Fprintf(w, "  extraction aborted: %s\n", s.Panic)
		}
		if s.WriteError != "" {
			fmt.Fprintf(w, "  write failed: %s\n", s.WriteError)
		}

		if verbose {
			for _, rec := range s.Records {
				line := fmt.Sprintf("%s vs %s", rec.HomeTeam, rec.AwayTeam)
				if rec.Score != "" {
					line += " (" + rec.Score + ")"
				}
				if rec.DateText != "" {
					line = rec.DateText + "  " + line
				}
				fmt.Fprintf(w, "    %s\n", line)
				if rec.Venue != "" {
					fmt.Fprintf(w, "       Venue: %s\n", rec.Venue)
				}
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d matches, %d events across %d categories\n",
		result.MatchCount, result.EventCount, len(result.Categories))
	if result.Failed > 0 {
		fmt.Fprintf(w, "Failed: %d categories could not be written\n", result.Failed)
	}
	if result.OutputDir != "" {
		fmt.Fprintf(w, "Output: %s\n", result.OutputDir)
	}

	return nil
}
