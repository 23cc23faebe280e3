package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/club-fixtures/internal/calendar"
	"github.com/pfrederiksen/club-fixtures/internal/config"
	"github.com/pfrederiksen/club-fixtures/internal/match"
	"github.com/pfrederiksen/club-fixtures/internal/runner"
	"github.com/pfrederiksen/club-fixtures/internal/scraper"
	"github.com/pfrederiksen/club-fixtures/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagFile      string
	flagSourceURL string
	flagName      string
	flagCalendar  bool
)

// newExtractCmd creates the offline extraction command
func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract fixtures from a saved results page",
		Long: `Runs the extraction engine on a local HTML file and prints the
resulting JSON document, or the calendar feed with --calendar.
Nothing is written to the output directory.`,
		Args: cobra.NoArgs,
		RunE: runExtract,
	}

	cmd.Flags().StringVar(&flagFile, "file", "", "Saved results page (required)")
	cmd.Flags().StringVar(&flagSourceURL, "url", "", "Address the page was saved from, used to resolve relative links")
	cmd.Flags().StringVar(&flagName, "name", "", "Category name for the document (default: file name)")
	cmd.Flags().BoolVar(&flagCalendar, "calendar", false, "Print the iCalendar feed instead of the JSON document")

	cmd.MarkFlagRequired("file")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	sortOrder, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !hasKeyword(cfg.Keywords) {
		return fmt.Errorf("invalid configuration: %w", config.ErrNoKeywords)
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(flagFile)
	if err != nil {
		return fmt.Errorf("reading page: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(flagFile), filepath.Ext(flagFile))
	category := match.Category{Slug: base, Name: flagName, URL: flagSourceURL}
	if category.Name == "" {
		category.Name = base
	}

	fetcher := scraper.NewHTTPFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	result := newExtractor(cfg, loc, fetcher).Extract(cmd.Context(), string(data), flagSourceURL)

	r := runner.New(runner.Options{
		Emitter: &calendar.Emitter{Location: loc},
		Order:   orderFunc(sortOrder),
	})
	doc, ics := r.Render(category, result.Records)

	out := cmd.OutOrStdout()
	if flagCalendar {
		_, err := fmt.Fprint(out, ics)
		return err
	}

	encoded, err := storage.EncodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = out.Write(encoded)
	return err
}

func hasKeyword(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}
