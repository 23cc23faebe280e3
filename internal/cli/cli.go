package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/club-fixtures/internal/calendar"
	"github.com/pfrederiksen/club-fixtures/internal/classifier"
	"github.com/pfrederiksen/club-fixtures/internal/config"
	"github.com/pfrederiksen/club-fixtures/internal/layout"
	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/pfrederiksen/club-fixtures/internal/runner"
	"github.com/pfrederiksen/club-fixtures/internal/scraper"
	"github.com/pfrederiksen/club-fixtures/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// DefaultConfigFile is read when --config is not given
const DefaultConfigFile = "categories.yaml"

// errWriteFailed is returned when at least one category could not be written
var errWriteFailed = errors.New("one or more categories could not be written")

var (
	flagConfig       string
	flagOutputDir    string
	flagKeywords     []string
	flagOrganization string
	flagTimezone     string
	flagFormat       string
	flagSort         string
	flagSchedule     string
	flagVerbose      bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "club-fixtures",
		Short: "Extract a club's fixtures from league results pages",
		Long: `A CLI tool that extracts one club's fixtures and results from
third-party league pages and writes, per category, a JSON document
(partidos.json) and an iCalendar feed (calendario.ics).`,
		RunE:          runFixtures,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flags shared with subcommands
	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", DefaultConfigFile, "Configuration file (YAML or JSON)")
	pf.StringSliceVar(&flagKeywords, "keyword", nil, "Keyword identifying the club (repeatable, overrides config)")
	pf.StringVar(&flagOrganization, "organization", "", "Club name used for the side missing from a row")
	pf.StringVar(&flagTimezone, "timezone", "", "Timezone of page dates (empty for floating times)")
	pf.StringVar(&flagSort, "sort", string(SortBySource), "Match order: source, date or home")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.Flags().StringVar(&flagOutputDir, "out", "", "Output directory (overrides config output_dir)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Summary format: text or json")
	cmd.Flags().StringVar(&flagSchedule, "schedule", "", "Cron expression; keep running and repeat on this schedule")

	cmd.AddCommand(newExtractCmd())

	return cmd
}

// runFixtures is the main command logic
func runFixtures(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(strings.ToLower(flagFormat))
	if err != nil {
		return err
	}
	sortOrder, err := parseSortOrder(flagSort)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = flagOutputDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	logger.Debug("Configuration loaded", logger.Fields{
		"config": cfg.String(),
		"file":   flagConfig,
	})

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	r := newRunner(cfg, loc, store, sortOrder)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	runOnce := func(ctx context.Context) error {
		summaries := r.Run(ctx, cfg.Categories)

		result := newOutputResult(store.Dir(), summaries)
		if flagVerbose {
			result.Metrics = logger.GetMetricsSnapshot()
		}
		if err := WriteOutput(out, result, format, flagVerbose); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if result.Failed > 0 {
			return errWriteFailed
		}
		return nil
	}

	if flagSchedule == "" {
		return runOnce(ctx)
	}

	return runScheduled(ctx, flagSchedule, loc, func(ctx context.Context) {
		if err := runOnce(ctx); err != nil {
			logger.Error("Scheduled run failed", nil, err)
		}
	})
}

// loadConfig reads the configuration file and applies flag overrides. A
// missing default file is not an error so that a run can be described
// entirely by flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	_, statErr := os.Stat(flagConfig)
	if cmd.Flags().Changed("config") || statErr == nil {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if len(flagKeywords) > 0 {
		cfg.Keywords = flagKeywords
	}
	if cmd.Flags().Changed("organization") {
		cfg.Organization = flagOrganization
	}
	if cmd.Flags().Changed("timezone") {
		cfg.Timezone = flagTimezone
	}
	if flagVerbose {
		cfg.Logging.Level = string(logger.LevelDebug)
	}

	return cfg, nil
}

func setupLogging(cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return nil
}

// newExtractor wires the extraction chain for a configuration
func newExtractor(cfg *config.Config, loc *time.Location, fetcher scraper.Fetcher) *scraper.Extractor {
	return scraper.New(scraper.Options{
		Classifier: classifier.New(cfg.Keywords),
		Resolver:   layout.NewResolver(cfg.CanonicalName()),
		Fetcher:    fetcher,
		Location:   loc,
	})
}

func newRunner(cfg *config.Config, loc *time.Location, store runner.Store, sortOrder SortOrder) *runner.Runner {
	fetcher := scraper.NewHTTPFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	return runner.New(runner.Options{
		Fetcher:   fetcher,
		Extractor: newExtractor(cfg, loc, fetcher),
		Emitter:   &calendar.Emitter{Location: loc},
		Store:     store,
		Order:     orderFunc(sortOrder),
	})
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
