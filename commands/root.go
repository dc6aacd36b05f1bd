package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/penwyp/go-day-timeline/internal/config"
	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/data/loader"
	"github.com/penwyp/go-day-timeline/internal/data/parser"
	"github.com/penwyp/go-day-timeline/internal/data/scanner"
	"github.com/penwyp/go-day-timeline/internal/data/store"
	"github.com/penwyp/go-day-timeline/internal/util"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	// Configuration file
	configPath string

	// Data location
	source  string
	dataDir string
	dbPath  string

	// Output related
	outputFormat string
	timezone     string

	// Logging related
	logLevel string
	logFile  string
	debug    bool

	// Resolved by PersistentPreRunE
	cfg *config.Config
}

// NewRootCommand builds the command tree. Running it without a subcommand
// renders today's timeline.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	day := &dayOptions{}

	rootCmd := &cobra.Command{
		Use:   "go-day-timeline [flags]",
		Short: "Reconstruct a day's timeline from manual markers and tracker events",
		Long: `go-day-timeline merges manually entered activity markers with passively
recorded tracker events into one timeline per local calendar day.

Examples:
  go-day-timeline                                   # Today's timeline
  go-day-timeline --day 2024-03-10 --output json    # A past day as JSON
  go-day-timeline schedule --from 2024-03-04        # One week
  go-day-timeline watch                             # Live view
  go-day-timeline mark "Deep work" --at 09:30       # Add a manual marker`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDay(cmd, opts, day)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "",
		"Config file path (default ~/.config/go-day-timeline/config.toml)")
	flags.StringVar(&opts.source, "source", "",
		"Data source (dir, store)")
	flags.StringVar(&opts.dataDir, "data-dir", "",
		"Directory holding markers/events/buckets JSONL files")
	flags.StringVar(&opts.dbPath, "db", "",
		"SQLite database path")
	flags.StringVarP(&opts.outputFormat, "output", "o", "",
		"Output format (table, json)")
	flags.StringVar(&opts.timezone, "timezone", "",
		"Timezone setting (e.g., Local, UTC, Asia/Shanghai)")
	flags.StringVar(&opts.logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "",
		"Log file path")
	flags.BoolVar(&opts.debug, "debug", false,
		"Enable debug mode")

	day.bind(rootCmd)

	rootCmd.AddCommand(
		newDayCommand(opts),
		newScheduleCommand(opts),
		newWatchCommand(opts),
		newMarkCommand(opts),
		newUnmarkCommand(opts),
		newImportCommand(opts),
	)
	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

// setup loads the config file, applies flag overrides and initializes
// logging and the time provider.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = o.source
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = config.ExpandPath(o.dataDir)
	}
	if flags.Changed("db") {
		cfg.DBPath = config.ExpandPath(o.dbPath)
	}
	if flags.Changed("output") {
		cfg.Output = o.outputFormat
	}
	if flags.Changed("timezone") {
		cfg.Timezone = o.timezone
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = config.ExpandPath(o.logFile)
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := util.InitLogger(cfg.LogLevel, cfg.LogFile, util.LogFormat(cfg.LogFormat), o.debug); err != nil {
		return err
	}
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return err
	}

	util.LogDebug("Configuration loaded",
		util.F("source", cfg.Source),
		util.F("data_dir", cfg.DataDir),
		util.F("db", cfg.DBPath),
		util.F("timezone", cfg.Timezone))
	o.cfg = cfg
	return nil
}

// openSource builds the configured data source. For the store source only
// events overlapping [fromMs, toMs) are read; zero means unbounded. The
// returned close function is never nil.
func openSource(cfg *config.Config, fromMs, toMs int64) (loader.Source, func() error, error) {
	switch cfg.Source {
	case config.SourceStore:
		st, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return &loader.StoreSource{Store: st, Path: cfg.DBPath, FromMs: fromMs, ToMs: toMs}, st.Close, nil
	default:
		src := loader.NewDirSource(scanner.NewFileScanner(cfg.DataDir), parser.NewParser(cfg.Concurrency))
		return src, func() error { return nil }, nil
	}
}

// loadInputs reads the source. An empty data directory is an empty day, not
// an error.
func loadInputs(ctx context.Context, src loader.Source) (timeline.Inputs, error) {
	inputs, err := src.Load(ctx)
	if errors.Is(err, loader.ErrNoData) {
		util.LogWarn("No data found", util.F("source", src.Describe()))
		return timeline.Inputs{}, nil
	}
	return inputs, err
}

func logDiagnostics(dayKey string, diags int) {
	if diags > 0 {
		util.LogDebug("Dropped malformed records", util.F("day", dayKey), util.F("count", diags))
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
