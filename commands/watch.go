package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/go-day-timeline/internal/application/live"
	"github.com/penwyp/go-day-timeline/internal/config"
	"github.com/penwyp/go-day-timeline/internal/core/cache"
	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/monitoring"
	"github.com/penwyp/go-day-timeline/internal/presentation/display"
	"github.com/penwyp/go-day-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-day-timeline/internal/util"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var dayKey string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live, self-refreshing timeline",
		Long: `Redraws the timeline every tick so the running activity keeps growing.
Data is re-read when files in the data directory change, or on the refresh
interval for the store source. Without --day the view follows today across
midnight.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, dayKey)
		},
	}
	cmd.Flags().StringVar(&dayKey, "day", "", "Pin the view to one day as YYYY-MM-DD")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *rootOptions, dayKey string) error {
	cfg := opts.cfg
	tp := util.GetTimeProvider()
	loc := tp.Location()

	if dayKey != "" {
		if _, err := timeline.ParseDayKey(dayKey, loc); err != nil {
			return err
		}
	}

	src, closeSource, err := openSource(cfg, 0, 0)
	if err != nil {
		return err
	}
	defer closeSource()

	var events <-chan monitoring.FileEvent
	if cfg.Source == config.SourceDir {
		watcher, err := monitoring.NewFileWatcher([]string{cfg.DataDir})
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfg.DataDir, err)
		}
		defer watcher.Close()
		events = watcher.Events()
	}

	f, err := formatter.NewFormatter(cfg.Output, loc)
	if err != nil {
		return err
	}
	screen := display.NewTerminalDisplay(cmd.OutOrStdout(), f, loc)

	controller, err := live.NewController(live.Config{
		DayKey:   dayKey,
		Location: loc,
		Options: func(key string) timeline.Options {
			return cfg.TimelineOptions(key, loc)
		},
		TickInterval:    cfg.TickInterval,
		RefreshInterval: cfg.RefreshInterval,
	}, src, cache.NewMemoryCache(), tp, screen, events)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen.EnterAlternateScreen()
	defer screen.ExitAlternateScreen()
	return controller.Run(ctx)
}
