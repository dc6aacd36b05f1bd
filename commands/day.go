package commands

import (
	"fmt"

	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-day-timeline/internal/util"
	"github.com/spf13/cobra"
)

type dayOptions struct {
	dayKey string
}

func (d *dayOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.dayKey, "day", "",
		"Day to reconstruct as YYYY-MM-DD (default today)")
}

func newDayCommand(opts *rootOptions) *cobra.Command {
	day := &dayOptions{}
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Render one day's timeline",
		Long: `Reconstructs one local calendar day: manual intervals, passive tracks
merged into blocks and groups, and the empty ranges between them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDay(cmd, opts, day)
		},
	}
	day.bind(cmd)
	return cmd
}

func runDay(cmd *cobra.Command, opts *rootOptions, day *dayOptions) error {
	cfg := opts.cfg
	tp := util.GetTimeProvider()
	loc := tp.Location()
	now := tp.Now()

	dayKey := day.dayKey
	if dayKey == "" {
		dayKey = timeline.DayKeyOf(now.UnixMilli(), loc)
	}
	window, err := timeline.WindowForKey(dayKey, loc)
	if err != nil {
		return err
	}

	src, closeSource, err := openSource(cfg, window.Start, window.End)
	if err != nil {
		return err
	}
	defer closeSource()

	inputs, err := loadInputs(cmd.Context(), src)
	if err != nil {
		return err
	}

	result, err := timeline.Reconstruct(inputs, cfg.TimelineOptions(dayKey, loc), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("reconstruct %s: %w", dayKey, err)
	}
	logDiagnostics(dayKey, len(result.Diagnostics))

	f, err := formatter.NewFormatter(cfg.Output, loc)
	if err != nil {
		return err
	}
	return f.FormatDay(cmd.OutOrStdout(), result)
}
