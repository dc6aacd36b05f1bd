package commands

import (
	"fmt"

	"github.com/penwyp/go-day-timeline/internal/core/constants"
	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-day-timeline/internal/util"
	"github.com/spf13/cobra"
)

const defaultScheduleDays = 7

func newScheduleCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Render a range of days",
		Long: fmt.Sprintf(`Reconstructs every day from --from to --to inclusive (at most %d days).
Intervals running past midnight continue on the following day.
Defaults to the last %d days ending today.`, constants.MaxScheduleDays, defaultScheduleDays),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, opts, from, to)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day as YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last day as YYYY-MM-DD (default today)")
	return cmd
}

func runSchedule(cmd *cobra.Command, opts *rootOptions, from, to string) error {
	cfg := opts.cfg
	tp := util.GetTimeProvider()
	loc := tp.Location()
	now := tp.Now()

	if to == "" {
		to = timeline.DayKeyOf(now.UnixMilli(), loc)
	}
	if from == "" {
		end, err := timeline.ParseDayKey(to, loc)
		if err != nil {
			return err
		}
		from = end.AddDate(0, 0, -(defaultScheduleDays - 1)).Format(constants.DayKeyLayout)
	}

	keys, err := timeline.DayKeysBetween(from, to, loc)
	if err != nil {
		return err
	}
	first, err := timeline.WindowForKey(keys[0], loc)
	if err != nil {
		return err
	}
	last, err := timeline.WindowForKey(keys[len(keys)-1], loc)
	if err != nil {
		return err
	}

	src, closeSource, err := openSource(cfg, first.Start, last.End)
	if err != nil {
		return err
	}
	defer closeSource()

	inputs, err := loadInputs(cmd.Context(), src)
	if err != nil {
		return err
	}

	schedule, err := timeline.BuildSchedule(inputs, cfg.TimelineOptions(from, loc), from, to, now.UnixMilli())
	if err != nil {
		return err
	}
	for _, d := range schedule.Days {
		logDiagnostics(d.Window.Key, len(d.Diagnostics))
	}

	f, err := formatter.NewFormatter(cfg.Output, loc)
	if err != nil {
		return err
	}
	return f.FormatSchedule(cmd.OutOrStdout(), schedule)
}
