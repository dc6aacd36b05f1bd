package commands

import (
	"fmt"
	"time"

	"github.com/penwyp/go-day-timeline/internal/data/store"
	"github.com/penwyp/go-day-timeline/internal/util"
	"github.com/spf13/cobra"
)

func newMarkCommand(opts *rootOptions) *cobra.Command {
	var at, goal string
	cmd := &cobra.Command{
		Use:   "mark <activity>",
		Short: "Record that an activity started",
		Long: `Appends a manual marker to the SQLite store. The activity lasts until
the next marker; the latest marker of today keeps running.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMark(cmd, opts, joinArgs(args), at, goal)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Start time as HH:MM today or RFC3339 (default now)")
	cmd.Flags().StringVar(&goal, "goal", "", "Classification id for the activity")
	return cmd
}

func newUnmarkCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unmark <id>",
		Short: "Delete a manual marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewSQLiteStore(opts.cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			deleted, err := st.DeleteMarker(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("marker %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted marker %s\n", args[0])
			return nil
		},
	}
}

func runMark(cmd *cobra.Command, opts *rootOptions, activity, at, goal string) error {
	tp := util.GetTimeProvider()
	start, err := parseAt(at, tp.Now(), tp.Location())
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(opts.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	marker, err := st.AddMarker(cmd.Context(), activity, start, goal)
	if err != nil {
		return err
	}
	util.LogInfo("Marker added", util.F("id", marker.ID), util.F("activity", marker.Activity))
	fmt.Fprintf(cmd.OutOrStdout(), "Marked %q at %s (%s)\n",
		marker.Activity, start.In(tp.Location()).Format("2006-01-02 15:04"), marker.ID)
	return nil
}

// parseAt resolves --at: empty is now, HH:MM is that clock time on now's
// local day, anything else must be RFC3339.
func parseAt(at string, now time.Time, loc *time.Location) (time.Time, error) {
	if at == "" {
		return now, nil
	}
	if clock, err := time.ParseInLocation("15:04", at, loc); err == nil {
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: want HH:MM or RFC3339", at)
	}
	return t, nil
}
