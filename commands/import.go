package commands

import (
	"fmt"

	"github.com/penwyp/go-day-timeline/internal/data/loader"
	"github.com/penwyp/go-day-timeline/internal/data/parser"
	"github.com/penwyp/go-day-timeline/internal/data/scanner"
	"github.com/penwyp/go-day-timeline/internal/data/store"
	"github.com/penwyp/go-day-timeline/internal/util"
	"github.com/spf13/cobra"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Import JSONL exports into the SQLite store",
		Long: `Reads markers*.jsonl, events*.jsonl and buckets*.jsonl below dir (default
the configured data directory) into the store. Records already present are
kept once: markers by id, events and buckets are updated in place.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.cfg.DataDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runImport(cmd, opts, dir)
		},
	}
}

func runImport(cmd *cobra.Command, opts *rootOptions, dir string) error {
	ctx := cmd.Context()
	src := loader.NewDirSource(scanner.NewFileScanner(dir), parser.NewParser(opts.cfg.Concurrency))
	inputs, err := src.Load(ctx)
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(opts.cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	markers, err := st.ImportMarkers(ctx, inputs.Markers)
	if err != nil {
		return fmt.Errorf("import markers: %w", err)
	}
	events, err := st.ImportEvents(ctx, inputs.Events)
	if err != nil {
		return fmt.Errorf("import events: %w", err)
	}
	for _, b := range inputs.Buckets {
		if err := st.UpsertBucket(ctx, b); err != nil {
			return fmt.Errorf("import bucket %s: %w", b.ID, err)
		}
	}

	totalMarkers, totalEvents, totalBuckets, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	util.LogInfo("Import finished",
		util.F("dir", dir),
		util.F("markers", markers),
		util.F("events", events),
		util.F("buckets", len(inputs.Buckets)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s, %s, %s\n",
		util.FormatCount(markers, "marker", "markers"),
		util.FormatCount(events, "event", "events"),
		util.FormatCount(len(inputs.Buckets), "bucket", "buckets"))
	fmt.Fprintf(cmd.OutOrStdout(), "Store now holds %d markers, %d events, %d buckets\n",
		totalMarkers, totalEvents, totalBuckets)
	return nil
}
