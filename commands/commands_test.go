package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-day-timeline/internal/config"
	"github.com/penwyp/go-day-timeline/internal/core/model"
	"github.com/penwyp/go-day-timeline/internal/data/store"
	"github.com/penwyp/go-day-timeline/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) int64 {
	return time.Date(2024, 3, 10, h, m, 0, 0, time.UTC).UnixMilli()
}

// writeDataDir lays out a small export: two markers, one window event and
// its bucket.
func writeDataDir(t *testing.T) string {
	t.Helper()
	gen := fixtures.NewTestDataGenerator(t.TempDir())

	require.NoError(t, gen.WriteMarkers(fixtures.MarkersFile,
		model.RawManualMarker{ID: "m1", Activity: "Writing", Timestamp: model.EpochMillis(at(9, 0))},
		model.RawManualMarker{ID: "m2", Activity: "Email", Timestamp: model.EpochMillis(at(10, 0))},
	))
	require.NoError(t, gen.WriteEvents(filepath.Join("tracker", fixtures.EventsFile), model.RawPassiveEvent{
		ID: "e1", SourceID: "aw-window", SourceClassification: model.BucketTypeWindow,
		Timestamp: model.EpochMillis(at(9, 0)), DurationSeconds: 1800, DisplayName: "Editor",
	}))
	require.NoError(t, gen.WriteBuckets(filepath.Join("tracker", fixtures.BucketsFile),
		model.Bucket{ID: "aw-window", Type: model.BucketTypeWindow, IsVisible: true},
	))
	return gen.GetBaseDir()
}

// run executes a fresh command tree with an isolated config file.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	base := []string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "--timezone", "UTC"}

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

func decodeDay(t *testing.T, out string) model.DayTimeline {
	t.Helper()
	var day model.DayTimeline
	require.NoError(t, sonic.UnmarshalString(out, &day))
	return day
}

func TestRootCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		flag         string
		defaultValue string
	}{
		{"config", ""},
		{"source", ""},
		{"data-dir", ""},
		{"db", ""},
		{"output", ""},
		{"timezone", ""},
		{"log-level", ""},
		{"log-file", ""},
		{"debug", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defaultValue, flag.DefValue)
		})
	}

	assert.NotNil(t, cmd.Flags().Lookup("day"))
	for _, name := range []string{"day", "schedule", "watch", "mark", "unmark", "import"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestDayCommand(t *testing.T) {
	dir := writeDataDir(t)

	tests := []struct {
		name string
		args []string
	}{
		{"subcommand", []string{"--data-dir", dir, "-o", "json", "day", "--day", "2024-03-10"}},
		{"root_default", []string{"--data-dir", dir, "-o", "json", "--day", "2024-03-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)

			day := decodeDay(t, out)
			assert.Equal(t, "2024-03-10", day.Window.Key)
			assert.False(t, day.IsToday)
			require.Len(t, day.Manual, 2)
			assert.Equal(t, "Writing", day.Manual[0].Classification)
			assert.Equal(t, at(10, 0), day.Manual[0].End)
			assert.Equal(t, day.Window.End, day.Manual[1].End)
			require.Len(t, day.PassiveTracks, 1)
			assert.Equal(t, "Editor", day.PassiveTracks[0].Blocks[0].Classification)
		})
	}
}

func TestDayCommandWorkday(t *testing.T) {
	gen := fixtures.NewTestDataGenerator(t.TempDir())
	require.NoError(t, gen.GenerateWorkday(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))

	out, err := run(t, "--data-dir", gen.GetBaseDir(), "-o", "json", "day", "--day", "2024-03-10")
	require.NoError(t, err)
	day := decodeDay(t, out)

	require.Len(t, day.Manual, 3)
	assert.Equal(t, []string{"Writing", "Lunch", "Review"},
		[]string{day.Manual[0].Classification, day.Manual[1].Classification, day.Manual[2].Classification})
	assert.Equal(t, "work", day.Manual[2].ClassificationID)

	// the presence stream is not a track and the hidden web bucket is dropped
	require.Len(t, day.PassiveTracks, 1)
	track := day.PassiveTracks[0]
	assert.Equal(t, model.BucketTypeWindow, track.SourceClass)

	// lunch on the lock screen is away time, not content
	require.Len(t, track.Blocks, 2)
	assert.Equal(t, "Editor", track.Blocks[0].Classification)
	assert.Equal(t, at(9, 0), track.Blocks[0].Start)
	assert.Equal(t, at(12, 0), track.Blocks[0].End)
	assert.InDelta(t, 10800, track.Blocks[0].DurationSeconds, 0.001)
	assert.Equal(t, "Browser", track.Blocks[1].Classification)

	require.Len(t, track.Groups, 2)
	assert.Equal(t, 36, track.Groups[0].Count())
	assert.Equal(t, 4, track.Groups[1].Count())

	for _, g := range track.Gaps {
		assert.False(t, g.Start < at(12, 0) && g.End > at(9, 0), "gap %v inside editor block", g)
	}
}

func TestDayCommandTable(t *testing.T) {
	out, err := run(t, "--data-dir", writeDataDir(t), "day", "--day", "2024-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Timeline 2024-03-10")
	assert.Contains(t, out, "Writing")
	assert.Contains(t, out, "Editor [1 event]")
}

func TestDayCommandEmptyDirectory(t *testing.T) {
	out, err := run(t, "--data-dir", t.TempDir(), "-o", "json", "day", "--day", "2024-03-10")
	require.NoError(t, err)

	day := decodeDay(t, out)
	assert.Empty(t, day.Manual)
	assert.Len(t, day.ManualGaps, 96)
}

func TestScheduleCommand(t *testing.T) {
	out, err := run(t, "--data-dir", writeDataDir(t), "-o", "json",
		"schedule", "--from", "2024-03-10", "--to", "2024-03-11")
	require.NoError(t, err)

	var schedule model.Schedule
	require.NoError(t, sonic.UnmarshalString(out, &schedule))
	require.Len(t, schedule.Days, 2)
	assert.Equal(t, "2024-03-10", schedule.Days[0].Window.Key)
	assert.Equal(t, "2024-03-11", schedule.Days[1].Window.Key)
	assert.Len(t, schedule.Days[0].Manual, 2)
	assert.Empty(t, schedule.Days[1].Manual)
}

func TestMarkAndStoreSource(t *testing.T) {
	db := filepath.Join(t.TempDir(), "timeline.db")

	out, err := run(t, "--db", db, "mark", "Deep", "work", "--at", "2024-03-10T09:30:00Z", "--goal", "focus")
	require.NoError(t, err)
	assert.Contains(t, out, `Marked "Deep work" at 2024-03-10 09:30`)

	st, err := store.NewSQLiteStore(db)
	require.NoError(t, err)
	markers, err := st.ListMarkers(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, markers, 1)
	assert.Equal(t, "focus", markers[0].ClassificationID)

	out, err = run(t, "--db", db, "--source", "store", "-o", "json", "day", "--day", "2024-03-10")
	require.NoError(t, err)
	day := decodeDay(t, out)
	require.Len(t, day.Manual, 1)
	assert.Equal(t, "Deep work", day.Manual[0].Classification)
	assert.Equal(t, time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC).UnixMilli(), day.Manual[0].Start)

	out, err = run(t, "--db", db, "unmark", markers[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted marker "+markers[0].ID)

	_, err = run(t, "--db", db, "unmark", markers[0].ID)
	assert.ErrorContains(t, err, "not found")
}

func TestImportCommand(t *testing.T) {
	dir := writeDataDir(t)
	db := filepath.Join(t.TempDir(), "timeline.db")

	out, err := run(t, "--db", db, "import", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 markers, 1 event, 1 bucket")

	// re-import keeps markers unique
	out, err = run(t, "--db", db, "import", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 markers, 1 event, 1 bucket")
	assert.Contains(t, out, "Store now holds 2 markers, 1 events, 1 buckets")

	out, err = run(t, "--db", db, "--source", "store", "-o", "json", "--day", "2024-03-10")
	require.NoError(t, err)
	day := decodeDay(t, out)
	assert.Len(t, day.Manual, 2)
	assert.Len(t, day.PassiveTracks, 1)
}

func TestCommandErrors(t *testing.T) {
	dir := writeDataDir(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad_day", []string{"--data-dir", dir, "day", "--day", "10/03/2024"}, "invalid day key"},
		{"bad_output", []string{"--data-dir", dir, "-o", "xml", "day"}, "unknown output"},
		{"bad_source", []string{"--source", "kafka", "day"}, "unknown source"},
		{"bad_timezone", []string{"--timezone", "Mars/Olympus", "day"}, "invalid timezone"},
		{"reversed_schedule", []string{"--data-dir", dir, "schedule", "--from", "2024-03-11", "--to", "2024-03-10"}, "reversed"},
		{"mark_without_activity", []string{"--db", filepath.Join(t.TempDir(), "x.db"), "mark"}, "requires at least 1 arg"},
		{"mark_bad_at", []string{"--db", filepath.Join(t.TempDir(), "x.db"), "mark", "x", "--at", "noon"}, "invalid --at"},
		{"import_missing_dir", []string{"--db", filepath.Join(t.TempDir(), "x.db"), "import", filepath.Join(dir, "nope")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
			}
		})
	}
}

func TestParseAt(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC) // 07:30 on the 11th in Shanghai

	tests := []struct {
		name    string
		at      string
		want    time.Time
		wantErr bool
	}{
		{"empty_is_now", "", now, false},
		{"clock_on_local_day", "09:15", time.Date(2024, 3, 11, 9, 15, 0, 0, loc), false},
		{"rfc3339", "2024-03-09T08:00:00Z", time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), false},
		{"garbage", "9am", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAt(tt.at, now, loc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestOpenSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.DBPath = filepath.Join(t.TempDir(), "timeline.db")

	src, closeFn, err := openSource(cfg, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "dir:"+cfg.DataDir, src.Describe())
	assert.NoError(t, closeFn())

	cfg.Source = config.SourceStore
	src, closeFn, err = openSource(cfg, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "store:"+cfg.DBPath, src.Describe())
	assert.NoError(t, closeFn())
}
