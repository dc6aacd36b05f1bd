package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// File names the data directory scanner picks up.
const (
	MarkersFile = "markers.jsonl"
	EventsFile  = "events.jsonl"
	BucketsFile = "buckets.jsonl"
)

// Bucket ids used by the generated days.
const (
	WindowBucket   = "aw-watcher-window_host"
	PresenceBucket = "aw-watcher-afk_host"
	WebBucket      = "aw-watcher-web_host"
)

// TestDataGenerator writes export files into a data directory.
type TestDataGenerator struct {
	baseDir string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{
		baseDir: baseDir,
	}
}

// GetBaseDir returns the base directory for test data
func (g *TestDataGenerator) GetBaseDir() string {
	return g.baseDir
}

// WriteMarkers writes markers to rel (relative to the base directory).
func (g *TestDataGenerator) WriteMarkers(rel string, markers ...model.RawManualMarker) error {
	return writeJSONL(g.path(rel), markers)
}

// WriteEvents writes tracker events to rel.
func (g *TestDataGenerator) WriteEvents(rel string, events ...model.RawPassiveEvent) error {
	return writeJSONL(g.path(rel), events)
}

// WriteBuckets writes bucket metadata to rel.
func (g *TestDataGenerator) WriteBuckets(rel string, buckets ...model.Bucket) error {
	return writeJSONL(g.path(rel), buckets)
}

// WriteRaw writes lines verbatim, for malformed-input cases.
func (g *TestDataGenerator) WriteRaw(rel string, lines ...string) error {
	path := g.path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var data []byte
	for _, line := range lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	return os.WriteFile(path, data, 0644)
}

// GenerateWorkday writes a full day starting at midnight:
//
//	09:00 Writing, 12:00 Lunch, 13:00 Review (manual)
//	09:00-12:00 Editor in 5 minute events
//	12:00-13:00 loginwindow while away
//	13:00-14:00 Browser in 15 minute events
//	13:00 a web event in a hidden bucket
//
// with a presence stream that is active except over lunch.
func (g *TestDataGenerator) GenerateWorkday(midnight time.Time) error {
	clock := func(h, m int) model.EpochMillis {
		return model.EpochMillis(midnight.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute).UnixMilli())
	}

	markers := []model.RawManualMarker{
		{ID: "wd-1", Activity: "Writing", Timestamp: clock(9, 0)},
		{ID: "wd-2", Activity: "Lunch", Timestamp: clock(12, 0)},
		{ID: "wd-3", Activity: "Review", Timestamp: clock(13, 0), ClassificationID: "work"},
	}

	var events []model.RawPassiveEvent
	for i := 0; i < 36; i++ {
		events = append(events, windowEvent(fmt.Sprintf("editor-%02d", i), "Editor", clock(9, 5*i), 300))
	}
	events = append(events, windowEvent("lock", "loginwindow", clock(12, 0), 3600))
	for i := 0; i < 4; i++ {
		events = append(events, windowEvent(fmt.Sprintf("browser-%d", i), "Browser", clock(13, 15*i), 900))
	}
	events = append(events, model.RawPassiveEvent{
		ID: "web-0", SourceID: WebBucket, SourceClassification: model.BucketTypeWeb,
		Timestamp: clock(13, 0), DurationSeconds: 600, DisplayName: "Hidden tab",
	})

	status := []model.RawPassiveEvent{
		statusEvent("afk-0", model.StatusActive, clock(9, 0), 3*3600),
		statusEvent("afk-1", model.StatusInactive, clock(12, 0), 3600),
		statusEvent("afk-2", model.StatusActive, clock(13, 0), 3600),
	}

	buckets := []model.Bucket{
		{ID: WindowBucket, Type: model.BucketTypeWindow, IsVisible: true},
		{ID: PresenceBucket, Type: model.BucketTypePresence, IsVisible: true},
		{ID: WebBucket, Type: model.BucketTypeWeb, IsVisible: false},
	}

	if err := g.WriteMarkers(MarkersFile, markers...); err != nil {
		return err
	}
	if err := g.WriteEvents(filepath.Join("tracker", EventsFile), events...); err != nil {
		return err
	}
	if err := g.WriteEvents(filepath.Join("tracker", "events-afk.jsonl"), status...); err != nil {
		return err
	}
	return g.WriteBuckets(filepath.Join("tracker", BucketsFile), buckets...)
}

// CreateEmptyDataDir creates the base directory with empty export files.
func (g *TestDataGenerator) CreateEmptyDataDir() error {
	for _, name := range []string{MarkersFile, EventsFile, BucketsFile} {
		if err := g.WriteRaw(name); err != nil {
			return err
		}
	}
	return nil
}

// CleanupTestData removes all generated test data
func (g *TestDataGenerator) CleanupTestData() error {
	return os.RemoveAll(g.baseDir)
}

func (g *TestDataGenerator) path(rel string) string {
	return filepath.Join(g.baseDir, rel)
}

func windowEvent(id, app string, ts model.EpochMillis, seconds float64) model.RawPassiveEvent {
	return model.RawPassiveEvent{
		ID:                   id,
		SourceID:             WindowBucket,
		SourceClassification: model.BucketTypeWindow,
		Timestamp:            ts,
		DurationSeconds:      seconds,
		Payload:              map[string]any{"app": app, "title": app + " window"},
	}
}

func statusEvent(id, status string, ts model.EpochMillis, seconds float64) model.RawPassiveEvent {
	return model.RawPassiveEvent{
		ID:                   id,
		SourceID:             PresenceBucket,
		SourceClassification: model.BucketTypePresence,
		Timestamp:            ts,
		DurationSeconds:      seconds,
		Payload:              map[string]any{"status": status},
	}
}

// writeJSONL writes one JSON document per line
func writeJSONL[T any](filename string, entries []T) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := sonic.ConfigStd.NewEncoder(file)
	for _, entry := range entries {
		if err := encoder.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}
