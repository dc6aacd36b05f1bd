package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-day-timeline/internal/util"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewParser(t *testing.T) {
	parser := NewParser(4)
	assert.Equal(t, 4, parser.concurrency)
	assert.Empty(t, parser.cache)

	assert.Equal(t, 1, NewParser(0).concurrency)
}

func TestParseMarkers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "markers.jsonl", `{"id":"m0","activity":"Email","date":1710061200000,"goalId":"g1"}
{"id":"m1","activity":"Meeting","date":"2024-03-10T09:40:00Z"}
`)

	records, err := NewParser(1).ParseFile(path, KindMarkers)
	require.NoError(t, err)
	require.Len(t, records.Markers, 2)
	assert.Equal(t, "Email", records.Markers[0].Activity)
	assert.Equal(t, "g1", records.Markers[0].ClassificationID)
	assert.Equal(t, int64(1710061200000), records.Markers[0].Timestamp.Millis())
	assert.Equal(t, time.Date(2024, 3, 10, 9, 40, 0, 0, time.UTC).UnixMilli(), records.Markers[1].Timestamp.Millis())
	assert.Zero(t, records.Skipped)
}

func TestParseEventsSkipsInvalidLines(t *testing.T) {
	path := writeFile(t, t.TempDir(), "events.jsonl", `{"id":"e0","bucketId":"win","bucketType":"currentwindow","timestamp":1710061200000,"duration":12.5,"eventData":{"app":"Editor"}}
invalid json line here

{"id":"e1","bucketId":"win","bucketType":"currentwindow","timestamp":"not a time","duration":1}
{"id":"e2","bucketId":"afk","bucketType":"afkstatus","timestamp":1710061260000,"duration":60,"eventData":{"status":"afk"}}
`)

	records, err := NewParser(1).ParseFile(path, KindEvents)
	require.NoError(t, err)
	require.Len(t, records.Events, 2)
	assert.Equal(t, 2, records.Skipped)
	assert.Equal(t, "Editor", records.Events[0].PayloadString("app"))
	assert.Equal(t, 12.5, records.Events[0].DurationSeconds)
	assert.Equal(t, "afk", records.Events[1].PayloadString("status"))
}

func TestParseBucketsDefaultsToVisible(t *testing.T) {
	path := writeFile(t, t.TempDir(), "buckets.jsonl", `{"id":"win","type":"currentwindow"}
{"id":"web","type":"web.tab.current","isVisible":false}
{"id":"afk","type":"afkstatus","isVisible":true}
`)

	records, err := NewParser(1).ParseFile(path, KindBuckets)
	require.NoError(t, err)
	require.Len(t, records.Buckets, 3)
	assert.True(t, records.Buckets[0].IsVisible)
	assert.False(t, records.Buckets[1].IsVisible)
	assert.True(t, records.Buckets[2].IsVisible)
}

func TestParserCacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "markers.jsonl", `{"activity":"A","date":1}`+"\n")
	parser := NewParser(1)

	first, err := parser.ParseFile(path, KindMarkers)
	require.NoError(t, err)
	require.Len(t, first.Markers, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	reason := func() CacheMissReason {
		_, r := parser.cached(path, KindMarkers, mustInfo(t, path), mustFingerprint(t, path))
		return r
	}
	assert.Equal(t, MissReasonNone, reason())

	// appending changes the size
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"activity":"B","date":2}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, MissReasonSize, reason())

	second, err := parser.ParseFile(path, KindMarkers)
	require.NoError(t, err)
	assert.Len(t, second.Markers, 2)

	// same size, new mtime
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime().Add(time.Hour)))
	assert.Equal(t, MissReasonModTime, reason())

	parser.Invalidate(path)
	assert.Equal(t, MissReasonNotFound, reason())
}

func TestParseFileMissing(t *testing.T) {
	_, err := NewParser(1).ParseFile(filepath.Join(t.TempDir(), "missing.jsonl"), KindEvents)
	assert.Error(t, err)
}

func TestParseFilesConcurrently(t *testing.T) {
	dir := t.TempDir()
	var requests []FileRequest
	for i := 0; i < 6; i++ {
		var lines []string
		for j := 0; j <= i; j++ {
			lines = append(lines, fmt.Sprintf(`{"id":"e%d-%d","bucketId":"b","bucketType":"t","timestamp":%d,"duration":1}`, i, j, 1000*j))
		}
		path := writeFile(t, dir, fmt.Sprintf("events-%d.jsonl", i), strings.Join(lines, "\n"))
		requests = append(requests, FileRequest{File: path, Kind: KindEvents})
	}
	requests = append(requests, FileRequest{File: filepath.Join(dir, "missing.jsonl"), Kind: KindEvents})

	total := 0
	failures := 0
	for res := range NewParser(3).ParseFiles(requests) {
		if res.Error != nil {
			failures++
			continue
		}
		assert.Equal(t, KindEvents, res.Kind)
		total += len(res.Records.Events)
	}
	assert.Equal(t, 21, total)
	assert.Equal(t, 1, failures)
}

func mustInfo(t *testing.T, path string) util.FileInfo {
	t.Helper()
	info, err := util.GetFileInfo(path)
	require.NoError(t, err)
	return *info
}

func mustFingerprint(t *testing.T, path string) string {
	t.Helper()
	fp, err := util.CalculateFileFingerprint(path)
	require.NoError(t, err)
	return fp
}
