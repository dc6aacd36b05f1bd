package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/data/parser"
	"github.com/penwyp/go-day-timeline/internal/data/scanner"
	"github.com/penwyp/go-day-timeline/internal/data/store"
	"github.com/penwyp/go-day-timeline/internal/util"
)

var ErrNoData = errors.New("no data files found")

// Source hands raw records to the engine.
type Source interface {
	Load(ctx context.Context) (timeline.Inputs, error)
	Describe() string
}

// DirSource reads JSONL exports from a directory tree.
type DirSource struct {
	scanner *scanner.FileScanner
	parser  *parser.Parser
}

func NewDirSource(s *scanner.FileScanner, p *parser.Parser) *DirSource {
	return &DirSource{scanner: s, parser: p}
}

func (d *DirSource) Describe() string {
	return "dir:" + d.scanner.BaseDir()
}

// BaseDir is the directory to watch for changes.
func (d *DirSource) BaseDir() string {
	return d.scanner.BaseDir()
}

// Load scans and parses every data file. Records keep file order (sorted by
// path) then line order, which is the authored order of markers. Files that
// fail to parse are logged and skipped.
func (d *DirSource) Load(ctx context.Context) (timeline.Inputs, error) {
	start := time.Now()
	scan, err := d.scanner.Scan()
	if err != nil {
		return timeline.Inputs{}, fmt.Errorf("scan %s: %w", d.scanner.BaseDir(), err)
	}
	if scan.Empty() {
		return timeline.Inputs{}, fmt.Errorf("%w in %s", ErrNoData, d.scanner.BaseDir())
	}

	var requests []parser.FileRequest
	for _, f := range scan.Markers {
		requests = append(requests, parser.FileRequest{File: f, Kind: parser.KindMarkers})
	}
	for _, f := range scan.Events {
		requests = append(requests, parser.FileRequest{File: f, Kind: parser.KindEvents})
	}
	for _, f := range scan.Buckets {
		requests = append(requests, parser.FileRequest{File: f, Kind: parser.KindBuckets})
	}

	byFile := make(map[string]parser.Records, len(requests))
	skipped := 0
	for res := range d.parser.ParseFiles(requests) {
		if res.Error != nil {
			util.LogWarn("Skipping unreadable data file", util.F("file", res.File), util.F("error", res.Error.Error()))
			continue
		}
		byFile[res.File] = res.Records
		skipped += res.Records.Skipped
	}
	if err := ctx.Err(); err != nil {
		return timeline.Inputs{}, err
	}

	var inputs timeline.Inputs
	for _, req := range requests {
		records, ok := byFile[req.File]
		if !ok {
			continue
		}
		inputs.Markers = append(inputs.Markers, records.Markers...)
		inputs.Events = append(inputs.Events, records.Events...)
		inputs.Buckets = append(inputs.Buckets, records.Buckets...)
	}

	util.LogDebug("Loaded data directory",
		util.F("dir", d.scanner.BaseDir()),
		util.F("files", len(byFile)),
		util.F("markers", len(inputs.Markers)),
		util.F("events", len(inputs.Events)),
		util.F("buckets", len(inputs.Buckets)),
		util.F("skipped_lines", skipped),
		util.F("duration", time.Since(start).String()))
	return inputs, nil
}

// StoreSource reads records from the SQLite store. When FromMs/ToMs are set
// only events overlapping that range are loaded; markers are always loaded
// in full since a day's last marker depends on the next one.
type StoreSource struct {
	Store  *store.SQLiteStore
	Path   string
	FromMs int64
	ToMs   int64
}

func (s *StoreSource) Describe() string {
	return "store:" + s.Path
}

func (s *StoreSource) Load(ctx context.Context) (timeline.Inputs, error) {
	markers, err := s.Store.ListMarkers(ctx)
	if err != nil {
		return timeline.Inputs{}, err
	}
	events, err := s.Store.ListEvents(ctx, s.FromMs, s.ToMs)
	if err != nil {
		return timeline.Inputs{}, err
	}
	buckets, err := s.Store.ListBuckets(ctx)
	if err != nil {
		return timeline.Inputs{}, err
	}
	util.LogDebug("Loaded store",
		util.F("path", s.Path),
		util.F("markers", len(markers)),
		util.F("events", len(events)),
		util.F("buckets", len(buckets)))
	return timeline.Inputs{Markers: markers, Events: events, Buckets: buckets}, nil
}
