package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/penwyp/go-day-timeline/internal/util"
)

// Default glob patterns, relative to the base directory.
const (
	DefaultMarkersPattern = "**/markers*.jsonl"
	DefaultEventsPattern  = "**/events*.jsonl"
	DefaultBucketsPattern = "**/buckets*.jsonl"
)

// FileScanner scans the data directory for record files
type FileScanner struct {
	baseDir        string
	markersPattern string
	eventsPattern  string
	bucketsPattern string
}

// ScanResult lists the files found per record kind, sorted by path.
type ScanResult struct {
	Markers []string
	Events  []string
	Buckets []string
}

// All returns every file of the result.
func (r ScanResult) All() []string {
	all := make([]string, 0, len(r.Markers)+len(r.Events)+len(r.Buckets))
	all = append(all, r.Markers...)
	all = append(all, r.Events...)
	return append(all, r.Buckets...)
}

// Empty reports whether nothing was found.
func (r ScanResult) Empty() bool {
	return len(r.Markers) == 0 && len(r.Events) == 0 && len(r.Buckets) == 0
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir:        baseDir,
		markersPattern: DefaultMarkersPattern,
		eventsPattern:  DefaultEventsPattern,
		bucketsPattern: DefaultBucketsPattern,
	}
}

// WithPatterns overrides the glob patterns; empty values keep the default.
func (s *FileScanner) WithPatterns(markers, events, buckets string) (*FileScanner, error) {
	for _, p := range []string{markers, events, buckets} {
		if p != "" && !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	if markers != "" {
		s.markersPattern = markers
	}
	if events != "" {
		s.eventsPattern = events
	}
	if buckets != "" {
		s.bucketsPattern = buckets
	}
	return s, nil
}

// BaseDir returns the scanned directory.
func (s *FileScanner) BaseDir() string {
	return s.baseDir
}

// Scan walks the base directory and classifies every file matching one of
// the patterns. A file matching several patterns is classified by the first
// one (markers, events, buckets). A missing directory yields an empty result.
func (s *FileScanner) Scan() (ScanResult, error) {
	start := time.Now()
	var result ScanResult
	dirCount := 0
	totalCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning directory: %s", s.baseDir))

	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}

		if d.IsDir() {
			dirCount++
			return nil
		}

		totalCount++
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return nil
		}
		rel = strings.ToLower(filepath.ToSlash(rel))

		switch {
		case match(s.markersPattern, rel):
			result.Markers = append(result.Markers, path)
		case match(s.eventsPattern, rel):
			result.Events = append(result.Events, path)
		case match(s.bucketsPattern, rel):
			result.Buckets = append(result.Buckets, path)
		}
		return nil
	})

	sort.Strings(result.Markers)
	sort.Strings(result.Events)
	sort.Strings(result.Buckets)

	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d directories, %d files, found %d marker, %d event, %d bucket files",
		time.Since(start), dirCount, totalCount, len(result.Markers), len(result.Events), len(result.Buckets)))

	return result, err
}

// match compares case-insensitively; rel is already lower case.
func match(pattern, rel string) bool {
	ok, err := doublestar.Match(strings.ToLower(pattern), rel)
	return err == nil && ok
}
