package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-day-timeline/internal/core/model"
	"github.com/penwyp/go-day-timeline/internal/util"
)

// RecordKind names the record type a file holds.
type RecordKind string

const (
	KindMarkers RecordKind = "markers"
	KindEvents  RecordKind = "events"
	KindBuckets RecordKind = "buckets"
)

// CacheMissReason explains why a cached parse was discarded.
type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonNotFound
	MissReasonInode
	MissReasonSize
	MissReasonModTime
	MissReasonFingerprint
)

// Records is the decoded content of one file.
type Records struct {
	Markers []model.RawManualMarker
	Events  []model.RawPassiveEvent
	Buckets []model.Bucket
	// Skipped counts lines that were not valid JSON records.
	Skipped int
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File    string
	Kind    RecordKind
	Records Records
	Error   error
}

// FileRequest is one file to parse.
type FileRequest struct {
	File string
	Kind RecordKind
}

type cacheEntry struct {
	kind        RecordKind
	info        util.FileInfo
	fingerprint string
	records     Records
}

// Parser decodes JSONL record files. Results are cached per path and reused
// until the file's inode, size, modification time or tail fingerprint
// changes.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string]cacheEntry
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string]cacheEntry),
	}
}

// bucketLine lets a bucket omit isVisible; such buckets are visible.
type bucketLine struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	IsVisible *bool  `json:"isVisible"`
}

// ParseFile parses the file at path as records of the given kind. Invalid
// lines are skipped and counted, never fatal.
func (p *Parser) ParseFile(path string, kind RecordKind) (Records, error) {
	info, err := util.GetFileInfo(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to stat file: %s - %v", path, err))
		return Records{}, err
	}
	fingerprint, err := util.CalculateFileFingerprint(path)
	if err != nil {
		return Records{}, err
	}

	if records, reason := p.cached(path, kind, *info, fingerprint); reason == MissReasonNone {
		return records, nil
	} else if reason != MissReasonNotFound {
		util.LogDebug(fmt.Sprintf("Cache invalidated for %s (reason %d)", path, reason))
	}

	util.LogDebug(fmt.Sprintf("Start parsing file: %s", path))

	file, err := os.Open(path)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to open file: %s - %v", path, err))
		return Records{}, err
	}
	defer file.Close()

	var records Records
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := decodeLine(line, kind, &records); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %s:%d - %v", path, lineCount, err))
			records.Skipped++
		}
	}

	if err := scanner.Err(); err != nil {
		util.LogDebug(fmt.Sprintf("Error scanning file: %s - %v", path, err))
		return Records{}, err
	}

	p.mu.Lock()
	p.cache[path] = cacheEntry{kind: kind, info: *info, fingerprint: fingerprint, records: records}
	p.mu.Unlock()

	return records, nil
}

func decodeLine(line []byte, kind RecordKind, records *Records) error {
	switch kind {
	case KindMarkers:
		var m model.RawManualMarker
		if err := sonic.Unmarshal(line, &m); err != nil {
			return err
		}
		records.Markers = append(records.Markers, m)
	case KindEvents:
		var ev model.RawPassiveEvent
		if err := sonic.Unmarshal(line, &ev); err != nil {
			return err
		}
		records.Events = append(records.Events, ev)
	case KindBuckets:
		var b bucketLine
		if err := sonic.Unmarshal(line, &b); err != nil {
			return err
		}
		records.Buckets = append(records.Buckets, model.Bucket{
			ID:        b.ID,
			Type:      b.Type,
			IsVisible: b.IsVisible == nil || *b.IsVisible,
		})
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	return nil
}

func (p *Parser) cached(path string, kind RecordKind, info util.FileInfo, fingerprint string) (Records, CacheMissReason) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.cache[path]
	switch {
	case !ok || entry.kind != kind:
		return Records{}, MissReasonNotFound
	case entry.info.Inode != info.Inode:
		return Records{}, MissReasonInode
	case entry.info.Size != info.Size:
		return Records{}, MissReasonSize
	case entry.info.ModTime != info.ModTime:
		return Records{}, MissReasonModTime
	case entry.fingerprint != fingerprint:
		return Records{}, MissReasonFingerprint
	}
	return entry.records, MissReasonNone
}

// Invalidate drops the cached parse of path.
func (p *Parser) Invalidate(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []FileRequest) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency))

	semaphore := make(chan struct{}, p.concurrency)

	for _, req := range files {
		wg.Add(1)
		go func(req FileRequest) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			fileStart := time.Now()
			records, err := p.ParseFile(req.File, req.Kind)
			if err != nil {
				util.LogDebug(fmt.Sprintf("File parsing failed: %s, duration %v - %v", req.File, time.Since(fileStart), err))
			}

			results <- ParseResult{
				File:    req.File,
				Kind:    req.Kind,
				Records: records,
				Error:   err,
			}
		}(req)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent parsing finished, total duration: %v", time.Since(start)))
	}()

	return results
}
