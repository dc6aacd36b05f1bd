package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/util"
)

// DefaultMaxEntries bounds the memo. A schedule view prepares one entry per
// day, so this covers the longest schedule plus the live day.
const DefaultMaxEntries = 64

// MemoryCacheEntry is one memoized Prepare result.
type MemoryCacheEntry struct {
	Prepared     *timeline.Prepared
	DayKey       string
	Today        string
	CreatedAt    int64
	LastAccessed int64
	Hits         int
}

// Stats summarizes cache effectiveness.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// MemoryCache memoizes the now-independent part of a day reconstruction,
// keyed by the content fingerprint of its inputs. Re-rendering a day every
// tick only pays for Prepared.At.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*MemoryCacheEntry
	maxEntries int
	hits       int64
	misses     int64
	now        func() int64

	// Double buffering support
	pendingClear  bool
	shadowEntries map[string]*MemoryCacheEntry
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithLimit(DefaultMaxEntries)
}

// NewMemoryCacheWithLimit creates a cache holding at most maxEntries results;
// the least recently accessed entry is evicted first.
func NewMemoryCacheWithLimit(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]*MemoryCacheEntry),
		maxEntries: maxEntries,
		now:        func() int64 { return time.Now().UnixNano() },
	}
}

func (mc *MemoryCache) Set(key string, entry *MemoryCacheEntry) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if entry != nil {
		ts := mc.now()
		if entry.CreatedAt == 0 {
			entry.CreatedAt = ts
		}
		entry.LastAccessed = ts
	}

	// If pending clear, add to shadow buffer instead
	if mc.pendingClear && mc.shadowEntries != nil {
		mc.shadowEntries[key] = entry
		mc.evictLocked(mc.shadowEntries)
	} else {
		mc.entries[key] = entry
		mc.evictLocked(mc.entries)
	}
}

func (mc *MemoryCache) Get(key string) (*MemoryCacheEntry, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.entries[key]
	if mc.pendingClear && mc.shadowEntries != nil {
		if ok {
			// still in use, so it survives the commit
			mc.shadowEntries[key] = entry
			mc.evictLocked(mc.shadowEntries)
		} else {
			entry, ok = mc.shadowEntries[key]
		}
	}
	if ok && entry != nil {
		entry.LastAccessed = mc.now()
		entry.Hits++
	}
	return entry, ok
}

// GetOrPrepare returns the memoized Prepare result for inputs and opts, or
// runs Prepare and stores it. When the inputs cannot be fingerprinted the
// result is prepared without caching.
func (mc *MemoryCache) GetOrPrepare(inputs timeline.Inputs, opts timeline.Options, today string) (*timeline.Prepared, error) {
	key, err := timeline.Fingerprint(inputs, opts, today)
	if err != nil {
		util.LogWarn("MemoryCache: fingerprint failed, preparing without cache",
			util.F("day", opts.DayKey), util.F("error", err.Error()))
		return timeline.Prepare(inputs, opts, today)
	}

	if entry, ok := mc.Get(key); ok && entry != nil {
		mc.mu.Lock()
		mc.hits++
		mc.mu.Unlock()
		return entry.Prepared, nil
	}

	prepared, err := timeline.Prepare(inputs, opts, today)
	if err != nil {
		return nil, err
	}

	mc.mu.Lock()
	mc.misses++
	mc.mu.Unlock()
	mc.Set(key, &MemoryCacheEntry{Prepared: prepared, DayKey: opts.DayKey, Today: today})
	util.LogDebugf("MemoryCache: prepared day %s (key %.12s)", opts.DayKey, key)
	return prepared, nil
}

// evictLocked drops least recently accessed entries above the limit.
func (mc *MemoryCache) evictLocked(entries map[string]*MemoryCacheEntry) {
	if len(entries) <= mc.maxEntries {
		return
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lastAccessed(entries[keys[i]]) < lastAccessed(entries[keys[j]])
	})
	for _, k := range keys[:len(entries)-mc.maxEntries] {
		delete(entries, k)
	}
}

func lastAccessed(e *MemoryCacheEntry) int64 {
	if e == nil {
		return 0
	}
	return e.LastAccessed
}

// PruneToday removes entries prepared under a different "today". After
// midnight their live interval no longer matches the clock.
func (mc *MemoryCache) PruneToday(today string) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	removed := 0
	for k, e := range mc.entries {
		if e == nil || e.Today != today {
			delete(mc.entries, k)
			removed++
		}
	}
	if removed > 0 {
		util.LogDebugf("MemoryCache: pruned %d entries from a previous day", removed)
	}
	return removed
}

func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

func (mc *MemoryCache) Stats() Stats {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return Stats{Entries: len(mc.entries), Hits: mc.hits, Misses: mc.misses}
}

func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	// Mark cache as pending clear instead of immediately clearing
	mc.pendingClear = true
	mc.shadowEntries = make(map[string]*MemoryCacheEntry)

	util.LogDebug("MemoryCache: Marked for pending clear, maintaining data until new data is ready")
}

// CommitClear performs the actual cache clear after new data is loaded
func (mc *MemoryCache) CommitClear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.pendingClear && mc.shadowEntries != nil {
		mc.entries = mc.shadowEntries
		mc.shadowEntries = nil
		mc.pendingClear = false
		util.LogDebug("MemoryCache: Committed clear with new data")
	}
}

// CancelClear cancels a pending clear operation
func (mc *MemoryCache) CancelClear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.pendingClear = false
	mc.shadowEntries = nil
	util.LogDebug("MemoryCache: Cancelled pending clear")
}
