package util

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Clock supplies "now". The engine never reads the wall clock itself; callers
// pass a Clock's reading in explicitly.
type Clock interface {
	Now() time.Time
}

// TimeProvider is a timezone-aware wall clock
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// LoadLocation resolves "", "Local" and IANA names
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || strings.EqualFold(timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Shanghai, Europe/London", timezone, err)
	}
	return loc, nil
}

// NewTimeProvider creates a provider for the timezone
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	tp := &TimeProvider{}
	if err := tp.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return tp, nil
}

// InitializeTimeProvider initializes the global time provider with the specified timezone
func InitializeTimeProvider(timezone string) error {
	provider, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider instance
// If not initialized, it defaults to Local timezone
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	defer mu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local}
	}
	return globalTimeProvider
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return err
	}
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.location = loc
	return nil
}

// Location returns the configured timezone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	return time.Now().In(tp.Location())
}

// Today returns the local calendar date of now as YYYY-MM-DD
func (tp *TimeProvider) Today() string {
	return tp.Now().Format("2006-01-02")
}

// Format formats a time according to the layout in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.Location()).Format(layout)
}

// FormatMillis formats an epoch-ms instant in the configured timezone
func (tp *TimeProvider) FormatMillis(ms int64, layout string) string {
	return tp.Format(time.UnixMilli(ms), layout)
}

// FixedClock always reports the same instant
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
