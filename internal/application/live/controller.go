package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/cache"
	"github.com/penwyp/go-day-timeline/internal/core/constants"
	"github.com/penwyp/go-day-timeline/internal/core/model"
	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/data/loader"
	"github.com/penwyp/go-day-timeline/internal/monitoring"
	"github.com/penwyp/go-day-timeline/internal/util"
)

// Renderer draws one frame.
type Renderer interface {
	Render(day *model.DayTimeline) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(day *model.DayTimeline) error

func (f RendererFunc) Render(day *model.DayTimeline) error { return f(day) }

// Config drives the controller.
type Config struct {
	// DayKey pins the displayed day; empty follows today across midnight.
	DayKey   string
	Location *time.Location
	// Options builds engine options for a day key.
	Options         func(dayKey string) timeline.Options
	TickInterval    time.Duration
	RefreshInterval time.Duration
}

// Controller keeps a day view current. Every tick only re-runs
// Prepared.At with the new now; inputs are re-loaded on file events or on
// the refresh interval, and the prepare step is memoized by content.
type Controller struct {
	config   Config
	source   loader.Source
	cache    *cache.MemoryCache
	clock    util.Clock
	renderer Renderer
	events   <-chan monitoring.FileEvent

	mu           sync.RWMutex
	refreshMutex sync.Mutex
	inputs       timeline.Inputs
	prepared     *timeline.Prepared
	last         *model.DayTimeline
	loads        int
}

// NewController wires a controller. events may be nil when nothing is watched.
func NewController(cfg Config, source loader.Source, memo *cache.MemoryCache, clock util.Clock, renderer Renderer, events <-chan monitoring.FileEvent) (*Controller, error) {
	if source == nil || renderer == nil || clock == nil {
		return nil, fmt.Errorf("live controller needs a source, a clock and a renderer")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Options == nil {
		loc := cfg.Location
		cfg.Options = func(dayKey string) timeline.Options { return timeline.DefaultOptions(dayKey, loc) }
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = constants.LiveTickInterval
	}
	if memo == nil {
		memo = cache.NewMemoryCache()
	}
	return &Controller{
		config:   cfg,
		source:   source,
		cache:    memo,
		clock:    clock,
		renderer: renderer,
		events:   events,
	}, nil
}

// Reload fetches fresh inputs and re-prepares the day. On failure the
// previous inputs and prepared day stay in place.
func (c *Controller) Reload(ctx context.Context) error {
	c.refreshMutex.Lock()
	defer c.refreshMutex.Unlock()

	inputs, err := c.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.source.Describe(), err)
	}

	c.cache.Clear()
	prepared, err := c.prepare(inputs, c.clock.Now())
	if err != nil {
		c.cache.CancelClear()
		return err
	}
	c.cache.CommitClear()

	c.mu.Lock()
	c.inputs = inputs
	c.prepared = prepared
	c.loads++
	c.mu.Unlock()

	util.LogDebug("Live view reloaded",
		util.F("source", c.source.Describe()),
		util.F("day", prepared.Window().Key),
		util.F("markers", len(inputs.Markers)),
		util.F("events", len(inputs.Events)))
	return nil
}

func (c *Controller) prepare(inputs timeline.Inputs, now time.Time) (*timeline.Prepared, error) {
	today := timeline.DayKeyOf(now.UnixMilli(), c.config.Location)
	dayKey := c.config.DayKey
	if dayKey == "" {
		dayKey = today
	}
	return c.cache.GetOrPrepare(inputs, c.config.Options(dayKey), today)
}

// Tick renders the current frame. Crossing midnight re-prepares from the
// inputs already in memory, which closes yesterday's live interval.
func (c *Controller) Tick() (*model.DayTimeline, error) {
	now := c.clock.Now()
	today := timeline.DayKeyOf(now.UnixMilli(), c.config.Location)

	c.mu.RLock()
	prepared, inputs := c.prepared, c.inputs
	c.mu.RUnlock()
	if prepared == nil {
		return nil, fmt.Errorf("live view has no data yet")
	}

	if prepared.Today() != today {
		c.cache.PruneToday(today)
		fresh, err := c.prepare(inputs, now)
		if err != nil {
			return nil, err
		}
		util.LogInfo("Day changed, re-preparing", util.F("today", today))
		c.mu.Lock()
		c.prepared = fresh
		c.mu.Unlock()
		prepared = fresh
	}

	day := prepared.At(now.UnixMilli())
	c.mu.Lock()
	c.last = day
	c.mu.Unlock()

	if err := c.renderer.Render(day); err != nil {
		return day, fmt.Errorf("render: %w", err)
	}
	return day, nil
}

// Last returns the most recently rendered frame.
func (c *Controller) Last() *model.DayTimeline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Loads counts successful reloads.
func (c *Controller) Loads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

// Run loads, renders and keeps rendering until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	util.LogInfo("Starting live view", util.F("source", c.source.Describe()))

	if err := c.Reload(ctx); err != nil {
		return err
	}
	if _, err := c.Tick(); err != nil {
		return err
	}

	ticker := time.NewTicker(c.config.TickInterval)
	defer ticker.Stop()

	var refresh <-chan time.Time
	if c.config.RefreshInterval > 0 {
		refreshTicker := time.NewTicker(c.config.RefreshInterval)
		defer refreshTicker.Stop()
		refresh = refreshTicker.C
	}

	events := c.events
	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Stopping live view")
			return nil

		case <-ticker.C:
			if _, err := c.Tick(); err != nil {
				util.LogWarn("Live tick failed", util.F("error", err.Error()))
			}

		case <-refresh:
			c.reloadAndTick(ctx)

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			util.LogDebug("Data file changed", util.F("path", event.Path), util.F("op", event.Operation))
			c.reloadAndTick(ctx)
		}
	}
}

func (c *Controller) reloadAndTick(ctx context.Context) {
	if err := c.Reload(ctx); err != nil {
		util.LogWarn("Reload failed, keeping previous data", util.F("error", err.Error()))
		return
	}
	if _, err := c.Tick(); err != nil {
		util.LogWarn("Live tick failed", util.F("error", err.Error()))
	}
}
