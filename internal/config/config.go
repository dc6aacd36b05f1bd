package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/penwyp/go-day-timeline/internal/core/constants"
	"github.com/penwyp/go-day-timeline/internal/core/model"
	"github.com/penwyp/go-day-timeline/internal/core/timeline"
	"github.com/penwyp/go-day-timeline/internal/util"
)

var ErrInvalidConfig = errors.New("invalid config")

// Data sources
const (
	SourceDir   = "dir"
	SourceStore = "store"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config is the file-backed configuration. Command-line flags override it.
type Config struct {
	// Data location
	Source  string `toml:"source"`
	DataDir string `toml:"data_dir"`
	DBPath  string `toml:"db_path"`

	// Display settings
	Timezone    string `toml:"timezone"`
	Output      string `toml:"output"`
	ShowManual  bool   `toml:"show_manual"`
	ShowPassive bool   `toml:"show_passive"`

	// Reconstruction settings
	BlockWidth              time.Duration `toml:"block_width"`
	GroupGapThreshold       time.Duration `toml:"group_gap_threshold"`
	SlotSize                time.Duration `toml:"slot_size"`
	PresenceBucketType      string        `toml:"presence_bucket_type"`
	InactiveClassifications []string      `toml:"inactive_classifications"`

	// Refresh settings
	TickInterval    time.Duration `toml:"tick_interval"`
	RefreshInterval time.Duration `toml:"refresh_interval"`

	// Performance settings
	Concurrency int `toml:"concurrency"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	LogFormat string `toml:"log_format"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Source:                  SourceDir,
		DataDir:                 "~/.local/share/go-day-timeline/data",
		DBPath:                  "~/.local/share/go-day-timeline/timeline.db",
		Timezone:                "Local",
		Output:                  OutputTable,
		ShowManual:              true,
		ShowPassive:             true,
		BlockWidth:              constants.DefaultBlockWidth,
		GroupGapThreshold:       constants.DefaultGroupGapThreshold,
		SlotSize:                constants.DefaultSlotSize,
		PresenceBucketType:      model.BucketTypePresence,
		InactiveClassifications: []string{"loginwindow"},
		TickInterval:            constants.LiveTickInterval,
		RefreshInterval:         10 * time.Second,
		Concurrency:             4,
		LogLevel:                "info",
		LogFormat:               "text",
	}
}

// DefaultPath is ~/.config/go-day-timeline/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "go-day-timeline", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error; an empty
// path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.DataDir = ExpandPath(cfg.DataDir)
	cfg.DBPath = ExpandPath(cfg.DBPath)
	cfg.LogFile = ExpandPath(cfg.LogFile)
	return cfg, nil
}

// Validate fills zero values with defaults and rejects unusable settings.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.Source == "" {
		c.Source = def.Source
	}
	if c.DataDir == "" {
		c.DataDir = ExpandPath(def.DataDir)
	}
	if c.DBPath == "" {
		c.DBPath = ExpandPath(def.DBPath)
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.BlockWidth == 0 {
		c.BlockWidth = def.BlockWidth
	}
	if c.SlotSize == 0 {
		c.SlotSize = def.SlotSize
	}
	if c.PresenceBucketType == "" {
		c.PresenceBucketType = def.PresenceBucketType
	}
	if c.TickInterval == 0 {
		c.TickInterval = def.TickInterval
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = def.RefreshInterval
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}

	switch c.Source {
	case SourceDir, SourceStore:
	default:
		return fmt.Errorf("%w: unknown source %q (want %s or %s)", ErrInvalidConfig, c.Source, SourceDir, SourceStore)
	}
	switch c.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("%w: unknown output %q (want %s or %s)", ErrInvalidConfig, c.Output, OutputTable, OutputJSON)
	}
	if _, err := util.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}
	if c.TickInterval < 100*time.Millisecond {
		return fmt.Errorf("%w: tick interval %v is too short", ErrInvalidConfig, c.TickInterval)
	}
	if !c.ShowManual && !c.ShowPassive {
		return fmt.Errorf("%w: at least one of show_manual and show_passive must be enabled", ErrInvalidConfig)
	}
	return nil
}

// TimelineOptions builds engine options for a day.
func (c *Config) TimelineOptions(dayKey string, loc *time.Location) timeline.Options {
	opts := timeline.DefaultOptions(dayKey, loc)
	opts.ShowManual = c.ShowManual
	opts.ShowPassive = c.ShowPassive
	opts.BlockWidth = c.BlockWidth
	opts.GroupGapThreshold = c.GroupGapThreshold
	opts.SlotSize = c.SlotSize
	opts.PresenceSourceClass = c.PresenceBucketType
	if c.InactiveClassifications != nil {
		opts.InactiveClassifications = append([]string(nil), c.InactiveClassifications...)
	}
	return opts
}

// ExpandPath expands a leading ~/ to the home directory.
func ExpandPath(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
