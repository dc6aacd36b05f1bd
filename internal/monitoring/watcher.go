package monitoring

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-day-timeline/internal/util"
)

// FileEvent is a change to a watched data file.
type FileEvent struct {
	Path      string
	Operation string
}

// FileWatcher reports changes to data files below a set of directories.
// New subdirectories are picked up as they appear.
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	paths      []string
	extensions []string
	events     chan FileEvent
	done       chan struct{}
	closeOnce  sync.Once
}

// NewFileWatcher watches paths recursively for files with one of the given
// extensions (".jsonl" when none are given).
func NewFileWatcher(paths []string, extensions ...string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{".jsonl"}
	}

	fw := &FileWatcher{
		watcher:    watcher,
		paths:      paths,
		extensions: extensions,
		events:     make(chan FileEvent, 100),
		done:       make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	// Recursively add directories
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fw.watcher.Add(p)
		}
		return nil
	})
}

func (fw *FileWatcher) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range fw.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)
	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addPath(event.Name); err != nil {
						util.LogWarn("Failed to watch new directory", util.F("path", event.Name), util.F("error", err.Error()))
					}
					continue
				}
			}

			if !fw.matches(event.Name) {
				continue
			}

			fe := FileEvent{Path: event.Name, Operation: event.Op.String()}
			select {
			case fw.events <- fe:
			default:
				// a reload is already pending; dropping duplicates is fine
				util.LogDebug("File event dropped, queue full", util.F("path", event.Name))
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

// Events delivers file changes until the watcher is closed.
func (fw *FileWatcher) Events() <-chan FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}
