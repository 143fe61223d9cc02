package surface

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/ChatLens/internal/logger"
	"github.com/yildizm/ChatLens/internal/upload"
)

// DefaultSettleDelay is how long a dropped file must stay unchanged
// before it is delivered
const DefaultSettleDelay = 300 * time.Millisecond

// DropZoneConfig configures a DropZone
type DropZoneConfig struct {
	// Dir is the watched directory
	Dir string

	// SettleDelay defaults to DefaultSettleDelay
	SettleDelay time.Duration
}

// DropZone turns files appearing in a directory into drag and drop events.
// A new file produces DragEnter, then Drop once writes have settled, or
// DragLeave if it disappears first.
type DropZone struct {
	dir    string
	settle time.Duration
	sink   func(Event)
	log    *logger.Logger
}

// NewDropZone creates a drop zone delivering events to sink. sink is called
// from the goroutine running Run.
func NewDropZone(cfg DropZoneConfig, sink func(Event), log *logger.Logger) (*DropZone, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("drop directory is required")
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access drop directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drop target %s is not a directory", cfg.Dir)
	}

	settle := cfg.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if log == nil {
		log = logger.Discard()
	}

	return &DropZone{
		dir:    filepath.Clean(cfg.Dir),
		settle: settle,
		sink:   sink,
		log:    log.WithComponent("dropzone"),
	}, nil
}

// Dir returns the watched directory
func (d *DropZone) Dir() string {
	return d.dir
}

// Run watches the directory until ctx is done or the watcher fails
func (d *DropZone) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			d.log.Debug("failed to close watcher: %v", err)
		}
	}()

	if err := watcher.Add(d.dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	d.log.InfoWithFields("watching drop directory", []logger.Field{logger.F("dir", d.dir)})

	ready := make(chan string)
	done := make(chan struct{})
	timers := make(map[string]*time.Timer)
	defer func() {
		close(done)
		for _, timer := range timers {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			d.handleFSEvent(event, timers, ready, done)

		case path := <-ready:
			// A timer re-armed while firing may deliver twice
			if _, ok := timers[path]; !ok {
				continue
			}
			delete(timers, path)
			d.deliver(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			d.log.Warn("watcher error: %v", err)
		}
	}
}

// handleFSEvent tracks pending files and (re)arms their settle timer
func (d *DropZone) handleFSEvent(event fsnotify.Event, timers map[string]*time.Timer, ready chan<- string, done <-chan struct{}) {
	if ignored(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if timer, ok := timers[event.Name]; ok {
			timer.Reset(d.settle)
			return
		}
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return
		}
		if event.Has(fsnotify.Create) {
			d.sink(Event{Kind: DragEnter})
		} else {
			d.sink(Event{Kind: DragOver})
		}
		path := event.Name
		timers[path] = time.AfterFunc(d.settle, func() {
			select {
			case ready <- path:
			case <-done:
			}
		})

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if timer, ok := timers[event.Name]; ok {
			timer.Stop()
			delete(timers, event.Name)
			d.sink(Event{Kind: DragLeave})
		}
	}
}

// deliver sends a settled file as a Drop
func (d *DropZone) deliver(path string) {
	candidate, err := upload.CandidateFromPath(path)
	if err != nil {
		// Directories and files removed before settling end the drag
		d.log.DebugWithFields("skipping drop", []logger.Field{logger.File(path), logger.Error(err)})
		d.sink(Event{Kind: DragLeave})
		return
	}

	d.log.InfoWithFields("file dropped", []logger.Field{logger.File(candidate.Name), logger.Size(candidate.SizeBytes)})
	d.sink(Event{Kind: Drop, Files: []upload.Candidate{candidate}})
}

// ignored filters editor swap files and other hidden entries
func ignored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}
