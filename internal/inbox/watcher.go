// Package inbox watches a directory for request files and hands each settled
// file to a handler once writes have stopped for the debounce delay.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/briefguard/internal/logger"
)

// DefaultExtensions are the request file types picked up from an inbox
var DefaultExtensions = []string{".json", ".yaml", ".yml"}

// Handler processes one settled file
type Handler func(ctx context.Context, path string)

// Watcher debounces file events of a single directory
type Watcher struct {
	dir        string
	debounce   time.Duration
	extensions map[string]bool
	watcher    *fsnotify.Watcher
	logger     *logger.Logger

	// Last event time per path, drained by the flush ticker
	pending map[string]time.Time
}

// New starts watching dir. Events are buffered from this point on, so files
// written after New returns are never missed.
func New(dir string, extensions []string, debounce time.Duration, log *logger.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if log == nil {
		log = logger.NewNop()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat inbox: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}

	return &Watcher{
		dir:        dir,
		debounce:   debounce,
		extensions: exts,
		watcher:    fsw,
		logger:     log,
		pending:    make(map[string]time.Time),
	}, nil
}

// Existing lists matching files already present in the inbox, sorted by name
func (w *Watcher) Existing() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !w.matches(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Run delivers settled files to handle until ctx is cancelled. Files are
// handled one at a time on the calling goroutine. The watcher is closed on
// return.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer func() { _ = w.watcher.Close() }()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox watcher error", "error", err)

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if ctx.Err() != nil {
					return nil
				}
				handle(ctx, path)
			}
		}
	}
}

// Close stops watching without running
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.pending, event.Name)
		return
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		w.pending[event.Name] = time.Now()
		w.logger.Debug("inbox change detected", "path", event.Name, "op", event.Op.String())
	}
}

// settled removes and returns the pending paths quiet for at least the debounce delay
func (w *Watcher) settled(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		ready = append(ready, path)
	}
	sort.Strings(ready)
	return ready
}

func (w *Watcher) matches(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(base))]
}
