// Package watch reports changed Markdown files under a directory tree.
// Bursts of file system events are debounced into one batch of paths.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leonardomso/gfmlink/internal/logging"
	"github.com/leonardomso/gfmlink/internal/scanner"
)

// DefaultDebounce is the quiet period before a batch is reported.
const DefaultDebounce = 300 * time.Millisecond

// Handler receives the changed paths of one batch, sorted.
type Handler func(paths []string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMatch sets the predicate selecting the files to report. The default
// matches .md and .markdown files.
func WithMatch(match func(path string) bool) Option {
	return func(w *Watcher) {
		if match != nil {
			w.match = match
		}
	}
}

// Watcher watches a directory tree for changed files.
type Watcher struct {
	root     string
	debounce time.Duration
	match    func(path string) bool
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// New creates a Watcher for root and every directory below it. Hidden
// directories are skipped. A file root watches that single file.
func New(root string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		match:    IsMarkdown,
		logger:   logging.Discard(),
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// IsMarkdown reports whether path has one of scanner.MarkdownExtensions,
// ignoring case.
func IsMarkdown(path string) bool {
	return slices.Contains(scanner.MarkdownExtensions, strings.ToLower(filepath.Ext(path)))
}

func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	if !info.IsDir() {
		// Watch the parent: editors often replace files on save.
		if err := w.watcher.Add(filepath.Dir(root)); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
		target := filepath.Clean(root)
		match := w.match
		w.match = func(path string) bool { return filepath.Clean(path) == target && match(path) }
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.logger.Debug("Watching directory", logging.File(path))
		return nil
	})
}

// Run delivers batches of changed files to handle until ctx is done. The
// handler runs on the watch goroutine; events that arrive meanwhile are
// queued for the next batch.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer func() {
		_ = w.watcher.Close()
	}()

	var timer *time.Timer
	var fire <-chan time.Time
	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.accept(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", logging.Err(err))

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)
			w.logger.Debug("Files changed", logging.Count(len(paths)))
			handle(paths)
		}
	}
}

// accept reports whether event names a file to report. New directories are
// added to the watch list.
func (w *Watcher) accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logging.File(event.Name), logging.Err(err))
			}
			return false
		}
	}

	if !w.match(event.Name) {
		return false
	}
	// A rename reports the old name, which no longer exists.
	if _, err := os.Stat(event.Name); err != nil {
		return false
	}
	return true
}
