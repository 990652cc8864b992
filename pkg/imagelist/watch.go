package imagelist

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fulmenhq/sitegen/pkg/logger"
)

// DefaultDebounce groups bursts of file events (copying a folder of images)
// into one regeneration.
const DefaultDebounce = 250 * time.Millisecond

// WatchOptions tunes Watch.
type WatchOptions struct {
	Debounce time.Duration
	// LoadPrevious is called before every run; nil keeps Options.Previous.
	LoadPrevious func() (Previous, error)
	// OnRun observes each finished run.
	OnRun func(*Result, error)
}

// Watch runs Generate once, then again after every burst of image or
// directory changes under opts.Root, until ctx is cancelled. Each run is a
// full regeneration.
func Watch(ctx context.Context, opts Options, wo WatchOptions) error {
	if wo.Debounce <= 0 {
		wo.Debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addTree(watcher, opts.Root); err != nil {
		return err
	}

	run := func() {
		if wo.LoadPrevious != nil {
			prev, err := wo.LoadPrevious()
			if err != nil {
				logger.Warn("previous manifest unavailable, deriving alt text", logger.Err(err))
				prev = Previous{}
			}
			opts.Previous = prev
		}
		res, err := Generate(ctx, opts)
		if err != nil {
			logger.Error("image manifest generation failed", logger.Err(err))
		}
		if wo.OnRun != nil {
			wo.OnRun(res, err)
		}
	}

	run()

	timer := time.NewTimer(wo.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := addTree(watcher, ev.Name); err != nil {
						logger.Warn("cannot watch new directory", logger.Path(ev.Name), logger.Err(err))
					}
				}
			}
			logger.Debug("change detected", logger.Path(ev.Name), logger.String("op", ev.Op.String()))
			timer.Reset(wo.Debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", logger.Err(err))
		case <-timer.C:
			run()
		}
	}
}

// relevant filters out events for files that can never enter the manifest,
// including the generated module itself.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if IsImage(ev.Name) {
		return true
	}
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		// a removed directory may have held images
		return filepath.Ext(ev.Name) == ""
	}
	st, err := os.Stat(ev.Name)
	return err == nil && st.IsDir()
}

// addTree registers root and every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}
