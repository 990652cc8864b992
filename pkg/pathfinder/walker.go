package pathfinder

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/sitegen/pkg/logger"
)

// Matcher decides whether an absolute path should be skipped. *ignore.Matcher satisfies it.
type Matcher interface {
	Match(path string, isDir bool) bool
}

// WalkOptions configures a Walker. The zero value walks every regular file.
type WalkOptions struct {
	// Ignore skips matching files and prunes matching directories.
	Ignore Matcher
	// Exclude holds doublestar patterns matched against the slash-separated
	// path relative to the root.
	Exclude []string
	// MaxDepth limits recursion below the root; 0 means unlimited.
	MaxDepth int
}

// WalkStats counts what the last walk saw.
type WalkStats struct {
	Files   int
	Dirs    int
	Skipped int
}

// Walker produces a lazy, depth-first sequence of regular files under a root.
type Walker struct {
	root  string
	opts  WalkOptions
	stats WalkStats
}

// NewWalker validates the exclude patterns and resolves root to an absolute path.
func NewWalker(root string, opts WalkOptions) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve walk root %s: %w", root, err)
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Walker{root: abs, opts: opts}, nil
}

// Root returns the absolute walk root.
func (w *Walker) Root() string { return w.root }

// Stats returns counters for the most recent (or in-progress) walk.
func (w *Walker) Stats() WalkStats { return w.stats }

// Files returns the file sequence. Each range over it lists the tree again.
// A directory that cannot be listed yields its error once and ends the sequence.
// Symlinks are neither followed nor yielded.
func (w *Walker) Files() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		w.stats = WalkStats{}
		w.walkDir(w.root, 0, yield)
	}
}

// walkDir returns false once the consumer stopped or an error was yielded.
func (w *Walker) walkDir(dir string, depth int, yield func(string, error) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		yield("", fmt.Errorf("failed to list %s: %w", dir, err))
		return false
	}
	w.stats.Dirs++

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		isDir := entry.IsDir()

		if w.skip(full, isDir) {
			w.stats.Skipped++
			logger.Trace("walk skip", logger.Path(full))
			continue
		}

		switch {
		case isDir:
			if w.opts.MaxDepth > 0 && depth+1 > w.opts.MaxDepth {
				continue
			}
			if !w.walkDir(full, depth+1, yield) {
				return false
			}
		case entry.Type().IsRegular():
			w.stats.Files++
			if !yield(full, nil) {
				return false
			}
		}
	}
	return true
}

func (w *Walker) skip(path string, isDir bool) bool {
	if w.opts.Ignore != nil && w.opts.Ignore.Match(path, isDir) {
		return true
	}
	if len(w.opts.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Walk is shorthand for NewWalker(root, opts).Files().
func Walk(root string, opts WalkOptions) iter.Seq2[string, error] {
	w, err := NewWalker(root, opts)
	if err != nil {
		return func(yield func(string, error) bool) { yield("", err) }
	}
	return w.Files()
}
