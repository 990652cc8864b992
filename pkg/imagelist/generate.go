package imagelist

import (
	"context"
	"fmt"
	"io"

	"github.com/fulmenhq/sitegen/pkg/exitcode"
	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/fulmenhq/sitegen/pkg/pathfinder"
	"github.com/google/uuid"
)

// Formatter rewrites a generated file in place without blocking the caller.
// Implementations must not report failures back to the pipeline.
type Formatter interface {
	FormatDetached(path string)
}

// Options configures a single generation run.
type Options struct {
	// Root is the image directory to scan.
	Root string
	// Output is the generated module path.
	Output string
	// Previous supplies alt text from the last run; nil means none.
	Previous Previous
	// Prober defaults to DefaultProber.
	Prober Prober
	// Formatter runs after a successful write; nil skips formatting.
	Formatter Formatter
	// Stdout receives the summary line; nil discards it.
	Stdout io.Writer
	Walk     pathfinder.WalkOptions
	Template TemplateOptions
	// DryRun builds the manifest without writing or formatting.
	DryRun bool
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Output   string
	Manifest Sorted
	Skipped  map[Outcome]int
}

// Generate walks Root, extracts and merges every image, sorts the manifest
// and writes it to Output. Only walk and write failures are returned; single
// bad files are logged and skipped.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	runID := uuid.NewString()
	walker, err := pathfinder.NewWalker(opts.Root, opts.Walk)
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	logger.Debug("image scan started", logger.String("run", runID), logger.Path(walker.Root()))

	extractor := NewExtractor(walker.Root(), opts.Prober)
	manifest := make(Manifest)
	skipped := make(map[Outcome]int)

	for path, err := range walker.Files() {
		if err != nil {
			return nil, exitcode.Wrapf(exitcode.FileSystemError, err, "image scan aborted")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, outcome := extractor.Extract(path)
		if outcome != Accepted {
			skipped[outcome]++
			continue
		}
		if existing, dup := manifest[c.Key]; dup {
			logger.Warn("duplicate image identifier, later file wins",
				logger.String("key", c.Key), logger.String("previous", existing.Path), logger.Path(c.RelPath))
		}
		manifest[c.Key] = Merge(c, opts.Previous)
	}

	sorted := Sort(manifest)
	res := &Result{RunID: runID, Output: opts.Output, Manifest: sorted, Skipped: skipped}
	stats := walker.Stats()
	logger.Debug("image scan finished",
		logger.String("run", runID),
		logger.Int("files", stats.Files),
		logger.Int("entries", len(sorted)))

	if opts.DryRun {
		return res, nil
	}

	if err := Write(sorted, opts.Output, opts.Template, opts.Stdout); err != nil {
		return nil, exitcode.Wrap(exitcode.FileSystemError, err)
	}

	if opts.Formatter != nil {
		opts.Formatter.FormatDetached(opts.Output)
	}
	return res, nil
}

// SkippedTotal sums every non-accepted outcome.
func (r *Result) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// String summarizes the run for log output.
func (r *Result) String() string {
	return fmt.Sprintf("%d entries, %d skipped", len(r.Manifest), r.SkippedTotal())
}
