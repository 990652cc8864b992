// Package demolist generates the demo index module from a pages directory.
package demolist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/sitegen/pkg/exitcode"
	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/fulmenhq/sitegen/pkg/safeio"
)

const (
	DefaultPattern   = "**/*.{tsx,jsx,mdx}"
	DefaultConstName = "demoList"
)

const moduleSource = "// Auto-generated, manual changes will be lost\n" +
	"export const {{{constName}}} = {{{list}}} as const;\n"

var moduleTemplate = raymond.MustParse(moduleSource)

// Demo is one page of the demo index.
type Demo struct {
	Name  string `json:"name"`
	Route string `json:"route"`
	Path  string `json:"path"`
}

// Options tunes Generate. The zero value uses DefaultPattern and DefaultConstName.
type Options struct {
	Patterns  []string
	ConstName string
	Stdout    io.Writer
}

// Generate collects the pages under searchPath with the default options and
// writes the demo index to outputPath.
func Generate(searchPath, outputPath string) error {
	_, err := GenerateWithOptions(searchPath, outputPath, Options{Stdout: os.Stdout})
	return err
}

// GenerateWithOptions is Generate with explicit patterns and output naming.
func GenerateWithOptions(searchPath, outputPath string, opts Options) ([]Demo, error) {
	demos, err := Collect(searchPath, opts.Patterns)
	if err != nil {
		return nil, err
	}
	content, err := Render(demos, opts.ConstName)
	if err != nil {
		return nil, err
	}
	if err := safeio.WriteFileEnsureDir(outputPath, content); err != nil {
		return nil, exitcode.Wrapf(exitcode.FileSystemError, err, "failed to write %s", outputPath)
	}
	if opts.Stdout != nil {
		_, _ = fmt.Fprintf(opts.Stdout, "Generated %d demos to %s\n", len(demos), outputPath)
	}
	return demos, nil
}

// Collect returns the demos under searchPath matching any of patterns, sorted
// by route. Files or directories starting with "_" are private and skipped.
func Collect(searchPath string, patterns []string) ([]Demo, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("invalid page pattern %q", p))
		}
	}

	st, err := os.Stat(searchPath)
	if err != nil {
		return nil, exitcode.Wrapf(exitcode.FileSystemError, err, "pages directory unavailable")
	}
	if !st.IsDir() {
		return nil, exitcode.Wrap(exitcode.FileSystemError, fmt.Errorf("%s is not a directory", searchPath))
	}

	fsys := os.DirFS(searchPath)
	seen := make(map[string]bool)
	var demos []Demo
	for _, p := range patterns {
		err := doublestar.GlobWalk(fsys, p, func(rel string, d fs.DirEntry) error {
			if d.IsDir() || seen[rel] || private(rel) {
				return nil
			}
			seen[rel] = true
			demos = append(demos, newDemo(rel))
			return nil
		})
		if err != nil {
			return nil, exitcode.Wrapf(exitcode.FileSystemError, err, "failed to scan %s", searchPath)
		}
	}

	sort.SliceStable(demos, func(i, j int) bool {
		if demos[i].Route != demos[j].Route {
			return demos[i].Route < demos[j].Route
		}
		return demos[i].Path < demos[j].Path
	})
	for i := 1; i < len(demos); i++ {
		if demos[i].Route == demos[i-1].Route {
			logger.Warn("two pages share a route",
				logger.String("route", demos[i].Route),
				logger.Path(demos[i-1].Path),
				logger.String("other", demos[i].Path))
		}
	}
	return demos, nil
}

func private(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, "_") {
			return true
		}
	}
	return false
}

func newDemo(rel string) Demo {
	noExt := strings.TrimSuffix(rel, path.Ext(rel))
	route := noExt
	if path.Base(route) == "index" {
		route = path.Dir(route)
		if route == "." {
			route = ""
		}
	}
	name := path.Base(noExt)
	if name == "index" {
		name = path.Base(route)
		if route == "" {
			name = "index"
		}
	}
	return Demo{Name: name, Route: "/" + route, Path: filepath.ToSlash(rel)}
}

// Render produces the demo index source.
func Render(demos []Demo, constName string) ([]byte, error) {
	if constName == "" {
		constName = DefaultConstName
	}
	if demos == nil {
		demos = []Demo{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(demos); err != nil {
		return nil, fmt.Errorf("failed to encode demo list: %w", err)
	}
	out, err := moduleTemplate.Exec(map[string]interface{}{
		"constName": constName,
		"list":      strings.TrimRight(buf.String(), "\n"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render demo list template: %w", err)
	}
	return []byte(out), nil
}

// IsNotExist reports whether err came from a missing pages directory.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
