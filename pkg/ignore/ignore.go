// Package ignore provides gitignore-based file filtering using go-git
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the repo-level override file read on top of .gitignore.
const FileName = ".sitegenignore"

// Matcher provides gitignore-based file filtering relative to a scan root
type Matcher struct {
	root    string
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher with layered ignore files rooted at root:
// 1. always-ignored VCS and dependency directories
// 2. .gitignore files found under root
// 3. root/.sitegenignore
func NewMatcher(root string) (*Matcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ignore root: %w", err)
	}
	fs := osfs.New(abs)

	var patterns []gitignore.Pattern
	for _, p := range []string{".git/", "node_modules/"} {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}

	local, err := readIgnoreFile(filepath.Join(abs, FileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, p := range local {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	return &Matcher{root: abs, matcher: gitignore.NewMatcher(patterns)}, nil
}

// readIgnoreFile reads non-empty, non-comment lines from an ignore file
func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- fixed file name under the scan root
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// Match reports whether an absolute path under the root is ignored.
func (m *Matcher) Match(path string, isDir bool) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return false
	}
	parts := splitPath(filepath.ToSlash(rel))
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return []string{}
	}
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
