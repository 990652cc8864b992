package imagelist

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/fulmenhq/sitegen/pkg/safeio"
)

// Extensions is the fixed allow-list of image extensions, lower case with dot.
var Extensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
	".tiff": true,
	".svg":  true,
}

// IsImage reports whether path has an allow-listed extension, ignoring case.
// Dotfiles such as ".png" have no extension.
func IsImage(path string) bool {
	ext := filepath.Ext(path)
	return ext != filepath.Base(path) && Extensions[strings.ToLower(ext)]
}

// Outcome classifies what happened to a single walked file.
type Outcome int

const (
	Accepted Outcome = iota
	SkippedExtension
	SkippedUnreadable
	SkippedUndecodable
	SkippedNoDimensions
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case SkippedExtension:
		return "extension"
	case SkippedUnreadable:
		return "unreadable"
	case SkippedUndecodable:
		return "undecodable"
	case SkippedNoDimensions:
		return "no-dimensions"
	default:
		return "unknown"
	}
}

// Candidate is an extracted image before alt text is resolved.
type Candidate struct {
	Key      string
	FileName string
	RelPath  string
	Width    int
	Height   int
}

// Extractor turns absolute file paths under Root into candidates.
type Extractor struct {
	Root   string
	Prober Prober
}

// NewExtractor uses DefaultProber when p is nil.
func NewExtractor(root string, p Prober) *Extractor {
	if p == nil {
		p = DefaultProber{}
	}
	return &Extractor{Root: root, Prober: p}
}

// Extract classifies path and reads its dimensions. Every failure is logged
// and reported through the Outcome; none of them is fatal.
func (e *Extractor) Extract(path string) (Candidate, Outcome) {
	ext := filepath.Ext(path)
	if ext == filepath.Base(path) {
		// a dotfile such as ".png" is all name, no extension
		ext = ""
	}
	if !Extensions[strings.ToLower(ext)] {
		logger.Info("ignoring "+strings.ToLower(ext), logger.Path(path))
		return Candidate{}, SkippedExtension
	}

	data, err := safeio.ReadFileContained(e.Root, path)
	if err != nil {
		logger.Error("Error processing image", logger.Path(path), logger.Err(err))
		return Candidate{}, SkippedUnreadable
	}

	dims, err := e.probe(data)
	if err != nil {
		logger.Error("Error processing image", logger.Path(path), logger.Err(err))
		return Candidate{}, SkippedUndecodable
	}
	if !dims.Valid() {
		logger.Debug("image has no positive dimensions", logger.Path(path))
		return Candidate{}, SkippedNoDimensions
	}

	rel, err := filepath.Rel(e.Root, path)
	if err != nil {
		logger.Error("Error processing image", logger.Path(path), logger.Err(err))
		return Candidate{}, SkippedUnreadable
	}

	name := BaseName(path)
	return Candidate{
		Key:      Identifier(name),
		FileName: name,
		RelPath:  filepath.ToSlash(rel),
		Width:    dims.Width,
		Height:   dims.Height,
	}, Accepted
}

// probe converts a panicking Prober into an error so one file cannot abort the run.
func (e *Extractor) probe(data []byte) (dims Dimensions, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("image probe panicked: %v", r)
		}
	}()
	return e.Prober.Probe(data)
}

// Merge resolves the alt text for c against the previous manifest.
func Merge(c Candidate, prev Previous) Entry {
	return Entry{
		Path:   c.RelPath,
		Width:  c.Width,
		Height: c.Height,
		Alt:    ResolveAlt(c.FileName, c.Key, prev),
	}
}
