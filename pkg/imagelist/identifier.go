package imagelist

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// altReplacer turns filename separators into spaces.
var altReplacer = strings.NewReplacer("-", " ", "_", " ")

// BaseName returns the file name of path without its extension, NFC-normalized
// so that decomposed (macOS) and composed names agree.
func BaseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return norm.NFC.String(name)
}

// Identifier derives the manifest key from a file name without extension:
// hyphens become underscores, and a leading ASCII digit gets an "i" prefix.
func Identifier(fileName string) string {
	name := norm.NFC.String(fileName)
	key := strings.ReplaceAll(name, "-", "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		key = "i" + key
	}
	return key
}

// DerivedAlt is the fallback alt text: hyphens and underscores become spaces.
func DerivedAlt(fileName string) string {
	return altReplacer.Replace(norm.NFC.String(fileName))
}

// ResolveAlt keeps a non-empty alt from the previous manifest for key and
// otherwise derives one from fileName. It performs no I/O.
func ResolveAlt(fileName, key string, prev Previous) string {
	if alt, ok := prev.Alt(key); ok {
		return alt
	}
	return DerivedAlt(fileName)
}
