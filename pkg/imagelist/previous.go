package imagelist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/xeipuuv/gojsonschema"
)

// PreviousEntry is an entry of an earlier manifest. Every field is optional
// because the file may have been edited by hand.
type PreviousEntry struct {
	Path   *string
	Width  *int
	Height *int
	Alt    *string
}

// Previous is the read-only manifest from the last run, used for alt text.
type Previous map[string]PreviousEntry

// Alt returns the previous alt for key when it is present and non-empty.
func (p Previous) Alt(key string) (string, bool) {
	e, ok := p[key]
	if !ok || e.Alt == nil || *e.Alt == "" {
		return "", false
	}
	return *e.Alt, true
}

// previousSchema only checks shape: an object of objects with typed fields.
const previousSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "path":   {"type": "string"},
      "width":  {"type": "integer", "minimum": 1},
      "height": {"type": "integer", "minimum": 1},
      "alt":    {"type": "string"}
    }
  }
}`

var previousSchemaLoader = gojsonschema.NewStringLoader(previousSchema)

// LoadPrevious reads a previously generated manifest. A missing file yields
// an empty Previous and no error.
func LoadPrevious(path string) (Previous, error) {
	if path == "" {
		return Previous{}, nil
	}
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- user-selected manifest path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("no previous manifest", logger.Path(path))
			return Previous{}, nil
		}
		return nil, fmt.Errorf("failed to read previous manifest %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParsePrevious(data)
	}
	literal, err := extractObjectLiteral(data)
	if err != nil {
		return nil, fmt.Errorf("previous manifest %s: %w", path, err)
	}
	return ParsePrevious(literal)
}

// ParsePrevious decodes a JSON or relaxed object literal. Shape problems are
// logged; fields with the wrong type are dropped instead of failing the load.
func ParsePrevious(data []byte) (Previous, error) {
	normalized, err := normalizeLiteral(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(normalized))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("previous manifest is not an object: %w", err)
	}

	result, err := gojsonschema.Validate(previousSchemaLoader, gojsonschema.NewBytesLoader(normalized))
	if err == nil && !result.Valid() {
		for _, desc := range result.Errors() {
			logger.Warn("previous manifest entry has unexpected shape",
				logger.String("field", desc.Field()), logger.String("detail", desc.Description()))
		}
	}

	prev := make(Previous, len(raw))
	for key, v := range raw {
		obj, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		var e PreviousEntry
		if s, ok := obj["path"].(string); ok {
			e.Path = &s
		}
		if s, ok := obj["alt"].(string); ok {
			e.Alt = &s
		}
		e.Width = intField(obj["width"])
		e.Height = intField(obj["height"])
		prev[key] = e
	}
	return prev, nil
}

func intField(v interface{}) *int {
	n, ok := v.(json.Number)
	if !ok {
		return nil
	}
	i, err := n.Int64()
	if err != nil {
		return nil
	}
	out := int(i)
	return &out
}

// extractObjectLiteral returns the first top-level {...} after the first '='
// of a generated source file.
func extractObjectLiteral(src []byte) ([]byte, error) {
	eq := bytes.IndexByte(src, '=')
	if eq < 0 {
		return nil, errors.New("no assignment found")
	}
	start := bytes.IndexByte(src[eq:], '{')
	if start < 0 {
		return nil, errors.New("no object literal found")
	}
	start += eq

	depth := 0
	var quote byte
	for i := start; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		if c == '/' && i+1 < len(src) && (src[i+1] == '/' || src[i+1] == '*') {
			i = skipSpaceAndComments(src, i) - 1
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start : i+1], nil
			}
		}
	}
	return nil, errors.New("unterminated object literal")
}

// isIdentStart and isIdentPart follow JS identifier rules closely enough for
// unquoted keys a formatter leaves behind, non-ASCII letters included.
func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc)
}

// identEnd returns the index after the identifier starting at src[i], or i
// when none starts there.
func identEnd(src []byte, i int) int {
	r, size := utf8.DecodeRune(src[i:])
	if !isIdentStart(r) {
		return i
	}
	j := i + size
	for j < len(src) {
		r, size = utf8.DecodeRune(src[j:])
		if !isIdentPart(r) {
			break
		}
		j += size
	}
	return j
}

// skipSpaceAndComments returns the index of the next significant byte.
func skipSpaceAndComments(src []byte, i int) int {
	for i < len(src) {
		switch {
		case src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r':
			i++
		case bytes.HasPrefix(src[i:], []byte("//")):
			nl := bytes.IndexByte(src[i:], '\n')
			if nl < 0 {
				return len(src)
			}
			i += nl + 1
		case bytes.HasPrefix(src[i:], []byte("/*")):
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return len(src)
			}
			i += end + 4
		default:
			return i
		}
	}
	return i
}

// normalizeLiteral rewrites a JS object literal, as a code formatter may leave
// it, into JSON: bare keys are quoted, single-quoted strings become double
// quoted, comments and trailing commas are dropped.
func normalizeLiteral(src []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		next := skipSpaceAndComments(src, i)
		if next > i {
			out.WriteByte(' ')
			i = next
			continue
		}
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			end, err := writeString(&out, src, i)
			if err != nil {
				return nil, err
			}
			i = end
		case c == ',':
			j := skipSpaceAndComments(src, i+1)
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				i++
				continue
			}
			out.WriteByte(c)
			i++
		case identEnd(src, i) > i:
			j := identEnd(src, i)
			word := src[i:j]
			k := skipSpaceAndComments(src, j)
			if k < len(src) && src[k] == ':' {
				out.WriteByte('"')
				out.Write(word)
				out.WriteByte('"')
			} else {
				out.Write(word)
			}
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.Bytes(), nil
}

// writeString copies the string starting at src[start] as a JSON string and
// returns the index after its closing quote.
func writeString(out *bytes.Buffer, src []byte, start int) (int, error) {
	quote := src[start]
	out.WriteByte('"')
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			if quote == '\'' && src[i+1] == '\'' {
				out.WriteByte('\'')
			} else {
				out.WriteByte(c)
				out.WriteByte(src[i+1])
			}
			i++
		case c == quote:
			out.WriteByte('"')
			return i + 1, nil
		case c == '"':
			out.WriteString(`\"`)
		default:
			out.WriteByte(c)
		}
	}
	return 0, errors.New("unterminated string literal")
}
