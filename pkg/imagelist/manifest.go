package imagelist

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Entry is one image in the manifest. Field order is the serialized order.
type Entry struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

// Manifest maps identifiers to entries. It is rebuilt from scratch on every run.
type Manifest map[string]Entry

// Item is a single key/entry pair of a Sorted manifest.
type Item struct {
	Key   string
	Entry Entry
}

// Sorted is a manifest in ascending key order.
type Sorted []Item

// Sort returns the entries of m ordered by key. It never mutates m.
func Sort(m Manifest) Sorted {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Sorted, 0, len(keys))
	for _, k := range keys {
		out = append(out, Item{Key: k, Entry: m[k]})
	}
	return out
}

// Keys returns the identifiers in order.
func (s Sorted) Keys() []string {
	keys := make([]string, len(s))
	for i, it := range s {
		keys[i] = it.Key
	}
	return keys
}

// MarshalJSON encodes s as an object whose members keep slice order.
func (s Sorted) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := bytes.NewBufferString("{")
	for i, it := range s {
		if i > 0 {
			out.WriteByte(',')
		}
		buf.Reset()
		if err := enc.Encode(it.Key); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
		out.WriteByte(':')
		buf.Reset()
		if err := enc.Encode(it.Entry); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// IndentedJSON renders s with two-space indentation, the layout of the generated file.
func (s Sorted) IndentedJSON() ([]byte, error) {
	compact, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
