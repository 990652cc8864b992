package imagelist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions are pixel sizes reported by a Prober.
type Dimensions struct {
	Width  int
	Height int
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool { return d.Width > 0 && d.Height > 0 }

// Prober reads pixel dimensions from raw file contents. Implementations may
// return zero Dimensions when the size cannot be determined.
type Prober interface {
	Probe(data []byte) (Dimensions, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(data []byte) (Dimensions, error)

func (f ProberFunc) Probe(data []byte) (Dimensions, error) { return f(data) }

// ErrEmpty is returned for zero-byte input.
var ErrEmpty = errors.New("empty image data")

// DefaultProber detects the format from content, not from the file extension.
type DefaultProber struct{}

// Probe implements Prober.
func (DefaultProber) Probe(data []byte) (Dimensions, error) {
	if len(data) == 0 {
		return Dimensions{}, ErrEmpty
	}
	switch {
	case isISOBMFF(data):
		return probeAVIF(data)
	case looksLikeSVG(data):
		return probeSVG(data)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("unrecognized image data: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	head = bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF})
	head = bytes.TrimLeft(head, " \t\r\n")
	return len(head) > 0 && head[0] == '<' && bytes.Contains(head, []byte("<svg"))
}

// svgUnits converts absolute CSS units to pixels at 96dpi.
var svgUnits = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"em": 16,
	"ex": 8,
}

// parseSVGLength returns 0 for missing, relative (%) or malformed lengths.
func parseSVGLength(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasSuffix(v, "%") {
		return 0
	}
	i := len(v)
	for i > 0 && (v[i-1] < '0' || v[i-1] > '9') && v[i-1] != '.' {
		i--
	}
	factor, ok := svgUnits[strings.ToLower(v[i:])]
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(v[:i], 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n * factor
}

func parseViewBox(v string) (w, h float64) {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return 0, 0
	}
	w, err1 := strconv.ParseFloat(fields[2], 64)
	h, err2 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0
	}
	return w, h
}

func probeSVG(data []byte) (Dimensions, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return Dimensions{}, fmt.Errorf("svg is not well-formed: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return Dimensions{}, errors.New("svg root element not found")
	}

	w := parseSVGLength(root.SelectAttrValue("width", ""))
	h := parseSVGLength(root.SelectAttrValue("height", ""))
	vw, vh := parseViewBox(root.SelectAttrValue("viewBox", ""))

	switch {
	case w > 0 && h > 0:
	case vw > 0 && w > 0:
		h = w * vh / vw
	case vh > 0 && h > 0:
		w = h * vw / vh
	case vw > 0:
		w, h = vw, vh
	}
	return Dimensions{Width: int(math.Round(w)), Height: int(math.Round(h))}, nil
}

// isISOBMFF checks for an ftyp box carrying an AVIF brand.
func isISOBMFF(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	size := int(binary.BigEndian.Uint32(data[0:4]))
	if size < 12 || size > len(data) {
		size = len(data)
	}
	for off := 8; off+4 <= size; off += 4 {
		if off == 12 {
			continue // minor version
		}
		switch string(data[off : off+4]) {
		case "avif", "avis":
			return true
		}
	}
	return false
}

type box struct {
	typ  string
	body []byte
}

// readBoxes splits an ISO-BMFF byte range into its top-level boxes.
func readBoxes(data []byte) ([]box, error) {
	var out []box
	for len(data) > 0 {
		if len(data) < 8 {
			return out, errors.New("truncated box header")
		}
		size := uint64(binary.BigEndian.Uint32(data[0:4]))
		typ := string(data[4:8])
		header := uint64(8)
		switch size {
		case 0:
			size = uint64(len(data))
		case 1:
			if len(data) < 16 {
				return out, errors.New("truncated large box header")
			}
			size = binary.BigEndian.Uint64(data[8:16])
			header = 16
		}
		if size < header || size > uint64(len(data)) {
			return out, fmt.Errorf("box %q has invalid size %d", typ, size)
		}
		out = append(out, box{typ: typ, body: data[header:size]})
		data = data[size:]
	}
	return out, nil
}

func findBox(boxes []box, typ string) (box, bool) {
	for _, b := range boxes {
		if b.typ == typ {
			return b, true
		}
	}
	return box{}, false
}

// probeAVIF reads the image spatial extents (ispe) properties from
// meta/iprp/ipco and reports the largest one, which is the primary image
// rather than a thumbnail.
func probeAVIF(data []byte) (Dimensions, error) {
	top, err := readBoxes(data)
	if err != nil && len(top) == 0 {
		return Dimensions{}, err
	}
	meta, ok := findBox(top, "meta")
	if !ok || len(meta.body) < 4 {
		return Dimensions{}, errors.New("avif meta box not found")
	}
	metaChildren, _ := readBoxes(meta.body[4:])
	iprp, ok := findBox(metaChildren, "iprp")
	if !ok {
		return Dimensions{}, errors.New("avif iprp box not found")
	}
	iprpChildren, _ := readBoxes(iprp.body)
	ipco, ok := findBox(iprpChildren, "ipco")
	if !ok {
		return Dimensions{}, errors.New("avif ipco box not found")
	}
	props, _ := readBoxes(ipco.body)

	var best Dimensions
	for _, p := range props {
		if p.typ != "ispe" || len(p.body) < 12 {
			continue
		}
		d := Dimensions{
			Width:  int(binary.BigEndian.Uint32(p.body[4:8])),
			Height: int(binary.BigEndian.Uint32(p.body[8:12])),
		}
		if d.Width*d.Height > best.Width*best.Height {
			best = d
		}
	}
	if !best.Valid() {
		return Dimensions{}, errors.New("avif ispe property not found")
	}
	return best, nil
}
