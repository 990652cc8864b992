package imagelist

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/sitegen/pkg/logger"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), nil))
	return buf.Bytes()
}

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solid(w, h), nil))
	return buf.Bytes()
}

func tiffBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, solid(w, h), nil))
	return buf.Bytes()
}

// webpBytes builds a lossless (VP8L) header, which is all DecodeConfig reads.
func webpBytes(w, h int) []byte {
	bits := uint32(w-1) | uint32(h-1)<<14
	chunk := []byte{0x2f, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(chunk[1:], bits)
	chunk = append(chunk, 0) // pad to even length

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4+8+len(chunk)))
	buf.WriteString("WEBP")
	buf.WriteString("VP8L")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(5))
	buf.Write(chunk)
	return buf.Bytes()
}

func isoBox(typ string, body ...[]byte) []byte {
	var payload []byte
	for _, b := range body {
		payload = append(payload, b...)
	}
	out := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(out, uint32(8+len(payload)))
	copy(out[4:], typ)
	return append(out, payload...)
}

func ispe(w, h uint32) []byte {
	body := make([]byte, 12)
	binary.BigEndian.PutUint32(body[4:], w)
	binary.BigEndian.PutUint32(body[8:], h)
	return isoBox("ispe", body)
}

// avifBytes builds the box skeleton of an AVIF file with a primary image
// and a smaller thumbnail.
func avifBytes(w, h uint32) []byte {
	ftyp := isoBox("ftyp", []byte("avif"), []byte{0, 0, 0, 0}, []byte("avifmif1"))
	hdlr := isoBox("hdlr", make([]byte, 24))
	meta := isoBox("meta", []byte{0, 0, 0, 0}, hdlr,
		isoBox("iprp", isoBox("ipco", ispe(w/4, h/4), ispe(w, h))))
	mdat := isoBox("mdat", []byte{1, 2, 3})
	return append(append(ftyp, meta...), mdat...)
}

func writeFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

// captureLog routes the default logger into a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, logger.Initialize(logger.Config{Level: logger.InfoLevel, Output: &buf}))
	t.Cleanup(func() {
		_ = logger.Initialize(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	})
	return &buf
}
