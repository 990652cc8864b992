package imagelist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fulmenhq/sitegen/pkg/exitcode"
	"github.com/fulmenhq/sitegen/pkg/pathfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFormatter struct {
	mu    sync.Mutex
	paths []string
}

func (f *recordingFormatter) FormatDetached(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

// failingFormatter stands in for a formatter whose process fails.
type failingFormatter struct{ called bool }

func (f *failingFormatter) FormatDetached(string) { f.called = true }

func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "photo-1.png", pngBytes(t, 200, 100))
	writeFile(t, root, "1-banner.jpg", jpegBytes(t, 40, 20))
	writeFile(t, root, "notes.txt", []byte("not an image"))
	writeFile(t, root, "empty.png", nil)
	writeFile(t, root, "corrupt.png", []byte("garbage"))
	writeFile(t, root, "icons/logo_mark.svg", []byte(`<svg width="32" height="16"/>`))
	return root
}

func TestGenerateScenarios(t *testing.T) {
	root := fixtureTree(t)
	out := filepath.Join(t.TempDir(), "imageList.ts")
	var stdout bytes.Buffer
	fmtr := &recordingFormatter{}

	res, err := Generate(context.Background(), Options{
		Root:      root,
		Output:    out,
		Formatter: fmtr,
		Stdout:    &stdout,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"i1_banner", "logo_mark", "photo_1"}, res.Manifest.Keys())

	byKey := map[string]Entry{}
	for _, it := range res.Manifest {
		byKey[it.Key] = it.Entry
	}
	assert.Equal(t, Entry{Path: "photo-1.png", Width: 200, Height: 100, Alt: "photo 1"}, byKey["photo_1"])
	assert.Equal(t, Entry{Path: "1-banner.jpg", Width: 40, Height: 20, Alt: "1 banner"}, byKey["i1_banner"])
	assert.Equal(t, Entry{Path: "icons/logo_mark.svg", Width: 32, Height: 16, Alt: "logo mark"}, byKey["logo_mark"])

	assert.Equal(t, 1, res.Skipped[SkippedExtension])
	assert.Equal(t, 2, res.Skipped[SkippedUndecodable])
	assert.Equal(t, 3, res.SkippedTotal())
	assert.Equal(t, "3 entries, 3 skipped", res.String())
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, "Generated 3 images to "+out+"\n", stdout.String())
	assert.Equal(t, []string{out}, fmtr.paths)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "notes")
	assert.NotContains(t, string(data), "corrupt")
}

func TestGenerateIsIdempotent(t *testing.T) {
	root := fixtureTree(t)
	out := filepath.Join(t.TempDir(), "imageList.ts")

	run := func() []byte {
		prev, err := LoadPrevious(out)
		require.NoError(t, err)
		_, err = Generate(context.Background(), Options{Root: root, Output: out, Previous: prev})
		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return data
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestGeneratePreservesAlt(t *testing.T) {
	root := fixtureTree(t)
	out := filepath.Join(t.TempDir(), "imageList.ts")

	prev := Previous{
		"photo_1":   {Alt: strPtr("Custom Alt")},
		"gone":      {Alt: strPtr("Removed image")},
		"logo_mark": {Alt: strPtr("")},
	}
	res, err := Generate(context.Background(), Options{Root: root, Output: out, Previous: prev})
	require.NoError(t, err)

	alts := map[string]string{}
	for _, it := range res.Manifest {
		alts[it.Key] = it.Entry.Alt
	}
	assert.Equal(t, "Custom Alt", alts["photo_1"])
	assert.Equal(t, "logo mark", alts["logo_mark"])
	assert.NotContains(t, alts, "gone", "previous entries never add images")
}

func TestGeneratePreservesAltAcrossFiles(t *testing.T) {
	root := fixtureTree(t)
	out := filepath.Join(t.TempDir(), "imageList.ts")

	_, err := Generate(context.Background(), Options{Root: root, Output: out})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	edited := bytes.Replace(data, []byte(`"alt": "photo 1"`), []byte(`"alt": "Custom Alt"`), 1)
	require.NoError(t, os.WriteFile(out, edited, 0o644))

	prev, err := LoadPrevious(out)
	require.NoError(t, err)
	_, err = Generate(context.Background(), Options{Root: root, Output: out, Previous: prev})
	require.NoError(t, err)

	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alt": "Custom Alt"`)
}

func TestGenerateFormatterFailureIsIgnored(t *testing.T) {
	root := fixtureTree(t)
	out := filepath.Join(t.TempDir(), "imageList.ts")
	fmtr := &failingFormatter{}

	res, err := Generate(context.Background(), Options{Root: root, Output: out, Formatter: fmtr})
	require.NoError(t, err)
	assert.True(t, fmtr.called)
	assert.Len(t, res.Manifest, 3)
	assert.FileExists(t, out)
}

func TestGenerateEmptyRoot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "imageList.ts")
	var stdout bytes.Buffer
	res, err := Generate(context.Background(), Options{Root: t.TempDir(), Output: out, Stdout: &stdout})
	require.NoError(t, err)
	assert.Empty(t, res.Manifest)
	assert.Equal(t, "Generated 0 images to "+out+"\n", stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export const imageList = {} as const")
}

func TestGenerateSkipsNamelessDotfile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".png", pngBytes(t, 3, 3))
	writeFile(t, root, "real.png", pngBytes(t, 3, 3))

	res, err := Generate(context.Background(), Options{Root: root, Output: filepath.Join(t.TempDir(), "imageList.ts"), Stdout: io.Discard})
	require.NoError(t, err)
	require.Len(t, res.Manifest, 1)
	assert.Equal(t, "real", res.Manifest[0].Key)
}

func TestGenerateDryRun(t *testing.T) {
	root := fixtureTree(t)
	out := filepath.Join(t.TempDir(), "imageList.ts")
	fmtr := &recordingFormatter{}

	res, err := Generate(context.Background(), Options{Root: root, Output: out, Formatter: fmtr, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Manifest, 3)
	assert.NoFileExists(t, out)
	assert.Empty(t, fmtr.paths)
}

func TestGenerateMissingRoot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "imageList.ts")
	_, err := Generate(context.Background(), Options{Root: filepath.Join(t.TempDir(), "missing"), Output: out})
	require.Error(t, err)
	assert.Equal(t, exitcode.FileSystemError, exitcode.From(err))
	assert.NoFileExists(t, out, "a failed walk must not write partial output")
}

func TestGenerateInvalidExclude(t *testing.T) {
	_, err := Generate(context.Background(), Options{
		Root:   t.TempDir(),
		Output: filepath.Join(t.TempDir(), "x.ts"),
		Walk:   pathfinder.WalkOptions{Exclude: []string{"[unclosed"}},
	})
	require.Error(t, err)
	assert.Equal(t, exitcode.ConfigError, exitcode.From(err))
}

func TestGenerateExclude(t *testing.T) {
	root := fixtureTree(t)
	res, err := Generate(context.Background(), Options{
		Root:   root,
		DryRun: true,
		Walk:   pathfinder.WalkOptions{Exclude: []string{"icons/**"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"i1_banner", "photo_1"}, res.Manifest.Keys())
}

func TestGenerateWriteFailure(t *testing.T) {
	root := fixtureTree(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Generate(context.Background(), Options{Root: root, Output: filepath.Join(blocker, "out.ts")})
	require.Error(t, err)
	assert.Equal(t, exitcode.FileSystemError, exitcode.From(err))
}

func TestGenerateCancelled(t *testing.T) {
	root := fixtureTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, Options{Root: root, DryRun: true})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerateDuplicateKeysLaterWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/hero.png", pngBytes(t, 1, 1))
	writeFile(t, root, "b/hero.png", pngBytes(t, 2, 2))

	res, err := Generate(context.Background(), Options{Root: root, DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Manifest, 1)
	assert.Equal(t, "b/hero.png", res.Manifest[0].Entry.Path)
}
