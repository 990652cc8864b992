package imagelist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGolden(t *testing.T) {
	s := Sort(Manifest{
		"photo_1":   {Path: "photo-1.png", Width: 200, Height: 100, Alt: "photo 1"},
		"i1_banner": {Path: "1-banner.jpg", Width: 10, Height: 20, Alt: "1 banner"},
	})
	got, err := Render(s, TemplateOptions{})
	require.NoError(t, err)

	want := "\n  import type { ImageType } from \"~/image_list/ImageType\"\n" +
		"  // Auto-generated, manual changes will be lost\n" +
		"export const imageList = {\n" +
		"  \"i1_banner\": {\n" +
		"    \"path\": \"1-banner.jpg\",\n" +
		"    \"width\": 10,\n" +
		"    \"height\": 20,\n" +
		"    \"alt\": \"1 banner\"\n" +
		"  },\n" +
		"  \"photo_1\": {\n" +
		"    \"path\": \"photo-1.png\",\n" +
		"    \"width\": 200,\n" +
		"    \"height\": 100,\n" +
		"    \"alt\": \"photo 1\"\n" +
		"  }\n" +
		"} as const satisfies Record<string, ImageType>;\n"
	assert.Equal(t, want, string(got))
}

func TestRenderEmptyAndCustomNames(t *testing.T) {
	got, err := Render(nil, TemplateOptions{ImportPath: "@/types", TypeName: "Img", ConstName: "images"})
	require.NoError(t, err)
	assert.Equal(t, "\n  import type { Img } from \"@/types\"\n"+
		"  // Auto-generated, manual changes will be lost\n"+
		"export const images = {} as const satisfies Record<string, Img>;\n", string(got))
}

func TestRenderDoesNotEscape(t *testing.T) {
	s := Sort(Manifest{"x": {Path: "a&b.png", Width: 1, Height: 1, Alt: "<b> & 'q'"}})
	got, err := Render(s, TemplateOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(got), `"alt": "<b> & 'q'"`)
	assert.Contains(t, string(got), `"path": "a&b.png"`)
}

func TestWriteOverwritesAndReports(t *testing.T) {
	out := filepath.Join(t.TempDir(), "src", "image_list", "imageList.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	require.NoError(t, os.WriteFile(out, bytes.Repeat([]byte("stale "), 1000), 0o644))

	var stdout bytes.Buffer
	s := Sort(Manifest{"a": {Path: "a.png", Width: 1, Height: 2, Alt: "a"}})
	require.NoError(t, Write(s, out, TemplateOptions{}, &stdout))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Equal(t, "Generated 1 images to "+out+"\n", stdout.String())
}

func TestWriteCreatesParents(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deep", "er", "list.ts")
	require.NoError(t, Write(nil, out, TemplateOptions{}, nil))
	assert.FileExists(t, out)
}
