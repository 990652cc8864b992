package imagelist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hyphens become underscores", "photo-1", "photo_1"},
		{"leading digit gets prefix", "1-banner", "i1_banner"},
		{"plain", "hero", "hero"},
		{"underscores kept", "team_photo-2024", "team_photo_2024"},
		{"digit only", "404", "i404"},
		{"leading hyphen is not a digit", "-dash", "_dash"},
		{"empty", "", ""},
		{"spaces untouched", "my pic", "my pic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identifier(tt.in))
		})
	}
}

func TestIdentifierProperties(t *testing.T) {
	names := []string{"a-b", "logo-dark-mode", "x-", "we-ird--name", "Caf\u00e9-cr\u00e8me"}
	for _, n := range names {
		assert.Equal(t, strings.ReplaceAll(n, "-", "_"), Identifier(n), n)
		assert.Equal(t, Identifier(n), Identifier(n), "must be deterministic")
	}
	for _, n := range []string{"0", "1-a", "2024-05-01-launch", "9lives"} {
		assert.True(t, strings.HasPrefix(Identifier(n), "i"), n)
	}
}

func TestIdentifierUnicodeNormalization(t *testing.T) {
	composed := "caf\u00e9-menu"
	decomposed := "cafe\u0301-menu"
	assert.Equal(t, Identifier(composed), Identifier(decomposed))
	assert.Equal(t, "caf\u00e9_menu", Identifier(decomposed))
	assert.Equal(t, "caf\u00e9 menu", DerivedAlt(decomposed))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "photo-1", BaseName("/site/img/photo-1.png"))
	assert.Equal(t, "Hero", BaseName("/site/img/Hero.PNG"))
	assert.Equal(t, "archive.tar", BaseName("archive.tar.gz"))
}

func TestDerivedAlt(t *testing.T) {
	assert.Equal(t, "photo 1", DerivedAlt("photo-1"))
	assert.Equal(t, "1 banner", DerivedAlt("1-banner"))
	assert.Equal(t, "team photo 2024", DerivedAlt("team_photo-2024"))
}

func strPtr(s string) *string { return &s }

func TestResolveAlt(t *testing.T) {
	prev := Previous{
		"photo_1": {Alt: strPtr("Custom Alt")},
		"empty":   {Alt: strPtr("")},
		"noalt":   {Path: strPtr("noalt.png")},
	}
	assert.Equal(t, "Custom Alt", ResolveAlt("photo-1", "photo_1", prev))
	assert.Equal(t, "empty", ResolveAlt("empty", "empty", prev))
	assert.Equal(t, "noalt", ResolveAlt("noalt", "noalt", prev))
	assert.Equal(t, "new image", ResolveAlt("new-image", "new_image", prev))
	assert.Equal(t, "x y", ResolveAlt("x_y", "x_y", nil))
}
