package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Fotos", "fotos"},
		{"spaces to dashes", "mi primer post", "mi-primer-post"},
		{"accents stripped", "Un día en Málaga", "un-dia-en-malaga"},
		{"eñe", "Año nuevo", "ano-nuevo"},
		{"spanish punctuation", "¿Qué es esto?", "que-es-esto"},
		{"collapses separators", "a  --  b", "a-b"},
		{"trims dashes", "--hola--", "hola"},
		{"numbers kept", "Top 10", "top-10"},
		{"emoji dropped", "🐉 Dragones", "dragones"},
		{"empty", "", ""},
		{"only symbols", "!@#", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.input)
			assert.Equal(t, tt.expected, got)
			if got != "" {
				assert.True(t, IsSlug(got), "slugified output %q should be a valid slug", got)
			}
		})
	}
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("hola-mundo"))
	assert.True(t, IsSlug("post_2024"))
	assert.False(t, IsSlug("Hola"))
	assert.False(t, IsSlug("hola mundo"))
	assert.False(t, IsSlug(""))
	assert.False(t, IsSlug("día"))
}
