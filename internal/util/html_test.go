package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty", "", false},
		{"markdown", "# Hola\n\nUn **día** en Málaga", false},
		{"angle brackets", "Usa <stdin> y 2 > 1", false},
		{"paragraph", "<p>Hola</p>", true},
		{"self-closing break", "uno<br/>dos", true},
		{"uppercase tags", "<P>Hola</P>", true},
		{"image", `<img src="x.jpg">`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsHTML(tt.input))
		})
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	got, err := HTMLToMarkdown("<h2>Viaje</h2><p>Un <strong>día</strong> en <a href=\"https://example.com\">Málaga</a></p>")
	require.NoError(t, err)

	assert.Contains(t, got, "## Viaje")
	assert.Contains(t, got, "**día**")
	assert.Contains(t, got, "[Málaga](https://example.com)")
}

func TestHTMLToMarkdown_PassesMarkdownThrough(t *testing.T) {
	src := "Texto *ya* en markdown\n\n- uno\n- dos"

	got, err := HTMLToMarkdown(src)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}
