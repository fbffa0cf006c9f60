package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		got := NewDocumentID()
		require.Len(t, got, DocumentIDLength)
		for _, r := range got {
			assert.True(t,
				(r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'),
				"character %c should be alphanumeric", r)
		}
		assert.False(t, seen[got], "duplicate id %s", got)
		seen[got] = true
	}
}

func BenchmarkNewDocumentID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NewDocumentID()
	}
}
