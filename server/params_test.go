package server

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCutsOnRunes(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		max      int
		expected string
	}{
		{"short ascii untouched", "hello", 10, "hello"},
		{"exact length untouched", "hello", 5, "hello"},
		{"long ascii cut", "hello world", 5, "hello..."},
		{"accented text cut between runes", "héllo wörld", 6, "héllo ..."},
		{"cjk cut between runes", "你好世界你好世界", 4, "你好世界..."},
		{"emoji untouched under limit", "🎉🎉🎉", 5, "🎉🎉🎉"},
		{"emoji cut between runes", "🎉🎉🎉🎉🎉", 3, "🎉🎉🎉..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
