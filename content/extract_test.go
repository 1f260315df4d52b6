package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashtags(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"none", "just plain text", nil},
		{"single", "hello #golang", []string{"#golang"}},
		{"duplicates collapse", "#a #a #b", []string{"#a", "#b"}},
		{"case folds to lower", "#Go #go #GO", []string{"#go"}},
		{"mixed with mentions", "ship it #launch cc @ann", []string{"#launch"}},
		{"bare hash ignored", "C# is not a tag: # ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hashtags(tt.text))
		})
	}
}

func TestMentions(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"none", "no mentions here", nil},
		{"single", "hey @bob", []string{"bob"}},
		{"duplicates collapse", "@bob and @bob again", []string{"bob"}},
		{"case preserved", "@Bob", []string{"Bob"}},
		{"order preserved", "@zed then @ann", []string{"zed", "ann"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mentions(tt.text))
		})
	}
}
