/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWordBank_Default(t *testing.T) {
	b, err := LoadWordBank("")
	require.NoError(t, err)

	cats := b.Categories()
	require.NotEmpty(t, cats)
	assert.Equal(t, "animals", cats[0])
	assert.True(t, b.Has("colors"))
	assert.Len(t, b.Words("colors"), 8)

	for _, c := range cats {
		seen := map[string]bool{}
		for _, w := range b.Words(c) {
			assert.False(t, seen[w], "duplicate %q in %q", w, c)
			seen[w] = true
		}
	}
}

func TestLoadWordBank_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: fruit
  words: [apple, pear, apple, " plum ", ""]
- name: tools
  words: [hammer]
`), 0o600))

	b, err := LoadWordBank(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fruit", "tools"}, b.Categories())
	assert.Equal(t, []string{"apple", "pear", "plum"}, b.Words("fruit"))
	assert.Nil(t, b.Words("missing"))
	assert.False(t, b.Has("missing"))
}

func TestLoadWordBank_MissingFile(t *testing.T) {
	_, err := LoadWordBank(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewWordBank_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
	}{
		{"no categories", nil},
		{"blank name", []Category{{Name: " ", Words: []string{"a"}}}},
		{"duplicate name", []Category{{Name: "a", Words: []string{"x"}}, {Name: "a", Words: []string{"y"}}}},
		{"empty category", []Category{{Name: "a", Words: []string{" ", ""}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWordBank(tt.cats)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseWordBank_BadYAML(t *testing.T) {
	_, err := ParseWordBank([]byte("name: [unterminated"))
	assert.Error(t, err)
}
