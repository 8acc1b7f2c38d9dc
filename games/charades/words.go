/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package charades

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed words.yaml
var defaultWords []byte

// Category is one named, ordered list of distinct words.
type Category struct {
	Name  string   `yaml:"name"`
	Words []string `yaml:"words"`
}

// WordBank is read-only once built and safe to share between sessions.
type WordBank struct {
	categories []Category
	index      map[string]int
}

// NewWordBank validates categories and drops duplicate words, keeping the
// first occurrence of each.
func NewWordBank(categories []Category) (*WordBank, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: word bank has no categories", ErrInvalidInput)
	}

	b := &WordBank{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category without a name", ErrInvalidInput)
		}
		if _, dup := b.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidInput, name)
		}

		seen := make(map[string]struct{}, len(c.Words))
		words := make([]string, 0, len(c.Words))
		for _, w := range c.Words {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("%w: category %q has no words", ErrInvalidInput, name)
		}

		b.index[name] = len(b.categories)
		b.categories = append(b.categories, Category{Name: name, Words: words})
	}

	return b, nil
}

// ParseWordBank reads the YAML list-of-categories format used by words.yaml.
func ParseWordBank(data []byte) (*WordBank, error) {
	var categories []Category
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parsing word list: %w", err)
	}

	return NewWordBank(categories)
}

// LoadWordBank reads a word list from path, or returns the embedded default
// list when path is empty.
func LoadWordBank(path string) (*WordBank, error) {
	if path == "" {
		return ParseWordBank(defaultWords)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}

	return ParseWordBank(data)
}

func (b *WordBank) Categories() []string {
	names := make([]string, len(b.categories))
	for i, c := range b.categories {
		names[i] = c.Name
	}
	return names
}

func (b *WordBank) Has(category string) bool {
	_, ok := b.index[category]
	return ok
}

// Words returns the category's words in file order. The slice must not be
// modified.
func (b *WordBank) Words(category string) []string {
	i, ok := b.index[category]
	if !ok {
		return nil
	}
	return b.categories[i].Words
}
