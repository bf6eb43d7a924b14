package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

func TestPathFilter_Match(t *testing.T) {
	f, err := NewPathFilter(domain.IgnoreRules{
		Patterns:  []string{`^vendor/`, `\.min\.js$`},
		Globs:     []string{"*.log", "docs/**/*.md"},
		Filenames: []string{"package-lock.json", "config/example.env", "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, f.Len())

	tests := []struct {
		path string
		want bool
	}{
		{"vendor/lib/a.go", true},
		{"src/vendor/a.go", false},
		{"static/app.min.js", true},
		{"server.log", true},
		{"logs/2026/server.log", true},
		{"docs/guide/setup.md", true},
		{"README.md", false},
		{"package-lock.json", true},
		{"web/package-lock.json", true},
		{"config/example.env", true},
		{"example.env", false},
		{".env", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.path))
		})
	}
}

func TestPathFilter_NilAndEmpty(t *testing.T) {
	var nilFilter *PathFilter
	assert.False(t, nilFilter.Match(".env"))
	assert.Zero(t, nilFilter.Len())

	empty, err := NewPathFilter(domain.IgnoreRules{})
	require.NoError(t, err)
	assert.False(t, empty.Match("anything"))
}

func TestNewPathFilter_InvalidRules(t *testing.T) {
	_, err := NewPathFilter(domain.IgnoreRules{Patterns: []string{"("}})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewPathFilter(domain.IgnoreRules{Globs: []string{"[a-"}})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
