package services

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// PathFilter decides which result items are skipped before their content
// is fetched. A nil filter matches nothing.
type PathFilter struct {
	patterns  []*regexp.Regexp
	globs     []string
	filenames map[string]struct{}
}

// NewPathFilter compiles ignore rules. Invalid regular expressions and
// malformed globs are configuration errors.
func NewPathFilter(rules domain.IgnoreRules) (*PathFilter, error) {
	f := &PathFilter{filenames: make(map[string]struct{}, len(rules.Filenames))}

	for _, p := range rules.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: ignore pattern %q: %w", domain.ErrConfiguration, p, err)
		}
		f.patterns = append(f.patterns, re)
	}

	for _, g := range rules.Globs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("%w: ignore glob %q is malformed", domain.ErrConfiguration, g)
		}
		f.globs = append(f.globs, g)
	}

	for _, name := range rules.Filenames {
		name = strings.TrimSpace(name)
		if name != "" {
			f.filenames[name] = struct{}{}
		}
	}

	return f, nil
}

// Match reports whether p should be ignored.
//
// Regular expressions see the full path. Globs without a slash are also
// tried against the base name, so "*.log" ignores "logs/server.log".
// Filenames match the full path or the base name exactly.
func (f *PathFilter) Match(p string) bool {
	if f == nil {
		return false
	}

	base := path.Base(p)
	if _, ok := f.filenames[p]; ok {
		return true
	}
	if _, ok := f.filenames[base]; ok {
		return true
	}

	for _, re := range f.patterns {
		if re.MatchString(p) {
			return true
		}
	}

	for _, g := range f.globs {
		if ok, _ := doublestar.Match(g, p); ok {
			return true
		}
		if !strings.Contains(g, "/") {
			if ok, _ := doublestar.Match(g, base); ok {
				return true
			}
		}
	}

	return false
}

// Len returns the number of rules in the filter.
func (f *PathFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.patterns) + len(f.globs) + len(f.filenames)
}
