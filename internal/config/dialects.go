package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// DialectMatcher picks a parser dialect for a file path from the
// configured globs.
type DialectMatcher struct {
	fallback syntax.Dialect
	rules    []dialectRule
}

type dialectRule struct {
	pattern string
	glob    glob.Glob
	dialect syntax.Dialect
}

// NewDialectMatcher compiles the dialect globs. TSX rules are checked
// first so "**/*.tsx" is never shadowed by a broader TypeScript pattern.
func (c *Config) NewDialectMatcher() (*DialectMatcher, error) {
	fallback, err := syntax.ParseDialect(c.Engine.DefaultDialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDialect, err)
	}
	m := &DialectMatcher{fallback: fallback}

	groups := []struct {
		dialect  syntax.Dialect
		patterns []string
	}{
		{syntax.TSX, c.Dialects.TSX},
		{syntax.TypeScript, c.Dialects.TypeScript},
		{syntax.JavaScript, c.Dialects.JavaScript},
	}
	for _, g := range groups {
		for _, p := range g.patterns {
			compiled, err := glob.Compile(p, '/')
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
			}
			m.rules = append(m.rules, dialectRule{pattern: p, glob: compiled, dialect: g.dialect})
		}
	}
	return m, nil
}

// DialectFor returns the dialect of path and whether a glob matched. An
// unmatched path gets the default dialect.
func (m *DialectMatcher) DialectFor(path string) (syntax.Dialect, bool) {
	p := filepath.ToSlash(path)
	// "**/*.ts" needs a separator to match, so root-level names get one.
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for _, r := range m.rules {
		if r.glob.Match(p) {
			return r.dialect, true
		}
	}
	return m.fallback, false
}
