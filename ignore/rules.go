package ignore

import (
	"strings"

	gitignore "github.com/denormal/go-gitignore"
)

// Rules matches canonical project paths against gitignore-style patterns.
// It works entirely in memory; patterns are never read from disk.
type Rules struct {
	patterns []string
	matcher  gitignore.GitIgnore
}

// NewRules compiles patterns. Blank lines and # comments are ignored as in a .gitignore file.
func NewRules(patterns []string) *Rules {
	rules := &Rules{patterns: append([]string(nil), patterns...)}
	if len(patterns) > 0 {
		rules.matcher = gitignore.New(strings.NewReader(strings.Join(patterns, "\n")), "/", nil)
	}
	return rules
}

// Patterns returns the source patterns.
func (r *Rules) Patterns() []string {
	return append([]string(nil), r.patterns...)
}

// Matches reports whether a canonical file path is matched by the rules.
// Negated patterns ("!keep.html") re-include paths as in git.
func (r *Rules) Matches(canonicalPath string) bool {
	if r == nil || r.matcher == nil {
		return false
	}
	relativePath := strings.TrimPrefix(canonicalPath, "/")
	if relativePath == "" {
		return false
	}
	match := r.matcher.Relative(relativePath, false)
	return match != nil && match.Ignore()
}
