package ignore

import "github.com/compotron/compose/internal/domain"

// builtinPatterns always apply regardless of any layer's own ignore list,
// per spec.md §4.2: "*.pyc", editor backups, VCS directories, and any
// ".ropeproject/".
var builtinPatterns = []string{
	"*.pyc",
	"*~",
	"*.swp",
	"*.swo",
	".git",
	".git/**",
	".svn",
	".svn/**",
	".bzr",
	".bzr/**",
	".hg",
	".hg/**",
	".ropeproject",
	".ropeproject/**",
}

// Set is an ordered collection of patterns applied to one layer's
// contributed entries: the built-in list followed by the owning-above
// layer's own `ignore:` entries, in document order. The last matching
// pattern wins — a later "!pattern" re-includes a path an earlier
// pattern excluded, the standard gitignore precedence rule.
type Set struct {
	patterns []*Pattern
}

// NewSet builds a Set from the built-in patterns plus the given
// additional glob lines (typically a layer's `ignore:` list).
func NewSet(extra []string) domain.Result[*Set] {
	s := &Set{}
	for _, raw := range builtinPatterns {
		res := NewPattern(raw)
		if res.IsErr() {
			return domain.Err[*Set](res.UnwrapErr())
		}
		s.patterns = append(s.patterns, res.Unwrap())
	}
	for _, raw := range extra {
		res := NewPattern(raw)
		if res.IsErr() {
			return domain.Err[*Set](res.UnwrapErr())
		}
		s.patterns = append(s.patterns, res.Unwrap())
	}
	return domain.Ok(s)
}

// Ignored reports whether relpath is excluded, applying every pattern in
// order and letting the last match (exclude or negate) decide.
func (s *Set) Ignored(relpath string) bool {
	ignored := false
	for _, p := range s.patterns {
		if p.Match(relpath) {
			ignored = !p.IsNegation()
		}
	}
	return ignored
}

// Patterns returns the compiled patterns in application order.
func (s *Set) Patterns() []*Pattern {
	return s.patterns
}
