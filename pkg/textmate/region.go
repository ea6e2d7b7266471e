// Package textmate compiles TextMate-style grammars and incrementally
// assigns hierarchical scope paths to line text. The unit of work is
// one line: given the continuation state left by the previous line,
// HighlightLine returns the ordered regions covering the line and the
// state to carry into the next one.
package textmate

import "slices"

// Region is one highlighted span within a line: a half-open rune range
// annotated with the scope path accumulated by rule nesting. The
// regions produced for a line are strictly increasing, non-overlapping,
// and together cover [0, len(line)) exactly.
type Region struct {
	Start int
	End   int
	Scope []string
}

// Equal reports whether two regions have the same span and scope path.
func (r Region) Equal(o Region) bool {
	return r.Start == o.Start && r.End == o.End && slices.Equal(r.Scope, o.Scope)
}

// appendScope extends a scope path without aliasing the parent's
// backing array. Entries at different nesting depths share parent
// prefixes, so extending in place would corrupt siblings.
func appendScope(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
