package textmate

import (
	"slices"

	"github.com/yaklabco/scopelight/pkg/textmate/pattern"
)

// Entry is one level of active begin/end or begin/while nesting (the
// root level included). StartLine and StartPos record where the begin
// match started, which lets the scanner detect a begin/end pair that
// would otherwise ping-pong at a single position. Boundary records
// whether the begin match ended exactly at end of line; it seeds the
// continuation-point anchor at the start of subsequent lines.
type Entry struct {
	Scope     []string
	Rule      CompiledRule
	StartLine string
	StartPos  int
	Reg       *pattern.Regex
	Boundary  bool
}

// Equal reports whether two entries are interchangeable. Rules and
// compiled patterns are memoized, so pointer comparison suffices for
// both.
func (e Entry) Equal(o Entry) bool {
	return e.Rule == o.Rule &&
		e.Reg == o.Reg &&
		e.StartLine == o.StartLine &&
		e.StartPos == o.StartPos &&
		e.Boundary == o.Boundary &&
		slices.Equal(e.Scope, o.Scope)
}

// whileRef marks an open begin/while block: the rule to re-validate
// and the entry-stack depth just after its entry was pushed.
type whileRef struct {
	rule  *WhileRule
	depth int
}

// State is the continuation state threaded between lines. It is an
// immutable value: every transition builds a new State sharing
// unmodified structure with the old one, so callers can cheaply retain
// one State per line.
type State struct {
	entries    []Entry
	whileStack []whileRef
}

// rootState wraps a single root-level entry.
func rootState(e Entry) State {
	return State{entries: []Entry{e}}
}

// Top returns the innermost entry.
func (s State) Top() Entry {
	return s.entries[len(s.entries)-1]
}

// Depth returns the number of open entries, the root included.
func (s State) Depth() int {
	return len(s.entries)
}

// push returns a State with e as the new innermost entry. The entry
// slice is copied: two different futures may be pushed from one shared
// State, and append-in-place would let them clobber each other.
func (s State) push(e Entry) State {
	entries := make([]Entry, len(s.entries)+1)
	copy(entries, s.entries)
	entries[len(s.entries)] = e
	return State{entries: entries, whileStack: s.whileStack}
}

// pop returns a State without the innermost entry. Slicing is safe
// here because no transition ever writes through an existing State.
func (s State) pop() State {
	return State{entries: s.entries[:len(s.entries)-1], whileStack: s.whileStack}
}

// pushWhile pushes e and records the while block at the new depth.
func (s State) pushWhile(rule *WhileRule, e Entry) State {
	st := s.push(e)
	whileStack := make([]whileRef, len(s.whileStack)+1)
	copy(whileStack, s.whileStack)
	whileStack[len(s.whileStack)] = whileRef{rule: rule, depth: len(st.entries)}
	st.whileStack = whileStack
	return st
}

// popWhile removes the innermost entry together with its while record.
func (s State) popWhile() State {
	return State{
		entries:    s.entries[:len(s.entries)-1],
		whileStack: s.whileStack[:len(s.whileStack)-1],
	}
}

// Equal reports whether two states resume identically.
func (s State) Equal(o State) bool {
	if len(s.entries) != len(o.entries) || len(s.whileStack) != len(o.whileStack) {
		return false
	}
	for i := range s.entries {
		if !s.entries[i].Equal(o.entries[i]) {
			return false
		}
	}
	for i := range s.whileStack {
		if s.whileStack[i] != o.whileStack[i] {
			return false
		}
	}
	return true
}
