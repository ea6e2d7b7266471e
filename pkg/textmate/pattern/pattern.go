// Package pattern wraps a backtracking regex engine with the two
// scan-position-sensitive anchors the grammar dialect requires: \A
// matches only at the very start of the first line, and \G matches
// only at the continuation point, the position where the previous
// match ended with no intervening gap. Since the engine bakes anchors
// into compiled patterns, every logical pattern owns up to four lazily
// compiled physical variants, one per (firstLine, boundary)
// combination. All offsets are rune offsets.
package pattern

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dlclark/regexp2"
)

// ErrInvalidSyntax indicates a pattern that the regex engine rejects.
var ErrInvalidSyntax = errors.New("invalid pattern syntax")

// Regex is one logical pattern with its compiled anchor variants. All
// four variants are compiled up front; grammars are loaded once and a
// Regex is then shared read-only across goroutines, so the extra
// compiled-pattern memory is an acceptable trade for keeping the
// engine free of per-call flags.
type Regex struct {
	source   string
	variants [4]*regexp2.Regexp
}

// variantIndex maps a call's anchor context to a variant slot.
func variantIndex(firstLine, boundary bool) int {
	i := 0
	if firstLine {
		i |= 1
	}
	if boundary {
		i |= 2
	}
	return i
}

// The process-wide pattern cache. Identical sources across grammars
// share one Regex, which also makes compiled end patterns pointer
// comparable for state equality.
var (
	cacheMu  sync.Mutex
	compiled = make(map[string]*Regex)
)

// Compile compiles src, reusing a cached Regex for a source seen
// before. Syntax errors surface here, once, not during scanning.
func Compile(src string) (*Regex, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if r, ok := compiled[src]; ok {
		return r, nil
	}

	r := &Regex{source: src}
	for _, firstLine := range []bool{false, true} {
		for _, boundary := range []bool{false, true} {
			re, err := regexp2.Compile(rewriteAnchors(src, firstLine, boundary), regexp2.None)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSyntax, src, err)
			}
			r.variants[variantIndex(firstLine, boundary)] = re
		}
	}
	compiled[src] = r
	return r, nil
}

// MustCompile is Compile for sources known to be valid.
func MustCompile(src string) *Regex {
	r, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return r
}

// NeverMatch is a pattern that matches nothing; it stands in wherever
// an entry has no end or while pattern of its own.
var NeverMatch = MustCompile(`$ ^`)

// Source returns the original pattern text.
func (r *Regex) Source() string {
	return r.source
}

func (r *Regex) String() string {
	return fmt.Sprintf("pattern.Regex(%q)", r.source)
}

// variant returns the compiled pattern for one anchor context.
func (r *Regex) variant(firstLine, boundary bool) *regexp2.Regexp {
	return r.variants[variantIndex(firstLine, boundary)]
}

// Search finds the leftmost match at or after pos. firstLine and
// boundary select which anchors are live for this call.
func (r *Regex) Search(line string, pos int, firstLine, boundary bool) *Match {
	m, err := r.variant(firstLine, boundary).FindStringMatchStartingAt(line, pos)
	if err != nil || m == nil {
		return nil
	}
	return &Match{m: m, line: line}
}

// MatchAt is Search constrained to matches beginning exactly at pos.
// The engine tries candidate positions left to right, so the leftmost
// search match starting at pos is exactly the anchored match.
func (r *Regex) MatchAt(line string, pos int, firstLine, boundary bool) *Match {
	m := r.Search(line, pos, firstLine, boundary)
	if m == nil || m.Start() != pos {
		return nil
	}
	return m
}

// Match is one successful application of a Regex to a line.
type Match struct {
	m    *regexp2.Match
	line string
}

// Line returns the text the match ran against.
func (m *Match) Line() string {
	return m.line
}

// Start returns the rune offset where the match begins.
func (m *Match) Start() int {
	return m.m.Index
}

// End returns the rune offset just past the match.
func (m *Match) End() int {
	return m.m.Index + m.m.Length
}

// Text returns the matched text.
func (m *Match) Text() string {
	return m.m.String()
}

// GroupSpan reports the rune span of capture group n. ok is false when
// the group does not exist in the pattern or did not participate in
// the match.
func (m *Match) GroupSpan(n int) (start, end int, ok bool) {
	g := m.m.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return 0, 0, false
	}
	return g.Index, g.Index + g.Length, true
}

// GroupText returns the text captured by group n, or "" when the group
// is absent or did not participate.
func (m *Match) GroupText(n int) string {
	g := m.m.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}
