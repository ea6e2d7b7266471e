package textmate

import (
	"github.com/yaklabco/scopelight/pkg/textmate/grammar"
	"github.com/yaklabco/scopelight/pkg/textmate/pattern"
)

// CompiledRule is the closed set of executable rule kinds. The kinds
// are fixed, so call sites dispatch with a type switch and the compiler
// flags any unhandled kind; there is deliberately no behavior on the
// interface itself beyond naming.
type CompiledRule interface {
	// ScopeName returns the rule's scope-path fragment.
	ScopeName() []string

	compiledRule()
}

// capture pairs a group index with the raw rule that re-tokenizes the
// group's text. The rule is compiled lazily on first participation so
// unreachable sub-grammars are never compiled at all.
type capture struct {
	group int
	rule  *grammar.Rule
}

// PatternRule is a flattened container: the root of a grammar or a
// group rule, holding only alternatives.
type PatternRule struct {
	name  []string
	set   *pattern.Set
	rules []*grammar.Rule
}

// MatchRule consumes a single match and re-tokenizes its captures.
type MatchRule struct {
	name     []string
	captures []capture
}

// EndRule is an open begin/end block: alternatives scanned inside the
// block, plus the end source compiled per entry against the begin
// match's groups.
type EndRule struct {
	name          []string
	contentName   []string
	beginCaptures []capture
	endCaptures   []capture
	end           string
	set           *pattern.Set
	rules         []*grammar.Rule
}

// WhileRule is an open begin/while block: like EndRule, but its
// continuation pattern is re-validated at the start of every
// subsequent line instead of closing the block.
type WhileRule struct {
	name          []string
	contentName   []string
	beginCaptures []capture
	whileCaptures []capture
	while         string
	set           *pattern.Set
	rules         []*grammar.Rule
}

func (r *PatternRule) ScopeName() []string { return r.name }
func (r *MatchRule) ScopeName() []string   { return r.name }
func (r *EndRule) ScopeName() []string     { return r.name }
func (r *WhileRule) ScopeName() []string   { return r.name }

func (r *PatternRule) compiledRule() {}
func (r *MatchRule) compiledRule()   {}
func (r *EndRule) compiledRule()     {}
func (r *WhileRule) compiledRule()   {}
