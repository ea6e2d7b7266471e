package textmate

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/scopelight/pkg/textmate/grammar"
	"github.com/yaklabco/scopelight/pkg/textmate/pattern"
)

// flattened is a resolved pattern list: parallel slices of pattern
// sources and the leaf rules they select, produced by expanding
// include and group nodes inline.
type flattened struct {
	sources []string
	rules   []*grammar.Rule
}

func (f *flattened) extend(o flattened) {
	f.sources = append(f.sources, o.sources...)
	f.rules = append(f.rules, o.rules...)
}

// includeKey identifies one include resolution. The repository pointer
// participates because the same target string resolves differently
// under different repository chains.
type includeKey struct {
	grammar *grammar.Grammar
	repo    *grammar.Repository
	target  string
}

// Compiler turns one grammar's raw rule tree into executable rules on
// demand. Rule graphs are cyclic through repositories and $self, so
// every cache here is keyed by node pointer identity, never by
// structure; that is what makes compilation terminate and stay linear
// in the number of distinct nodes. A Compiler is shared by every open
// file of its language; the caches fill in during scanning, so it is
// not safe for concurrent use.
type Compiler struct {
	rootScope string
	registry  *Registry
	logger    *log.Logger

	ruleGrammar map[*grammar.Rule]*grammar.Grammar
	compiled    map[*grammar.Rule]CompiledRule
	includes    map[includeKey]flattened
	children    map[*grammar.Rule]flattened
	items       map[*grammar.Rule]flattened
	roots       map[*grammar.Grammar]flattened

	rootState State
	warned    bool
}

func newCompiler(g *grammar.Grammar, registry *Registry) (*Compiler, error) {
	c := &Compiler{
		rootScope:   g.ScopeName,
		registry:    registry,
		logger:      registry.logger,
		ruleGrammar: make(map[*grammar.Rule]*grammar.Grammar),
		compiled:    make(map[*grammar.Rule]CompiledRule),
		includes:    make(map[includeKey]flattened),
		children:    make(map[*grammar.Rule]flattened),
		items:       make(map[*grammar.Rule]flattened),
		roots:       make(map[*grammar.Grammar]flattened),
	}
	root, err := c.compileRoot(g)
	if err != nil {
		return nil, err
	}
	c.rootState = rootState(Entry{
		Scope: root.name,
		Rule:  root,
		Reg:   pattern.NeverMatch,
	})
	return c, nil
}

// RootScope returns the scope name of the grammar this compiler was
// built for.
func (c *Compiler) RootScope() string {
	return c.rootScope
}

// RootState returns the continuation state for the start of a file.
func (c *Compiler) RootState() State {
	return c.rootState
}

func (c *Compiler) compileRoot(g *grammar.Grammar) (*PatternRule, error) {
	flat, err := c.rootPatterns(g)
	if err != nil {
		return nil, err
	}
	set, err := pattern.CompileSet(flat.sources)
	if err != nil {
		return nil, err
	}
	return &PatternRule{name: []string{g.ScopeName}, set: set, rules: flat.rules}, nil
}

// visit records which grammar owns a rule so it can be compiled later
// without re-deriving its context.
func (c *Compiler) visit(g *grammar.Grammar, r *grammar.Rule) *grammar.Rule {
	c.ruleGrammar[r] = g
	return r
}

// rootPatterns flattens a grammar's root pattern list, cached per
// grammar.
func (c *Compiler) rootPatterns(g *grammar.Grammar) (flattened, error) {
	if f, ok := c.roots[g]; ok {
		return f, nil
	}
	f, err := c.flatten(g, g.Patterns)
	if err != nil {
		return flattened{}, err
	}
	c.roots[g] = f
	return f, nil
}

// childPatterns flattens a rule's own pattern list, cached per rule.
func (c *Compiler) childPatterns(g *grammar.Grammar, r *grammar.Rule) (flattened, error) {
	if f, ok := c.children[r]; ok {
		return f, nil
	}
	f, err := c.flatten(g, r.Patterns)
	if err != nil {
		return flattened{}, err
	}
	c.children[r] = f
	return f, nil
}

// itemPatterns flattens a single repository rule as if it were a
// one-element pattern list, cached per rule.
func (c *Compiler) itemPatterns(g *grammar.Grammar, r *grammar.Rule) (flattened, error) {
	if f, ok := c.items[r]; ok {
		return f, nil
	}
	f, err := c.flatten(g, []*grammar.Rule{r})
	if err != nil {
		return flattened{}, err
	}
	c.items[r] = f
	return f, nil
}

// flatten expands a pattern list into leaf alternatives: includes are
// resolved, groups are expanded inline, and match/begin rules are
// collected with their trigger patterns.
func (c *Compiler) flatten(g *grammar.Grammar, rules []*grammar.Rule) (flattened, error) {
	var out flattened
	for _, r := range rules {
		switch {
		case r.Include != "":
			f, err := c.include(g, r.Repository, r.Include)
			if err != nil {
				return flattened{}, err
			}
			out.extend(f)
		case r.Match == nil && r.Begin == nil && len(r.Patterns) > 0:
			f, err := c.childPatterns(g, r)
			if err != nil {
				return flattened{}, err
			}
			out.extend(f)
		case r.Match != nil:
			out.sources = append(out.sources, *r.Match)
			out.rules = append(out.rules, c.visit(g, r))
		case r.Begin != nil:
			out.sources = append(out.sources, *r.Begin)
			out.rules = append(out.rules, c.visit(g, r))
		default:
			return flattened{}, fmt.Errorf(
				"%w: rule has no match, begin, patterns, or include", grammar.ErrMalformed)
		}
	}
	return out, nil
}

// include resolves one include target, in priority order: $self, then
// $base, then #repository-key, then another grammar's root, then a
// repository key inside another grammar.
func (c *Compiler) include(g *grammar.Grammar, repo *grammar.Repository, target string) (flattened, error) {
	key := includeKey{grammar: g, repo: repo, target: target}
	if f, ok := c.includes[key]; ok {
		return f, nil
	}

	var f flattened
	var err error
	switch {
	case target == "$self":
		f, err = c.rootPatterns(g)
	case target == "$base":
		// $base resolves against the compiler's root grammar, which is
		// not necessarily the grammar the include appears in.
		var base *grammar.Grammar
		base, err = c.registry.grammarForScope(c.rootScope)
		if err == nil {
			f, err = c.include(base, base.Repository, "$self")
		}
	case strings.HasPrefix(target, "#"):
		rule, ok := repo.Lookup(target[1:])
		if !ok {
			return flattened{}, fmt.Errorf(
				"%w: repository key %q in %s", grammar.ErrUnknownReference, target[1:], g.ScopeName)
		}
		f, err = c.itemPatterns(g, rule)
	case !strings.Contains(target, "#"):
		var other *grammar.Grammar
		other, err = c.registry.grammarForScope(target)
		if err == nil {
			f, err = c.include(other, other.Repository, "$self")
		}
	default:
		scope, name, _ := strings.Cut(target, "#")
		var other *grammar.Grammar
		other, err = c.registry.grammarForScope(scope)
		if err == nil {
			f, err = c.include(other, other.Repository, "#"+name)
		}
	}
	if err != nil {
		return flattened{}, err
	}
	c.includes[key] = f
	return f, nil
}

// capturesRef resolves a raw capture table, recording grammar ownership
// of each capture rule. Compilation itself is deferred until the group
// first participates in a match.
func (c *Compiler) capturesRef(g *grammar.Grammar, caps []grammar.Capture) []capture {
	if len(caps) == 0 {
		return nil
	}
	out := make([]capture, 0, len(caps))
	for _, cg := range caps {
		out = append(out, capture{group: cg.Group, rule: c.visit(g, cg.Rule)})
	}
	return out
}

// compileRule produces the executable form of a raw rule, memoized by
// node identity.
func (c *Compiler) compileRule(r *grammar.Rule) (CompiledRule, error) {
	if cr, ok := c.compiled[r]; ok {
		return cr, nil
	}
	g, ok := c.ruleGrammar[r]
	if !ok {
		return nil, fmt.Errorf("%w: rule compiled outside its grammar", grammar.ErrUnknownReference)
	}
	cr, err := c.compileRuleIn(g, r)
	if err != nil {
		return nil, err
	}
	c.compiled[r] = cr
	return cr, nil
}

func (c *Compiler) compileRuleIn(g *grammar.Grammar, r *grammar.Rule) (CompiledRule, error) {
	switch {
	case r.Match != nil:
		return &MatchRule{name: r.Name, captures: c.capturesRef(g, r.Captures)}, nil

	case r.Begin != nil && r.End != nil:
		flat, err := c.childPatterns(g, r)
		if err != nil {
			return nil, err
		}
		set, err := pattern.CompileSet(flat.sources)
		if err != nil {
			return nil, err
		}
		return &EndRule{
			name:          r.Name,
			contentName:   r.ContentName,
			beginCaptures: c.capturesRef(g, r.BeginCaptures),
			endCaptures:   c.capturesRef(g, r.EndCaptures),
			end:           *r.End,
			set:           set,
			rules:         flat.rules,
		}, nil

	case r.Begin != nil && r.While != nil:
		flat, err := c.childPatterns(g, r)
		if err != nil {
			return nil, err
		}
		set, err := pattern.CompileSet(flat.sources)
		if err != nil {
			return nil, err
		}
		return &WhileRule{
			name:          r.Name,
			contentName:   r.ContentName,
			beginCaptures: c.capturesRef(g, r.BeginCaptures),
			whileCaptures: c.capturesRef(g, r.WhileCaptures),
			while:         *r.While,
			set:           set,
			rules:         flat.rules,
		}, nil

	default:
		flat, err := c.childPatterns(g, r)
		if err != nil {
			return nil, err
		}
		set, err := pattern.CompileSet(flat.sources)
		if err != nil {
			return nil, err
		}
		return &PatternRule{name: r.Name, set: set, rules: flat.rules}, nil
	}
}
