package textmate

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/yaklabco/scopelight/internal/logging"
	"github.com/yaklabco/scopelight/pkg/textmate/grammar"
	"github.com/yaklabco/scopelight/pkg/textmate/pattern"
)

// step is the result of one scan transition: the successor state, the
// new scan position, the boundary flag for the rest of the line, and
// the regions the transition emitted.
type step struct {
	state    State
	pos      int
	boundary bool
	regions  []Region
}

// HighlightLine tokenizes one line given the continuation state from
// the previous one. It returns the successor state and the ordered
// regions covering [0, len(line)) in runes. A malformed grammar is
// reported once and then degrades to whole-line root-scope regions
// rather than failing the caller.
func (c *Compiler) HighlightLine(state State, line string, firstLine bool) (State, []Region) {
	next, regions, err := c.highlightLine(state, line, firstLine)
	if err != nil {
		if !c.warned {
			c.warned = true
			c.logger.Warn("highlighting disabled by grammar error",
				logging.FieldScope, c.rootScope,
				logging.FieldError, err)
		}
		region := Region{Start: 0, End: utf8.RuneCountInString(line), Scope: c.rootState.Top().Scope}
		return state, []Region{region}
	}
	return next, regions
}

func (c *Compiler) highlightLine(state State, line string, firstLine bool) (State, []Region, error) {
	var ret []Region
	pos := 0
	boundary := state.Top().Boundary

	// Re-validate open begin/while blocks outermost first. The first
	// block whose continuation pattern fails closes itself and every
	// block inside it.
	for idx := 0; idx < len(state.whileStack); idx++ {
		w := state.whileStack[idx]
		whileState := State{
			entries:    state.entries[:w.depth],
			whileStack: state.whileStack[:idx+1],
		}
		m := whileState.Top().Reg.MatchAt(line, pos, firstLine, boundary)
		if m == nil {
			state = whileState.popWhile()
			break
		}
		regions, err := c.captures(whileState.Top().Scope, m, w.rule.whileCaptures)
		if err != nil {
			return State{}, nil, err
		}
		ret = append(ret, regions...)
		pos = m.End()
		boundary = true
	}

	for {
		st, err := c.search(state, line, pos, firstLine, boundary)
		if err != nil {
			return State{}, nil, err
		}
		if st == nil {
			break
		}
		state = st.state
		pos = st.pos
		boundary = st.boundary
		ret = append(ret, st.regions...)
	}

	if lineLen := utf8.RuneCountInString(line); pos < lineLen {
		ret = append(ret, Region{Start: pos, End: lineLen, Scope: state.Top().Scope})
	}
	return state, ret, nil
}

// search performs one transition from the innermost open rule, or
// returns nil when nothing more matches on the line.
func (c *Compiler) search(state State, line string, pos int, firstLine, boundary bool) (*step, error) {
	switch r := state.Top().Rule.(type) {
	case *PatternRule:
		idx, m := r.set.Search(line, pos, firstLine, boundary)
		return c.applyMatch(state, r.rules, idx, m, pos, firstLine, boundary)
	case *WhileRule:
		idx, m := r.set.Search(line, pos, firstLine, boundary)
		return c.applyMatch(state, r.rules, idx, m, pos, firstLine, boundary)
	case *EndRule:
		return c.searchEnd(state, r, line, pos, firstLine, boundary)
	default:
		return nil, fmt.Errorf("%w: match rule used as a block", grammar.ErrMalformed)
	}
}

// searchEnd races the block's end pattern against its inner
// alternatives. An end match flush at the scan position wins without
// scanning alternatives at all; otherwise the earlier start wins and
// the end takes ties.
func (c *Compiler) searchEnd(state State, r *EndRule, line string, pos int, firstLine, boundary bool) (*step, error) {
	endMatch := state.Top().Reg.Search(line, pos, firstLine, boundary)
	if endMatch != nil && endMatch.Start() == pos {
		return c.endStep(state, r, pos, endMatch)
	}
	idx, m := r.set.Search(line, pos, firstLine, boundary)
	if endMatch != nil && (m == nil || endMatch.Start() <= m.Start()) {
		return c.endStep(state, r, pos, endMatch)
	}
	return c.applyMatch(state, r.rules, idx, m, pos, firstLine, boundary)
}

// applyMatch emits the gap before a winning alternative and enters it.
func (c *Compiler) applyMatch(state State, rules []*grammar.Rule, idx int, m *pattern.Match, pos int, firstLine, boundary bool) (*step, error) {
	if m == nil {
		return nil, nil
	}

	var regions []Region
	if m.Start() > pos {
		regions = append(regions, Region{Start: pos, End: m.Start(), Scope: state.Top().Scope})
	}

	target, err := c.compileRule(rules[idx])
	if err != nil {
		return nil, err
	}
	st, b, started, err := c.start(target, m, state)
	if err != nil {
		return nil, err
	}
	regions = append(regions, started...)
	return &step{state: st, pos: m.End(), boundary: b, regions: regions}, nil
}

// start applies a matched rule: a match rule emits its span and stays
// at the same depth, a begin/end or begin/while rule pushes an entry
// whose closing pattern is compiled against this begin match's groups.
func (c *Compiler) start(rule CompiledRule, m *pattern.Match, state State) (State, bool, []Region, error) {
	switch r := rule.(type) {
	case *MatchRule:
		scope := appendScope(state.Top().Scope, r.name)
		regions, err := c.captures(scope, m, r.captures)
		return state, false, regions, err

	case *EndRule:
		scope := appendScope(state.Top().Scope, r.name)
		reg, err := pattern.Compile(pattern.ExpandBackrefs(m, r.end))
		if err != nil {
			return State{}, false, nil, err
		}
		st := state.push(Entry{
			Scope:     appendScope(scope, r.contentName),
			Rule:      r,
			StartLine: m.Line(),
			StartPos:  m.Start(),
			Reg:       reg,
			Boundary:  m.End() == utf8.RuneCountInString(m.Line()),
		})
		regions, err := c.captures(scope, m, r.beginCaptures)
		return st, true, regions, err

	case *WhileRule:
		scope := appendScope(state.Top().Scope, r.name)
		reg, err := pattern.Compile(pattern.ExpandBackrefs(m, r.while))
		if err != nil {
			return State{}, false, nil, err
		}
		st := state.pushWhile(r, Entry{
			Scope:     appendScope(scope, r.contentName),
			Rule:      r,
			StartLine: m.Line(),
			StartPos:  m.Start(),
			Reg:       reg,
			Boundary:  m.End() == utf8.RuneCountInString(m.Line()),
		})
		regions, err := c.captures(scope, m, r.beginCaptures)
		return st, true, regions, err

	default:
		return State{}, false, nil, fmt.Errorf("%w: group rule matched as a leaf", grammar.ErrMalformed)
	}
}

// endStep closes the innermost block at an end match.
func (c *Compiler) endStep(state State, r *EndRule, pos int, m *pattern.Match) (*step, error) {
	var regions []Region
	if m.Start() > pos {
		regions = append(regions, Region{Start: pos, End: m.Start(), Scope: state.Top().Scope})
	}
	caps, err := c.captures(state.Top().Scope, m, r.endCaptures)
	if err != nil {
		return nil, err
	}
	regions = append(regions, caps...)

	end := m.End()
	if top := state.Top(); top.StartLine == m.Line() && top.StartPos == end {
		// A begin and end both matching empty at one position would
		// rescan forever. Emit a synthetic one-column region and move
		// past it; this mirrors what vscode-textmate does.
		regions = append(regions, Region{Start: end, End: end + 1, Scope: top.Scope})
		end++
	}
	return &step{state: state.pop(), pos: end, boundary: false, regions: regions}, nil
}

// captures covers a match's span, re-tokenizing each participating
// capture group under its own rule and filling the gaps with the
// enclosing scope. Groups arrive in ascending index order but their
// spans need not be ordered; a group that starts before text already
// emitted splices into the covering region instead of appending.
func (c *Compiler) captures(scope []string, m *pattern.Match, caps []capture) ([]Region, error) {
	pos, posEnd := m.Start(), m.End()
	var ret []Region
	for _, cg := range caps {
		start, end, ok := m.GroupSpan(cg.group)
		if !ok || start == end {
			continue
		}
		rule, err := c.compileRule(cg.rule)
		if err != nil {
			return nil, err
		}
		text := m.GroupText(cg.group)

		if start < pos {
			// Walk back to the emitted region containing this group.
			j := len(ret) - 1
			for j > 0 && start < ret[j-1].End {
				j--
			}
			old := ret[j]
			var split []Region
			if start > old.Start {
				split = append(split, Region{Start: old.Start, End: start, Scope: old.Scope})
			}
			inner, err := c.innerCaptureParse(start, text, old.Scope, rule)
			if err != nil {
				return nil, err
			}
			split = append(split, inner...)
			if end < old.End {
				split = append(split, Region{Start: end, End: old.End, Scope: old.Scope})
			}
			ret = slices.Concat(ret[:j], split, ret[j+1:])
		} else {
			if start > pos {
				ret = append(ret, Region{Start: pos, End: start, Scope: scope})
			}
			inner, err := c.innerCaptureParse(start, text, scope, rule)
			if err != nil {
				return nil, err
			}
			ret = append(ret, inner...)
			pos = end
		}
	}
	if pos < posEnd {
		ret = append(ret, Region{Start: pos, End: posEnd, Scope: scope})
	}
	return ret, nil
}

// innerCaptureParse tokenizes a capture group's text under its own
// rule as if it were a whole line, then shifts the result to the
// group's offset.
func (c *Compiler) innerCaptureParse(start int, s string, scope []string, rule CompiledRule) ([]Region, error) {
	st := rootState(Entry{
		Scope: appendScope(scope, rule.ScopeName()),
		Rule:  rule,
		Reg:   pattern.NeverMatch,
	})
	_, regions, err := c.highlightLine(st, s, false)
	if err != nil {
		return nil, err
	}
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		out = append(out, Region{Start: r.Start + start, End: r.End + start, Scope: r.Scope})
	}
	return out, nil
}
