package textmate

// LineCache memoizes per-line highlight results for one open file.
// Lines are highlighted with a trailing newline appended so patterns
// anchored on "\n" behave as they would against the whole buffer; the
// newline's column is trimmed from the returned regions afterwards.
type LineCache struct {
	compiler *Compiler
	states   []State
	regions  [][]Region
}

// NewLineCache creates an empty cache over a compiled grammar.
func NewLineCache(compiler *Compiler) *LineCache {
	return &LineCache{compiler: compiler}
}

// Len returns the number of lines currently highlighted.
func (lc *LineCache) Len() int {
	return len(lc.regions)
}

// Regions returns the cached regions of line i. The line must already
// be covered by a HighlightTo call.
func (lc *LineCache) Regions(i int) []Region {
	return lc.regions[i]
}

// State returns the continuation state after line i.
func (lc *LineCache) State(i int) State {
	return lc.states[i]
}

// HighlightTo extends the cache so lines[0:idx] are highlighted,
// resuming from the last cached state. Already-covered lines are not
// recomputed.
func (lc *LineCache) HighlightTo(lines []string, idx int) {
	if idx <= len(lc.regions) {
		return
	}
	state := lc.compiler.RootState()
	if len(lc.states) > 0 {
		state = lc.states[len(lc.states)-1]
	}
	for i := len(lc.regions); i < idx; i++ {
		var regions []Region
		state, regions = lc.compiler.HighlightLine(state, lines[i]+"\n", i == 0)

		// Trim the synthetic newline column. The last region may end
		// up zero width; keep it so the line is still fully tiled.
		// The appended newline makes every input non-empty, so the
		// scan always emits at least one region.
		if last := len(regions) - 1; last >= 0 {
			regions[last].End--
		}

		lc.states = append(lc.states, state)
		lc.regions = append(lc.regions, regions)
	}
}

// Touch invalidates line idx and everything after it. The next
// HighlightTo recomputes from the last surviving state.
func (lc *LineCache) Touch(idx int) {
	if idx >= len(lc.regions) {
		return
	}
	lc.states = lc.states[:idx]
	lc.regions = lc.regions[:idx]
}
