package pattern

import (
	"strings"
	"sync"
)

// Set answers "which of these alternatives matches first" for the
// parallel pattern/rule lists a compiled block carries. Alternative i
// of a Set corresponds to rule i of its owner: the winner is the
// alternative whose match starts earliest, with ties broken by lowest
// index.
type Set struct {
	regexes []*Regex
}

var (
	setCacheMu sync.Mutex
	setCache   = make(map[string]*Set)
)

// CompileSet compiles a regex set. Identical source lists share one
// Set. An empty list is valid and never matches.
func CompileSet(srcs []string) (*Set, error) {
	key := strings.Join(srcs, "\x00")
	setCacheMu.Lock()
	defer setCacheMu.Unlock()
	if s, ok := setCache[key]; ok {
		return s, nil
	}

	regexes := make([]*Regex, 0, len(srcs))
	for _, src := range srcs {
		r, err := Compile(src)
		if err != nil {
			return nil, err
		}
		regexes = append(regexes, r)
	}
	s := &Set{regexes: regexes}
	setCache[key] = s
	return s, nil
}

// Len returns the number of alternatives.
func (s *Set) Len() int {
	return len(s.regexes)
}

// Search returns the index and match of the winning alternative at or
// after pos, or (-1, nil) when nothing matches.
func (s *Set) Search(line string, pos int, firstLine, boundary bool) (int, *Match) {
	bestIdx, best := -1, (*Match)(nil)
	for i, r := range s.regexes {
		m := r.Search(line, pos, firstLine, boundary)
		if m == nil {
			continue
		}
		if best == nil || m.Start() < best.Start() {
			bestIdx, best = i, m
			if m.Start() == pos {
				// Nothing can start earlier than the scan position.
				break
			}
		}
	}
	return bestIdx, best
}
