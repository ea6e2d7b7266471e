package pattern

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// unsatisfiable is spliced into a pattern in place of an anchor that
// cannot hold for the current call: an empty negative lookahead matches
// nothing, ever, and introduces no capture groups.
const unsatisfiable = `(?!)`

// rewriteAnchors produces the physical pattern text for one
// (firstLine, boundary) variant. The dialect's scan-position anchors
// are compiled into the pattern rather than parameterized per call, so
// each anchor that is known false for this variant is replaced with an
// unsatisfiable expression:
//
//   - \A (start of scan) survives only when firstLine is true
//   - \G (continuation point) survives only when boundary is true
//   - \z and \Z are always replaced: end-of-buffer is unknowable when
//     matching a single line at a time
//
// The scan walks escape pairs so ordinary escapes, including a literal
// backslash immediately before an A or G, pass through untouched.
func rewriteAnchors(src string, firstLine, boundary bool) string {
	var out strings.Builder
	out.Grow(len(src))
	for i := 0; i < len(src); {
		c := src[i]
		if c != '\\' || i+1 >= len(src) {
			out.WriteByte(c)
			i++
			continue
		}
		next := src[i+1]
		switch {
		case next == 'A' && !firstLine:
			out.WriteString(unsatisfiable)
		case next == 'G' && !boundary:
			out.WriteString(unsatisfiable)
		case next == 'z' || next == 'Z':
			out.WriteString(unsatisfiable)
		default:
			out.WriteByte('\\')
			out.WriteByte(next)
		}
		i += 2
	}
	return out.String()
}

// ExpandBackrefs substitutes numbered back-references in src with the
// literal (escaped) text of the corresponding groups of m. End and
// while patterns may reference their begin match's groups, and the
// engine compiles them per block entry, so the references have to be
// resolved textually before compilation. A reference to a group that
// did not participate expands to nothing; third-party grammars contain
// such references routinely.
func ExpandBackrefs(m *Match, src string) string {
	var out strings.Builder
	out.Grow(len(src))
	for i := 0; i < len(src); {
		c := src[i]
		if c != '\\' || i+1 >= len(src) {
			out.WriteByte(c)
			i++
			continue
		}
		next := src[i+1]
		if next < '0' || next > '9' {
			out.WriteByte('\\')
			out.WriteByte(next)
			i += 2
			continue
		}
		j := i + 1
		for j < len(src) && src[j] >= '0' && src[j] <= '9' {
			j++
		}
		group := 0
		for _, d := range src[i+1 : j] {
			group = group*10 + int(d-'0')
		}
		out.WriteString(regexp2.Escape(m.GroupText(group)))
		i = j
	}
	return out.String()
}
