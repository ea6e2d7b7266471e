package pretty

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/scopelight/pkg/textmate"
	"github.com/yaklabco/scopelight/pkg/theme"
)

// LineRenderer renders highlighted lines under a theme. Lipgloss style
// construction is not free, so styles are cached per theme style value.
type LineRenderer struct {
	theme        *theme.Theme
	colorEnabled bool
	cache        map[theme.Style]lipgloss.Style
}

// NewLineRenderer creates a renderer for the given theme.
func NewLineRenderer(th *theme.Theme, colorEnabled bool) *LineRenderer {
	return &LineRenderer{
		theme:        th,
		colorEnabled: colorEnabled,
		cache:        make(map[theme.Style]lipgloss.Style),
	}
}

// RenderLine renders one line using its highlight regions. Region
// offsets are rune offsets, so the line is sliced as runes. Regions
// tile the line, but a trailing zero-width region renders nothing and
// is skipped.
func (r *LineRenderer) RenderLine(line string, regions []textmate.Region) string {
	if !r.colorEnabled {
		return line
	}

	runes := []rune(line)
	var builder strings.Builder
	for _, region := range regions {
		if region.Start >= region.End {
			continue
		}
		text := string(runes[region.Start:region.End])
		builder.WriteString(r.styleFor(region.Scope).Render(text))
	}
	return builder.String()
}

func (r *LineRenderer) styleFor(scope []string) lipgloss.Style {
	st := r.theme.Select(scope)
	if cached, ok := r.cache[st]; ok {
		return cached
	}

	style := lipgloss.NewStyle()
	if st.Foreground != "" {
		style = style.Foreground(lipgloss.Color(st.Foreground))
	}
	if st.Background != "" {
		style = style.Background(lipgloss.Color(st.Background))
	}
	if st.Bold {
		style = style.Bold(true)
	}
	if st.Italic {
		style = style.Italic(true)
	}
	if st.Underline {
		style = style.Underline(true)
	}
	r.cache[st] = style
	return style
}

// FormatScopePath renders a scope path for inspection output, root
// first, innermost last.
func FormatScopePath(styles *Styles, scope []string) string {
	if len(scope) == 0 {
		return ""
	}
	parts := make([]string, 0, len(scope))
	for i, element := range scope {
		if i == len(scope)-1 {
			parts = append(parts, styles.ScopeLeaf.Render(element))
		} else {
			parts = append(parts, styles.ScopeRoot.Render(element))
		}
	}
	return strings.Join(parts, " ")
}
