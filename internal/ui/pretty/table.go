package pretty

import (
	"fmt"
	"strings"
)

// Table formatting constants.
const (
	loadedSymbol     = "*"
	tablePadding     = 2
	tableColumnCount = 4 // SCOPE, EXTENSIONS, SOURCE, LOADED
	loadedColWidth   = 3
	minScopeWidth    = 16
	minExtWidth      = 12
	minSourceWidth   = 24
	heavySeparator   = "="
	defaultTermWidth = 100
)

// GrammarRow represents a single grammar in the listing table.
type GrammarRow struct {
	Scope      string
	Extensions []string
	Source     string
	Loaded     bool
}

// TableFormatter formats the grammar registry as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

// FormatTable formats grammar rows as a styled table.
func (t *TableFormatter) FormatTable(rows []GrammarRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")
	return builder.String()
}

type columnWidths struct {
	scope  int
	ext    int
	source int
}

// calculateColumnWidths determines optimal column widths based on content.
func (t *TableFormatter) calculateColumnWidths(rows []GrammarRow) columnWidths {
	widths := columnWidths{
		scope:  minScopeWidth,
		ext:    minExtWidth,
		source: minSourceWidth,
	}

	for _, row := range rows {
		if len(row.Scope) > widths.scope {
			widths.scope = len(row.Scope)
		}
		if ext := extList(row.Extensions); len(ext) > widths.ext {
			widths.ext = len(ext)
		}
		if len(row.Source) > widths.source {
			widths.source = len(row.Source)
		}
	}

	// Constrain to terminal width, shrinking the source column first.
	totalWidth := t.calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.source = max(minSourceWidth, widths.source-excess)

		totalWidth = t.calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.ext = max(minExtWidth, widths.ext-excess)
		}
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.scope + widths.ext + widths.source +
		(tablePadding * tableColumnCount) + loadedColWidth
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s   ",
		widths.scope, "SCOPE",
		widths.ext, "EXTENSIONS",
		widths.source, "SOURCE",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	sep := strings.Repeat(heavySeparator, t.calculateTotalWidth(widths))
	return t.styles.TableSeparator.Render(sep)
}

// formatRow formats a single table row.
func (t *TableFormatter) formatRow(row GrammarRow, widths columnWidths) string {
	scope := truncateString(row.Scope, widths.scope)
	ext := truncateString(extList(row.Extensions), widths.ext)
	source := truncateFilePath(row.Source, widths.source)

	loaded := " "
	if row.Loaded {
		loaded = t.styles.LoadedMark.Render(loadedSymbol)
	}

	return fmt.Sprintf(" %-*s  %-*s  %-*s  %s",
		widths.scope, scope,
		widths.ext, ext,
		widths.source, source,
		loaded,
	)
}

// formatLegend formats the legend explaining the table symbols.
func (t *TableFormatter) formatLegend() string {
	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s = loaded", loadedSymbol),
	)
}

func extList(exts []string) string {
	return strings.Join(exts, ", ")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
