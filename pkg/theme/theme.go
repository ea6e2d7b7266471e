// Package theme maps scope paths to terminal styles. A theme is a flat
// YAML document of scope-selector keys; selection walks a region's
// scope path innermost first and picks the most specific selector that
// matches any element of it.
package theme

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Style is the renderable attribute set for one selector. Colors are
// terminal color strings in any form lipgloss accepts ("1", "201",
// "#ff00ff").
type Style struct {
	Foreground string `yaml:"fg"`
	Background string `yaml:"bg"`
	Bold       bool   `yaml:"bold"`
	Italic     bool   `yaml:"italic"`
	Underline  bool   `yaml:"underline"`
}

// Theme is a parsed theme document.
type Theme struct {
	// Default applies where no selector matches.
	Default Style

	selectors map[string]Style
}

type document struct {
	Default Style            `yaml:"default"`
	Scopes  map[string]Style `yaml:"scopes"`
}

// Load reads and parses a theme file.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return t, nil
}

// Parse parses a theme document.
func Parse(data []byte) (*Theme, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &Theme{Default: doc.Default, selectors: doc.Scopes}, nil
}

// DefaultTheme returns the built-in fallback theme.
func DefaultTheme() *Theme {
	return &Theme{
		selectors: map[string]Style{
			"comment":            {Foreground: "8", Italic: true},
			"string":             {Foreground: "2"},
			"constant":           {Foreground: "5"},
			"constant.numeric":   {Foreground: "5"},
			"keyword":            {Foreground: "4", Bold: true},
			"storage":            {Foreground: "4"},
			"entity.name":        {Foreground: "3"},
			"variable":           {Foreground: "6"},
			"support":            {Foreground: "6"},
			"invalid":            {Foreground: "15", Background: "1"},
			"markup.heading":     {Bold: true},
			"markup.bold":        {Bold: true},
			"markup.italic":      {Italic: true},
			"markup.underline":   {Underline: true},
			"punctuation.quoted": {Foreground: "2"},
		},
	}
}

// Select returns the style for a scope path. The innermost scope wins;
// within one scope element, the longest matching selector wins. A
// selector matches a scope element when it equals the element or is a
// dot-separated prefix of it.
func (t *Theme) Select(scope []string) Style {
	for i := len(scope) - 1; i >= 0; i-- {
		if style, ok := t.selectScope(scope[i]); ok {
			return style
		}
	}
	return t.Default
}

func (t *Theme) selectScope(element string) (Style, bool) {
	// Trim selector segments off the end until one matches.
	for sel := element; sel != ""; {
		if style, ok := t.selectors[sel]; ok {
			return style, true
		}
		dot := strings.LastIndexByte(sel, '.')
		if dot < 0 {
			break
		}
		sel = sel[:dot]
	}
	return Style{}, false
}
