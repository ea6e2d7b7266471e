package theme_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/scopelight/pkg/theme"
)

func TestParse(t *testing.T) {
	t.Parallel()

	th, err := theme.Parse([]byte(`
default:
  fg: "7"
scopes:
  comment:
    fg: "8"
    italic: true
  keyword.control:
    fg: "#ff00ff"
    bold: true
`))
	require.NoError(t, err)

	assert.Equal(t, theme.Style{Foreground: "7"}, th.Default)
	assert.Equal(t,
		theme.Style{Foreground: "8", Italic: true},
		th.Select([]string{"source.go", "comment.line"}))
	assert.Equal(t,
		theme.Style{Foreground: "#ff00ff", Bold: true},
		th.Select([]string{"source.go", "keyword.control.import"}))
}

func TestParseRejectsBadYAML(t *testing.T) {
	t.Parallel()

	_, err := theme.Parse([]byte("scopes: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mono.yaml")
	doc := "scopes:\n  string: {fg: \"2\"}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	th, err := theme.Load(path)
	require.NoError(t, err)
	assert.Equal(t, theme.Style{Foreground: "2"}, th.Select([]string{"string.quoted"}))

	_, err = theme.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSelectInnermostScopeWins(t *testing.T) {
	t.Parallel()

	th, err := theme.Parse([]byte(`
scopes:
  string: {fg: "2"}
  constant: {fg: "5"}
`))
	require.NoError(t, err)

	// The escape sequence inside the string takes the constant style.
	got := th.Select([]string{"source.go", "string.quoted.double", "constant.character.escape"})
	assert.Equal(t, theme.Style{Foreground: "5"}, got)

	// An inner scope with no selector falls through to an outer one.
	got = th.Select([]string{"source.go", "string.quoted.double", "meta.embedded"})
	assert.Equal(t, theme.Style{Foreground: "2"}, got)
}

func TestSelectLongestSelectorWins(t *testing.T) {
	t.Parallel()

	th, err := theme.Parse([]byte(`
scopes:
  constant: {fg: "5"}
  constant.numeric: {fg: "1", bold: true}
`))
	require.NoError(t, err)

	assert.Equal(t, theme.Style{Foreground: "1", Bold: true},
		th.Select([]string{"constant.numeric.integer"}))
	assert.Equal(t, theme.Style{Foreground: "5"},
		th.Select([]string{"constant.language.nil"}))
}

func TestSelectorMatchesWholeSegmentsOnly(t *testing.T) {
	t.Parallel()

	th, err := theme.Parse([]byte(`
scopes:
  comment: {fg: "8"}
`))
	require.NoError(t, err)

	// "commentary" is not a dot-prefix match for "comment".
	assert.Equal(t, theme.Style{}, th.Select([]string{"commentary.block"}))
}

func TestSelectFallsBackToDefault(t *testing.T) {
	t.Parallel()

	th, err := theme.Parse([]byte(`
default: {fg: "7", bg: "0"}
scopes:
  string: {fg: "2"}
`))
	require.NoError(t, err)

	assert.Equal(t, theme.Style{Foreground: "7", Background: "0"},
		th.Select([]string{"source.go", "variable.other"}))
	assert.Equal(t, theme.Style{Foreground: "7", Background: "0"}, th.Select(nil))
}

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	th := theme.DefaultTheme()
	assert.NotEqual(t, theme.Style{}, th.Select([]string{"comment.line.double-slash"}))
	assert.NotEqual(t, theme.Style{}, th.Select([]string{"keyword.control"}))
	assert.Equal(t, th.Default, th.Select([]string{"source.unknown"}))
}
