package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/scopelight/internal/cli"
	"github.com/yaklabco/scopelight/internal/logging"
	"github.com/yaklabco/scopelight/pkg/textmate/grammar"
)

const matchGrammar = `{
	"scopeName": "source.demo",
	"patterns": [{"match": "a", "name": "letter"}]
}`

const quoteGrammar = `{
	"scopeName": "source.demo",
	"patterns": [{"begin": "'", "end": "'", "name": "string"}]
}`

// grammarDir writes one grammar into a fresh directory and returns it.
func grammarDir(t *testing.T, doc string, scope string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, scope+".json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return dir
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCommand executes the CLI with the given stdin and arguments and
// returns captured stdout.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "none", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHighlightScopesFormat(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, matchGrammar, "source.demo")
	path := writeFile(t, "input.demo", "ab\n")

	out, err := runCommand(t, "",
		"highlight", "--grammars", dir, "--scope", "source.demo",
		"--format", "scopes", path)
	require.NoError(t, err)

	expected := fmt.Sprintf("%s:1:0-1: source.demo letter\n%s:1:1-2: source.demo\n", path, path)
	assert.Equal(t, expected, out)
}

func TestHighlightAnsiWithoutColorEchoesLines(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, matchGrammar, "source.demo")
	path := writeFile(t, "input.demo", "abc\nxyz\n")

	out, err := runCommand(t, "",
		"highlight", "--grammars", dir, "--scope", "source.demo",
		"--color", "never", path)
	require.NoError(t, err)
	assert.Equal(t, "abc\nxyz\n", out)
}

func TestHighlightJSONFromStdin(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, matchGrammar, "source.demo")

	out, err := runCommand(t, "ba\n",
		"highlight", "--grammars", dir, "--scope", "source.demo",
		"--format", "json", "--stdin-name", "snippet.demo", "-")
	require.NoError(t, err)

	var files []struct {
		Path  string `json:"path"`
		Scope string `json:"scope"`
		Lines []struct {
			Line    int `json:"line"`
			Regions []struct {
				Start int      `json:"start"`
				End   int      `json:"end"`
				Scope []string `json:"scope"`
			} `json:"regions"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "snippet.demo", files[0].Path)
	assert.Equal(t, "source.demo", files[0].Scope)
	require.Len(t, files[0].Lines, 1)
	regions := files[0].Lines[0].Regions
	require.Len(t, regions, 3)
	assert.Equal(t, []string{"source.demo"}, regions[0].Scope)
	assert.Equal(t, []string{"source.demo", "letter"}, regions[1].Scope)
	assert.Equal(t, 1, regions[1].Start)
	assert.Equal(t, 2, regions[1].End)
	// Trailing zero-width region left by the newline trim.
	assert.Equal(t, 2, regions[2].Start)
	assert.Equal(t, 2, regions[2].End)
}

func TestHighlightRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, matchGrammar, "source.demo")
	path := writeFile(t, "input.demo", "a\n")

	_, err := runCommand(t, "",
		"highlight", "--grammars", dir, "--scope", "source.demo",
		"--format", "bogus", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, cli.ErrInvalidFormat)
}

func TestHighlightMissingFile(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, matchGrammar, "source.demo")
	_, err := runCommand(t, "",
		"highlight", "--grammars", dir, filepath.Join(dir, "nope.demo"))
	assert.Error(t, err)
}

func TestHighlightUnknownForcedScope(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, matchGrammar, "source.demo")
	path := writeFile(t, "input.demo", "a\n")

	_, err := runCommand(t, "",
		"highlight", "--grammars", dir, "--scope", "source.nope", path)
	assert.Error(t, err)
}

func TestScopesCommand(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, quoteGrammar, "source.demo")
	path := writeFile(t, "input.demo", "a 'b' c\n")

	out, err := runCommand(t, "",
		"scopes", "--grammars", dir, "--scope", "source.demo",
		"--color", "never", path, "1", "4")
	require.NoError(t, err)
	assert.Equal(t, "source.demo string\n", out)
}

func TestScopesRejectsBadPositions(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, quoteGrammar, "source.demo")
	path := writeFile(t, "input.demo", "a 'b' c\n")

	tests := []struct {
		name string
		line string
		col  string
	}{
		{"line not a number", "x", "1"},
		{"line below one", "0", "1"},
		{"column below one", "1", "0"},
		{"line past end of file", "99", "1"},
		{"column past end of line", "1", "99"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := runCommand(t, "",
				"scopes", "--grammars", dir, "--scope", "source.demo",
				path, testCase.line, testCase.col)
			require.Error(t, err)
			assert.ErrorIs(t, err, cli.ErrOutOfRange)
		})
	}
}

func TestGrammarsJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "source.beta.json"),
		[]byte(`{"scopeName": "source.beta", "patterns": []}`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "source.alpha.json"),
		[]byte(`{"scopeName": "source.alpha", "fileTypes": ["alp"], "patterns": []}`), 0o644))

	out, err := runCommand(t, "", "grammars", "--grammars", dir, "--format", "json", "--load")
	require.NoError(t, err)

	var infos []struct {
		Scope      string   `json:"scope"`
		Path       string   `json:"path"`
		Extensions []string `json:"extensions"`
		Loaded     bool     `json:"loaded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "source.alpha", infos[0].Scope)
	assert.Equal(t, []string{"alp"}, infos[0].Extensions)
	assert.True(t, infos[0].Loaded)
	assert.Equal(t, "source.beta", infos[1].Scope)
	assert.True(t, infos[1].Loaded)
}

func TestGrammarsTable(t *testing.T) {
	t.Parallel()

	dir := grammarDir(t, matchGrammar, "source.demo")

	out, err := runCommand(t, "", "grammars", "--grammars", dir, "--color", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "SCOPE")
	assert.Contains(t, out, "source.demo")
	assert.Contains(t, out, "Legend: * = loaded")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "", "version")
	assert.NoError(t, err)
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeForError(nil))
	assert.Equal(t, cli.ExitInvalidUsage,
		cli.ExitCodeForError(fmt.Errorf("%w: no such format", cli.ErrInvalidFormat)))
	assert.Equal(t, cli.ExitGrammarError,
		cli.ExitCodeForError(fmt.Errorf("compile: %w", grammar.ErrMalformed)))
	assert.Equal(t, cli.ExitIOError,
		cli.ExitCodeForError(fmt.Errorf("read: %w", fs.ErrNotExist)))
	assert.Equal(t, cli.ExitInternalError, cli.ExitCodeForError(errors.New("boom")))
}

func TestUnknownSubcommand(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "", "frobnicate")
	assert.Error(t, err)
}

func TestCommandsLogThroughContextLogger(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := logging.New("debug")
	logger.SetOutput(&logs)

	dir := grammarDir(t, matchGrammar, "source.demo")
	path := writeFile(t, "input.demo", "ab\n")

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "none", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"highlight", "--grammars", dir, "--scope", "source.demo",
		"--format", "scopes", path,
	})

	ctx := logging.WithLogger(context.Background(), logger)
	require.NoError(t, cmd.ExecuteContext(ctx))

	assert.Contains(t, logs.String(), "selected grammar")
	assert.Contains(t, logs.String(), "source.demo")
}

func TestRootHelpListsSubcommands(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, "", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Available Commands:")
	for _, name := range []string{"highlight", "scopes", "grammars", "version"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Flags:")
	assert.Contains(t, out, "--grammars")
}
