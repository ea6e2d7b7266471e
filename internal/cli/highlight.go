package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/scopelight/internal/logging"
	"github.com/yaklabco/scopelight/internal/ui/pretty"
	"github.com/yaklabco/scopelight/pkg/textmate"
	"github.com/yaklabco/scopelight/pkg/theme"
)

type highlightFlags struct {
	format    string
	scope     string
	themePath string
	stdinName string
}

func newHighlightCommand() *cobra.Command {
	flags := &highlightFlags{}

	cmd := &cobra.Command{
		Use:   "highlight [files...]",
		Short: "Highlight source files",
		Long:  highlightLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHighlight(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "ansi",
		"output format: ansi, scopes, json")
	cmd.Flags().StringVar(&flags.scope, "scope", "",
		"force a grammar scope instead of detecting one per file")
	cmd.Flags().StringVar(&flags.themePath, "theme", "",
		"theme file for ansi output (built-in theme when unset)")
	cmd.Flags().StringVar(&flags.stdinName, "stdin-name", "stdin",
		"file name used for language detection when reading stdin")

	return cmd
}

const highlightLongDescription = `Highlight source files with TextMate grammars.

Each file is matched to a grammar by shebang, file name, extension, or
first-line pattern, then tokenized line by line. Reading from stdin is
supported with "-" (or no arguments).

Examples:
  scopelight highlight main.go             # Colorized output
  scopelight highlight --format scopes f   # Scope path of every span
  scopelight highlight --format json f     # Machine-readable regions
  scopelight highlight --scope source.py f # Force a specific grammar
  cat f.rb | scopelight highlight --stdin-name f.rb`

// fileRegions is one file's worth of highlight output for JSON format.
type fileRegions struct {
	Path  string       `json:"path"`
	Scope string       `json:"scope"`
	Lines []lineRegion `json:"lines"`
}

type lineRegion struct {
	Line    int          `json:"line"`
	Regions []jsonRegion `json:"regions"`
}

type jsonRegion struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Scope []string `json:"scope"`
}

func runHighlight(cmd *cobra.Command, args []string, flags *highlightFlags) error {
	logger := logging.FromContext(cmd.Context())

	registry := textmate.NewRegistry(grammarDirsFromFlags(cmd), textmate.WithLogger(logger))

	th := theme.DefaultTheme()
	if flags.themePath != "" {
		loaded, err := theme.Load(flags.themePath)
		if err != nil {
			return fmt.Errorf("load theme: %w", err)
		}
		th = loaded
		logger.Debug("loaded theme", logging.FieldTheme, flags.themePath)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	renderer := pretty.NewLineRenderer(th, pretty.IsColorEnabled(colorMode, out))

	if len(args) == 0 {
		args = []string{"-"}
	}

	var jsonOut []fileRegions
	for _, path := range args {
		name, lines, err := readInput(cmd.InOrStdin(), path, flags.stdinName)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		compiler, err := selectCompiler(registry, flags.scope, name, lines)
		if err != nil {
			return err
		}
		logger.Debug("selected grammar",
			logging.FieldPath, name,
			logging.FieldScope, compiler.RootScope(),
		)

		cache := textmate.NewLineCache(compiler)
		cache.HighlightTo(lines, len(lines))

		switch flags.format {
		case "ansi":
			for i, line := range lines {
				fmt.Fprintln(out, renderer.RenderLine(line, cache.Regions(i)))
			}
		case "scopes":
			writeScopes(out, name, lines, cache)
		case "json":
			jsonOut = append(jsonOut, collectRegions(name, lines, cache, compiler.RootScope()))
		default:
			return fmt.Errorf("%w: unknown format %q", ErrInvalidFormat, flags.format)
		}
	}

	if flags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonOut); err != nil {
			return fmt.Errorf("encoding regions: %w", err)
		}
	}
	return nil
}

// ErrInvalidFormat is returned for an unrecognized output format.
var ErrInvalidFormat = errors.New("invalid format")

// readInput loads a file, or stdin when path is "-", and splits it
// into lines without terminators.
func readInput(stdin io.Reader, path, stdinName string) (string, []string, error) {
	var data []byte
	var err error
	name := path
	if path == "-" {
		name = stdinName
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", nil, err
	}

	text := strings.TrimSuffix(string(data), "\n")
	return name, strings.Split(text, "\n"), nil
}

func selectCompiler(registry *textmate.Registry, scope, name string, lines []string) (*textmate.Compiler, error) {
	if scope != "" {
		compiler, err := registry.CompilerForScope(scope)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", scope, err)
		}
		return compiler, nil
	}
	firstLine := ""
	if len(lines) > 0 {
		firstLine = lines[0]
	}
	return registry.CompilerForFile(name, firstLine), nil
}

func writeScopes(out io.Writer, name string, lines []string, cache *textmate.LineCache) {
	for i := range lines {
		for _, region := range cache.Regions(i) {
			fmt.Fprintf(out, "%s:%d:%d-%d: %s\n",
				name, i+1, region.Start, region.End, strings.Join(region.Scope, " "))
		}
	}
}

func collectRegions(name string, lines []string, cache *textmate.LineCache, scope string) fileRegions {
	file := fileRegions{Path: name, Scope: scope, Lines: make([]lineRegion, 0, len(lines))}
	for i := range lines {
		regions := cache.Regions(i)
		jr := make([]jsonRegion, 0, len(regions))
		for _, region := range regions {
			jr = append(jr, jsonRegion{Start: region.Start, End: region.End, Scope: region.Scope})
		}
		file.Lines = append(file.Lines, lineRegion{Line: i + 1, Regions: jr})
	}
	return file
}

// termWidth returns the terminal width of stdout, or 0 when stdout is
// not a terminal.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}
