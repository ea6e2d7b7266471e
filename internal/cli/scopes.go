package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaklabco/scopelight/internal/logging"
	"github.com/yaklabco/scopelight/internal/ui/pretty"
	"github.com/yaklabco/scopelight/pkg/textmate"
)

// ErrOutOfRange is returned when an inspected position is outside the
// file.
var ErrOutOfRange = errors.New("position out of range")

func newScopesCommand() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "scopes FILE LINE COL",
		Short: "Show the scope path at a position",
		Long: `Show the full scope path covering one position of a file.

LINE and COL are 1-based; COL counts runes, not bytes. This is the
inspection tool for writing themes: point it at a token to learn which
selectors can style it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScopes(cmd, args, scope)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "",
		"force a grammar scope instead of detecting one")

	return cmd
}

func runScopes(cmd *cobra.Command, args []string, scope string) error {
	lineNo, err := strconv.Atoi(args[1])
	if err != nil || lineNo < 1 {
		return fmt.Errorf("%w: bad line %q", ErrOutOfRange, args[1])
	}
	col, err := strconv.Atoi(args[2])
	if err != nil || col < 1 {
		return fmt.Errorf("%w: bad column %q", ErrOutOfRange, args[2])
	}

	logger := logging.FromContext(cmd.Context())
	registry := textmate.NewRegistry(grammarDirsFromFlags(cmd), textmate.WithLogger(logger))

	name, lines, err := readInput(cmd.InOrStdin(), args[0], "stdin")
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if lineNo > len(lines) {
		return fmt.Errorf("%w: %s has %d lines", ErrOutOfRange, name, len(lines))
	}

	compiler, err := selectCompiler(registry, scope, name, lines)
	if err != nil {
		return err
	}
	logger.Debug("inspecting position",
		logging.FieldPath, name,
		logging.FieldLine, lineNo,
		logging.FieldScope, compiler.RootScope(),
	)

	cache := textmate.NewLineCache(compiler)
	cache.HighlightTo(lines, lineNo)

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

	for _, region := range cache.Regions(lineNo - 1) {
		if col-1 >= region.Start && (col-1 < region.End || region.Start == region.End) {
			fmt.Fprintln(out, pretty.FormatScopePath(styles, region.Scope))
			return nil
		}
	}
	return fmt.Errorf("%w: column %d on line %d", ErrOutOfRange, col, lineNo)
}
