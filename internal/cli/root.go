// Package cli provides the Cobra command structure for scopelight.
package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/scopelight/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root scopelight command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var grammarDirs []string
	var color string

	rootCmd := &cobra.Command{
		Use:   "scopelight",
		Short: "An incremental TextMate-grammar syntax highlighter",
		Long: `scopelight tokenizes source files with TextMate grammars and assigns
hierarchical scope paths to every span of every line.

Grammars are loaded on demand from grammar directories, files are matched
to languages by shebang, file name, extension, or first-line pattern, and
lines are highlighted incrementally so edits only recompute what follows
them.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&grammarDirs, "grammars", nil,
		"grammar directories (defaults to the user config grammar directory)")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newHighlightCommand())
	rootCmd.AddCommand(newScopesCommand())
	rootCmd.AddCommand(newGrammarsCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	newHelpFormatter(color, os.Stdout).applyToCommand(rootCmd)

	return rootCmd
}

// grammarDirsFromFlags resolves the grammar directories for a command,
// falling back to <user config dir>/scopelight/grammars.
func grammarDirsFromFlags(cmd *cobra.Command) []string {
	dirs, err := cmd.Flags().GetStringSlice("grammars")
	if err == nil && len(dirs) > 0 {
		return dirs
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(configDir, "scopelight", "grammars")}
}
