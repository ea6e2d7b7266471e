// Package main is the entry point for the scopelight CLI.
package main

import (
	"context"
	"os"

	"github.com/yaklabco/scopelight/internal/cli"
	"github.com/yaklabco/scopelight/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Build and execute the root command.
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	// Commands read the logger back from their cmd.Context().
	ctx := logging.WithLogger(context.Background(), logging.Default())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger := logging.Default()
		logger.Error("command failed", logging.FieldError, err)
		return cli.ExitCodeForError(err)
	}

	return cli.ExitSuccess
}
