package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/scopelight/pkg/textmate/grammar"
	"github.com/yaklabco/scopelight/pkg/textmate/pattern"
)

// Exit codes for scopelight.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitGrammarError indicates grammar loading or compilation errors.
	ExitGrammarError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeForError maps a command error to a process exit code.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidFormat) || errors.Is(err, ErrOutOfRange):
		return ExitInvalidUsage
	case errors.Is(err, grammar.ErrMalformed) ||
		errors.Is(err, grammar.ErrUnknownReference) ||
		errors.Is(err, pattern.ErrInvalidSyntax):
		return ExitGrammarError
	case errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
