package grammar

import "errors"

// Sentinel errors for grammar loading and include resolution.
// Callers match with errors.Is; the registry falls back to the unknown
// grammar rather than aborting the session.
var (
	// ErrMalformed indicates a structurally invalid grammar document,
	// such as a missing scope name or root pattern list.
	ErrMalformed = errors.New("malformed grammar")

	// ErrUnknownReference indicates an include target or repository key
	// that cannot be resolved.
	ErrUnknownReference = errors.New("unknown grammar reference")
)
