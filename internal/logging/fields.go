package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError = "error"
	FieldPath  = "path"

	// Highlighting fields.
	FieldScope    = "scope"
	FieldLanguage = "language"
	FieldLine     = "line"
	FieldTheme    = "theme"

	// Statistics fields.
	FieldGrammarsLoaded = "grammars_loaded"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
