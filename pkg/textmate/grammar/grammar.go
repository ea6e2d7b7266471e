// Package grammar parses TextMate-style grammar documents into an
// immutable rule tree. A grammar is parsed once and then shared
// read-only by every compiler that references it, including via
// cross-grammar includes.
package grammar

// unreachableEnd is substituted for a missing end pattern so that a
// malformed begin rule opens a block that simply never closes instead
// of hanging or crashing grammar loading. Some published grammars (xml,
// for one) ship begin rules with no end at all.
const unreachableEnd = `$impossible^`

// Capture associates a capture-group index with the rule used to
// re-tokenize that group's text.
type Capture struct {
	Group int
	Rule  *Rule
}

// Rule is one node of the raw rule tree. Exactly which fields are set
// determines its kind: a match rule (Match), a begin/end or begin/while
// block (Begin plus End or While), an include reference (Include), or a
// plain container (Patterns only). Match, Begin, End, and While are nil
// when absent so an explicitly empty pattern stays distinguishable.
//
// Name and ContentName are scope-path fragments, already split on
// whitespace; segments are never empty.
type Rule struct {
	Name        []string
	Match       *string
	Begin       *string
	End         *string
	While       *string
	ContentName []string

	// Capture tables, ordered by ascending group index.
	Captures      []Capture
	BeginCaptures []Capture
	EndCaptures   []Capture
	WhileCaptures []Capture

	Include  string
	Patterns []*Rule

	// Repository is the chain visible to this rule's includes.
	Repository *Repository
}

// Grammar is a parsed grammar document. Immutable once built.
type Grammar struct {
	ScopeName  string
	Patterns   []*Rule
	Repository *Repository

	// Selection metadata, used by the registry only.
	FileTypes      []string
	FirstLineMatch string
}
