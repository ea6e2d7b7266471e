package grammar

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleDoc is the on-disk shape of a single rule definition. JSON
// grammar files decode through the same path since JSON is a YAML
// subset.
type ruleDoc struct {
	Name          string              `yaml:"name"`
	Match         *string             `yaml:"match"`
	Begin         *string             `yaml:"begin"`
	End           *string             `yaml:"end"`
	While         *string             `yaml:"while"`
	ContentName   string              `yaml:"contentName"`
	Captures      map[string]*ruleDoc `yaml:"captures"`
	BeginCaptures map[string]*ruleDoc `yaml:"beginCaptures"`
	EndCaptures   map[string]*ruleDoc `yaml:"endCaptures"`
	WhileCaptures map[string]*ruleDoc `yaml:"whileCaptures"`
	Include       string              `yaml:"include"`
	Patterns      []*ruleDoc          `yaml:"patterns"`
	Repository    map[string]*ruleDoc `yaml:"repository"`
}

// document is the on-disk shape of a grammar file.
type document struct {
	ScopeName      string              `yaml:"scopeName"`
	Patterns       yaml.Node           `yaml:"patterns"`
	Repository     map[string]*ruleDoc `yaml:"repository"`
	FileTypes      []string            `yaml:"fileTypes"`
	FirstLineMatch string              `yaml:"firstLineMatch"`
}

// Load reads and parses the grammar document at path.
func Load(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse parses a grammar document from YAML or JSON bytes.
// A document without a scopeName or a root pattern list is rejected
// with ErrMalformed.
func Parse(data []byte) (*Grammar, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.ScopeName == "" {
		return nil, fmt.Errorf("%w: missing scopeName", ErrMalformed)
	}
	if doc.Patterns.IsZero() {
		return nil, fmt.Errorf("%w: missing root patterns", ErrMalformed)
	}
	var patternDocs []*ruleDoc
	if err := doc.Patterns.Decode(&patternDocs); err != nil {
		return nil, fmt.Errorf("%w: patterns: %v", ErrMalformed, err)
	}

	repo := NewRepository(nil)
	if err := fillRepository(repo, doc.Repository); err != nil {
		return nil, err
	}

	patterns, err := buildRules(patternDocs, repo)
	if err != nil {
		return nil, err
	}

	return &Grammar{
		ScopeName:      doc.ScopeName,
		Patterns:       patterns,
		Repository:     repo,
		FileTypes:      doc.FileTypes,
		FirstLineMatch: doc.FirstLineMatch,
	}, nil
}

// fillRepository defines every entry of docs in repo. The repository is
// chained before its own entries are built so they can reference each
// other and themselves.
func fillRepository(repo *Repository, docs map[string]*ruleDoc) error {
	for _, name := range sortedKeys(docs) {
		rule, err := buildRule(docs[name], repo)
		if err != nil {
			return err
		}
		repo.define(name, rule)
	}
	return nil
}

func buildRules(docs []*ruleDoc, repo *Repository) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(docs))
	for _, d := range docs {
		r, err := buildRule(d, repo)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// buildRule converts one rule document into a Rule, applying the two
// parse-time normalizations: a begin with neither end nor while gets an
// end that can never match, and a captures table on a begin/end or
// begin/while rule is distributed to both delimiter capture slots.
func buildRule(d *ruleDoc, parent *Repository) (*Rule, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: null rule", ErrMalformed)
	}

	repo := parent
	if len(d.Repository) > 0 {
		repo = NewRepository(parent)
		if err := fillRepository(repo, d.Repository); err != nil {
			return nil, err
		}
	}

	captures, err := buildCaptures(d.Captures, repo)
	if err != nil {
		return nil, err
	}
	beginCaptures, err := buildCaptures(d.BeginCaptures, repo)
	if err != nil {
		return nil, err
	}
	endCaptures, err := buildCaptures(d.EndCaptures, repo)
	if err != nil {
		return nil, err
	}
	whileCaptures, err := buildCaptures(d.WhileCaptures, repo)
	if err != nil {
		return nil, err
	}

	end := d.End
	if d.Begin != nil && end == nil && d.While == nil {
		impossible := unreachableEnd
		end = &impossible
	}

	// A captures table on a block rule is shorthand for identical
	// delimiter captures on both ends.
	switch {
	case present(d.Begin) && present(end) && len(captures) > 0:
		beginCaptures, endCaptures = captures, captures
		captures = nil
	case present(d.Begin) && present(d.While) && len(captures) > 0:
		beginCaptures, whileCaptures = captures, captures
		captures = nil
	}

	patterns, err := buildRules(d.Patterns, repo)
	if err != nil {
		return nil, err
	}

	return &Rule{
		Name:          splitName(d.Name),
		Match:         d.Match,
		Begin:         d.Begin,
		End:           end,
		While:         d.While,
		ContentName:   splitName(d.ContentName),
		Captures:      captures,
		BeginCaptures: beginCaptures,
		EndCaptures:   endCaptures,
		WhileCaptures: whileCaptures,
		Include:       d.Include,
		Patterns:      patterns,
		Repository:    repo,
	}, nil
}

// buildCaptures converts a group-index-keyed capture table, ordered by
// ascending group index.
func buildCaptures(docs map[string]*ruleDoc, repo *Repository) ([]Capture, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	captures := make([]Capture, 0, len(docs))
	for key, d := range docs {
		group, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: capture key %q is not a group index", ErrMalformed, key)
		}
		rule, err := buildRule(d, repo)
		if err != nil {
			return nil, err
		}
		captures = append(captures, Capture{Group: group, Rule: rule})
	}
	sort.Slice(captures, func(i, j int) bool { return captures[i].Group < captures[j].Group })
	return captures, nil
}

// splitName splits a scope name on whitespace into path segments.
// Grammars occasionally assign several scopes in one name string.
func splitName(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func sortedKeys(m map[string]*ruleDoc) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
