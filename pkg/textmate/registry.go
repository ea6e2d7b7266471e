package textmate

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/scopelight/internal/logging"
	"github.com/yaklabco/scopelight/pkg/langdetect"
	"github.com/yaklabco/scopelight/pkg/textmate/grammar"
	"github.com/yaklabco/scopelight/pkg/textmate/pattern"
)

// UnknownScope names the built-in empty grammar assigned to files no
// loaded grammar claims. It always exists; a registry with no grammar
// directories still highlights every file under it.
const UnknownScope = "source.unknown"

// typeEntry maps a loaded grammar's declared file extensions to its
// scope.
type typeEntry struct {
	exts  map[string]struct{}
	scope string
}

// lineEntry maps a loaded grammar's firstLineMatch pattern to its
// scope.
type lineEntry struct {
	reg   *pattern.Regex
	scope string
}

// Registry finds, loads, and compiles grammars on demand. Grammar
// files are discovered eagerly (scope name taken from the file name
// stem) but parsed and compiled only when a scope is first requested,
// so a directory of hundreds of grammars costs one readdir until files
// of those languages are actually opened.
type Registry struct {
	logger *log.Logger
	dirs   []string

	scopeFiles map[string]string
	sources    map[string]string
	parsed     map[string]*grammar.Grammar
	compilers  map[string]*Compiler
	fileTypes  []typeEntry
	firstLine  []lineEntry
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for grammar diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates a registry over the given grammar directories.
// Directories are searched in order; a scope defined in an earlier
// directory shadows the same scope in a later one. Missing directories
// are ignored.
func NewRegistry(dirs []string, opts ...Option) *Registry {
	r := &Registry{logger: logging.Default(), dirs: dirs}
	for _, opt := range opts {
		opt(r)
	}
	r.scan()
	return r
}

func (r *Registry) scan() {
	r.scopeFiles = make(map[string]string)
	r.sources = make(map[string]string)
	r.parsed = map[string]*grammar.Grammar{UnknownScope: {ScopeName: UnknownScope}}
	r.compilers = make(map[string]*Compiler)
	r.fileTypes = nil
	r.firstLine = nil

	for _, dir := range r.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := filepath.Ext(name)
			switch ext {
			case ".json", ".yaml", ".yml":
			default:
				continue
			}
			scope := strings.TrimSuffix(name, ext)
			if _, ok := r.scopeFiles[scope]; !ok {
				r.scopeFiles[scope] = filepath.Join(dir, name)
				r.sources[scope] = filepath.Join(dir, name)
			}
		}
	}
}

// Reset discards every loaded grammar and compiler and rescans the
// grammar directories. Callers must also discard any state derived
// from compilers handed out before the reset.
func (r *Registry) Reset() {
	r.scan()
}

// GrammarInfo describes one discovered grammar for listings.
type GrammarInfo struct {
	Scope     string
	Path      string
	FileTypes []string
	Loaded    bool
}

// Grammars returns every discovered grammar sorted by scope, excluding
// the built-in unknown scope. File types are only known for loaded
// grammars.
func (r *Registry) Grammars() []GrammarInfo {
	out := make([]GrammarInfo, 0, len(r.sources))
	for _, scope := range slices.Sorted(maps.Keys(r.sources)) {
		info := GrammarInfo{Scope: scope, Path: r.sources[scope]}
		if g, ok := r.parsed[scope]; ok {
			info.Loaded = true
			info.FileTypes = g.FileTypes
		}
		out = append(out, info)
	}
	return out
}

// grammarForScope loads and caches the grammar for a scope, and on
// first load registers its file-type and first-line selection
// metadata.
func (r *Registry) grammarForScope(scope string) (*grammar.Grammar, error) {
	if g, ok := r.parsed[scope]; ok {
		return g, nil
	}
	path, ok := r.scopeFiles[scope]
	if !ok {
		return nil, fmt.Errorf("%w: no grammar for scope %q", grammar.ErrUnknownReference, scope)
	}
	g, err := grammar.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	delete(r.scopeFiles, scope)
	r.parsed[scope] = g
	r.logger.Debug("loaded grammar",
		logging.FieldScope, scope,
		logging.FieldPath, path)

	if len(g.FileTypes) > 0 {
		exts := make(map[string]struct{}, len(g.FileTypes))
		for _, ft := range g.FileTypes {
			exts[ft] = struct{}{}
		}
		r.fileTypes = append(r.fileTypes, typeEntry{exts: exts, scope: scope})
	}
	if g.FirstLineMatch != "" {
		reg, err := pattern.Compile(g.FirstLineMatch)
		if err != nil {
			r.logger.Warn("invalid firstLineMatch pattern",
				logging.FieldScope, scope,
				logging.FieldError, err)
		} else {
			r.firstLine = append(r.firstLine, lineEntry{reg: reg, scope: scope})
		}
	}
	return g, nil
}

// CompilerForScope returns the compiler for a scope, building it on
// first use.
func (r *Registry) CompilerForScope(scope string) (*Compiler, error) {
	if c, ok := r.compilers[scope]; ok {
		return c, nil
	}
	g, err := r.grammarForScope(scope)
	if err != nil {
		return nil, err
	}
	c, err := newCompiler(g, r)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", scope, err)
	}
	r.compilers[scope] = c
	return c, nil
}

// BlankCompiler returns the compiler for the built-in unknown scope.
func (r *Registry) BlankCompiler() *Compiler {
	c, err := r.CompilerForScope(UnknownScope)
	if err != nil {
		// The unknown grammar is empty and always compiles.
		panic(err)
	}
	return c
}

// CompilerForFile selects a grammar for a file: first by detected
// language tags, then by declared file extensions, then by matching
// the file's first line, and finally the blank grammar. Grammars that
// fail to load are skipped with a warning rather than failing
// selection.
func (r *Registry) CompilerForFile(filename, firstLine string) *Compiler {
	for _, tag := range langdetect.Tags(filename, firstLine) {
		c, err := r.CompilerForScope("source." + tag)
		if err == nil {
			r.logger.Debug("selected grammar by language",
				logging.FieldPath, filename,
				logging.FieldLanguage, tag)
			return c
		}
		if !isUnknownScope(err) {
			r.warnSkipped("source."+tag, err)
		}
	}

	// Slow path: selection metadata only exists for loaded grammars,
	// so force-load everything still pending.
	for _, scope := range slices.Sorted(maps.Keys(r.scopeFiles)) {
		if _, err := r.grammarForScope(scope); err != nil {
			r.warnSkipped(scope, err)
		}
	}

	base := filepath.Base(filename)
	ext := base[strings.LastIndexByte(base, '.')+1:]
	for _, entry := range r.fileTypes {
		if _, ok := entry.exts[ext]; !ok {
			continue
		}
		c, err := r.CompilerForScope(entry.scope)
		if err != nil {
			r.warnSkipped(entry.scope, err)
			continue
		}
		return c
	}

	for _, entry := range r.firstLine {
		if entry.reg.MatchAt(firstLine, 0, true, true) == nil {
			continue
		}
		c, err := r.CompilerForScope(entry.scope)
		if err != nil {
			r.warnSkipped(entry.scope, err)
			continue
		}
		return c
	}

	return r.BlankCompiler()
}

func (r *Registry) warnSkipped(scope string, err error) {
	r.logger.Warn("skipping unusable grammar",
		logging.FieldScope, scope,
		logging.FieldError, err)
}

func isUnknownScope(err error) bool {
	return errors.Is(err, grammar.ErrUnknownReference)
}
