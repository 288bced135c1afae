package highlight

import (
	"errors"

	"github.com/zac-garby/noteboks/internal/treeio"
	"github.com/zac-garby/noteboks/query"
	"github.com/zac-garby/noteboks/tree"
)

// ErrNoLanguage is returned by New when no language catalog is given.
var ErrNoLanguage = errors.New("highlight: no language")

// Engine ties a language catalog to a compiled rule set and turns
// syntax trees into resolved highlight spans. Configure it fully before
// the first Run; afterwards it is safe for concurrent use.
type Engine struct {
	lang    *tree.Language
	query   *query.Query
	ignored map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithIgnoredCaptures drops the named captures from every result, e.g.
// spell-check captures a renderer has no style for.
func WithIgnoredCaptures(names ...string) Option {
	return func(e *Engine) {
		for _, name := range names {
			e.ignored[name] = true
		}
	}
}

// New compiles the rule source against the language and returns an
// engine. Faulty rules do not fail construction; they are skipped and
// reported through Diagnostics.
func New(lang *tree.Language, ruleSource string, opts ...Option) (*Engine, error) {
	if lang == nil {
		return nil, ErrNoLanguage
	}
	q, err := query.Compile(ruleSource, lang)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		lang:    lang,
		query:   q,
		ignored: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// IgnoreCapture drops a capture name from every result.
func (e *Engine) IgnoreCapture(name string) {
	e.ignored[name] = true
}

// Language returns the engine's language catalog.
func (e *Engine) Language() *tree.Language { return e.lang }

// Query returns the compiled rule set.
func (e *Engine) Query() *query.Query { return e.query }

// Diagnostics returns the compile diagnostics of the rule source, one
// per faulty rule.
func (e *Engine) Diagnostics() []query.Diagnostic {
	return e.query.Diagnostics()
}

// Run matches every rule against the tree, filters matches through
// their predicates and resolves the surviving captures into
// non-overlapping styled spans. Captures whose name starts with an
// underscore exist only to carry predicate operands and are never
// styled.
func (e *Engine) Run(t *tree.Tree) []Styled {
	matches := e.query.Matches(t)
	return Resolve(e.filterIgnored(matches))
}

// RunFile loads a serialized tree dump and highlights it.
func (e *Engine) RunFile(path string) ([]Styled, error) {
	t, err := treeio.ReadTree(path, e.lang)
	if err != nil {
		return nil, err
	}
	return e.Run(t), nil
}

func (e *Engine) filterIgnored(matches []query.Match) []query.Match {
	out := make([]query.Match, 0, len(matches))
	for _, m := range matches {
		kept := make([]query.Capture, 0, len(m.Captures))
		for _, c := range m.Captures {
			if e.dropped(c.Name) {
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) > 0 {
			out = append(out, query.Match{Rule: m.Rule, Captures: kept})
		}
	}
	return out
}

func (e *Engine) dropped(name string) bool {
	if name != "" && name[0] == '_' {
		return true
	}
	return e.ignored[name]
}
