package query

import (
	"errors"
	"fmt"

	"github.com/zac-garby/noteboks/tree"
)

// ErrNilLanguage is returned by Compile when no language is supplied.
// Patterns cannot be validated without a node type catalog.
var ErrNilLanguage = errors.New("query: nil language")

// Diagnostic reports one compile-time problem. Rule is the 1-based
// ordinal of the offending top-level pattern in the source; that rule
// is skipped while the rest of the file compiles normally.
type Diagnostic struct {
	Rule    int
	Pos     Position
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: rule %d: %s", d.Pos, d.Rule, d.Message)
}

// Query is a compiled rule set, ready to run against any tree produced
// with the same language. Compilation is pure: it never touches a
// syntax tree, and a Query is safe for concurrent use once built.
type Query struct {
	lang         *tree.Language
	rules        []*Rule
	captureNames []string
	diagnostics  []Diagnostic

	// candidates maps a root node type to the rules that could match
	// there; fallback holds the rules that must be tried at every
	// node. Both store positions into rules, ascending, so merging
	// preserves declaration order.
	candidates map[tree.Symbol][]int
	fallback   []int
}

// Compile parses rule source text against a language. The returned
// error is only ever ErrNilLanguage: syntactic and semantic problems
// in individual rules become Diagnostics on the query, and the
// remaining rules still compile and run.
func Compile(src string, lang *tree.Language) (*Query, error) {
	if lang == nil {
		return nil, ErrNilLanguage
	}

	tokens := NewLexer(src).Tokenize()
	p := NewParser(tokens, lang)
	p.Parse()

	q := &Query{
		lang:         lang,
		rules:        p.rules,
		captureNames: p.captureNames,
		diagnostics:  p.diags,
	}
	q.buildCandidateIndex()
	return q, nil
}

func (q *Query) buildCandidateIndex() {
	q.candidates = make(map[tree.Symbol][]int)
	for i, r := range q.rules {
		syms, wildcard := r.Pattern.rootSymbols()
		if wildcard {
			q.fallback = append(q.fallback, i)
			continue
		}
		// Alternation members may repeat a root symbol; a rule is
		// attempted once per node regardless.
		seen := make(map[tree.Symbol]bool, len(syms))
		for _, sym := range syms {
			if seen[sym] {
				continue
			}
			seen[sym] = true
			q.candidates[sym] = append(q.candidates[sym], i)
		}
	}
}

// Language returns the language the query was compiled against.
func (q *Query) Language() *tree.Language { return q.lang }

// RuleCount returns the number of rules that compiled successfully.
func (q *Query) RuleCount() int { return len(q.rules) }

// Rule returns the i-th compiled rule, or nil if out of range.
func (q *Query) Rule(i int) *Rule {
	if i < 0 || i >= len(q.rules) {
		return nil
	}
	return q.rules[i]
}

// CaptureNames returns a copy of the capture name table shared by all
// rules. Capture indexes in matches point into this table.
func (q *Query) CaptureNames() []string {
	return append([]string(nil), q.captureNames...)
}

// Diagnostics returns the compile-time problems found in the source,
// one per skipped rule.
func (q *Query) Diagnostics() []Diagnostic { return q.diagnostics }
