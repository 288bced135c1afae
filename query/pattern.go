package query

import "github.com/zac-garby/noteboks/tree"

// Quantifier is a repetition marker attached to a sub-pattern.
type Quantifier int

const (
	QuantNone       Quantifier = iota // exactly once
	QuantZeroOrOne                    // '?' (zero or one sibling)
	QuantZeroOrMore                   // '*' (zero or more siblings)
)

func (q Quantifier) String() string {
	switch q {
	case QuantNone:
		return ""
	case QuantZeroOrOne:
		return "?"
	case QuantZeroOrMore:
		return "*"
	default:
		return "unknown"
	}
}

// PatternKind says what a pattern's head constraint matches on.
type PatternKind int

const (
	KindNode     PatternKind = iota // concrete named node type
	KindAnon                        // anonymous token with fixed text
	KindWildcard                    // '_' or '(_)'
	KindAlt                         // [...] alternation
)

// Pattern is one compiled tree shape. Patterns nest to arbitrary
// depth; each owns its sub-patterns.
type Pattern struct {
	Kind      PatternKind
	Symbol    tree.Symbol // KindNode: required node type
	Literal   string      // KindAnon: required token text
	Alts      []*Pattern  // KindAlt: alternatives, tried in order
	NamedOnly bool        // KindWildcard: written '(_)', matches named nodes only

	// Field constrains which child slot of the parent this pattern may
	// occupy; 0 means unconstrained.
	Field tree.FieldID

	Quant Quantifier

	// AnchorLeft requires the match to be immediately adjacent to the
	// previous sub-pattern's match (or the parent's first child when
	// this is the first sub-pattern). AnchorRight is the mirror image.
	AnchorLeft  bool
	AnchorRight bool

	// Captures holds indexes into the query's capture name table, in
	// source order.
	Captures []int

	Children []*Pattern

	Pos Position
}

// rootSymbols reports which node type symbols could match this pattern
// at its root. wildcard is true when the pattern can start at any
// node, in which case syms is meaningless.
func (p *Pattern) rootSymbols() (syms []tree.Symbol, wildcard bool) {
	switch p.Kind {
	case KindNode, KindAnon:
		return []tree.Symbol{p.Symbol}, false
	case KindWildcard:
		return nil, true
	case KindAlt:
		for _, alt := range p.Alts {
			s, wild := alt.rootSymbols()
			if wild {
				return nil, true
			}
			syms = append(syms, s...)
		}
		return syms, false
	default:
		return nil, true
	}
}

// Rule is one compiled top-level pattern plus its predicates. Rules
// are independent of each other; Index records declaration order,
// which only matters for final-resolution priority.
type Rule struct {
	Index      int
	Pattern    *Pattern
	Predicates []*Predicate
	Pos        Position
}
