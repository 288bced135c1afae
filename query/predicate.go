package query

import "regexp"

// PredicateKind identifies one of the five predicate operations.
type PredicateKind int

const (
	PredMatch    PredicateKind = iota // #match? @cap "regex"
	PredEq                           // #eq? @a @b, or #eq? @a "lit"
	PredNotEq                        // #not-eq?, complement of #eq?
	PredAnyOf                        // #any-of? @cap "a" "b" ...
	PredNotAnyOf                     // #not-any-of?, complement of #any-of?
)

func (k PredicateKind) String() string {
	switch k {
	case PredMatch:
		return "match?"
	case PredEq:
		return "eq?"
	case PredNotEq:
		return "not-eq?"
	case PredAnyOf:
		return "any-of?"
	case PredNotAnyOf:
		return "not-any-of?"
	default:
		return "unknown"
	}
}

// Predicate is a compiled boolean test over capture text. Regexes are
// compiled when the rule is, so evaluation can never raise; the
// stdlib's RE2 engine keeps every evaluation linear in the text size.
type Predicate struct {
	Kind    PredicateKind
	Capture int            // capture index of the first operand
	Other   int            // capture index of the second operand, -1 when literal
	Literal string         // literal second operand for eq?/not-eq?
	Choices []string       // literal set for any-of?/not-any-of?
	Regex   *regexp.Regexp // compiled pattern for match?
	Pos     Position
}

// holds evaluates the predicate against a match's capture bindings.
// A referenced capture with no binding (one declared inside an
// unmatched alternative or an empty quantified run) makes the
// predicate false, discarding the owning match.
//
// Negated predicates are exact complements of their positive forms
// over resolved bindings: not-eq? holds exactly when eq? does not,
// and likewise for not-any-of?.
func (p *Predicate) holds(caps []Capture, source []byte) bool {
	texts := captureTexts(caps, p.Capture, source)
	if len(texts) == 0 {
		return false
	}

	switch p.Kind {
	case PredMatch:
		for _, s := range texts {
			if !p.Regex.MatchString(s) {
				return false
			}
		}
		return true

	case PredEq, PredNotEq:
		var others []string
		if p.Other >= 0 {
			others = captureTexts(caps, p.Other, source)
			if len(others) == 0 {
				return false
			}
		} else {
			others = []string{p.Literal}
		}
		eq := true
		for _, s := range texts {
			for _, o := range others {
				if s != o {
					eq = false
				}
			}
		}
		if p.Kind == PredEq {
			return eq
		}
		return !eq

	case PredAnyOf, PredNotAnyOf:
		member := true
		for _, s := range texts {
			if !containsString(p.Choices, s) {
				member = false
			}
		}
		if p.Kind == PredAnyOf {
			return member
		}
		return !member
	}
	return false
}

// captureTexts resolves every binding of a capture index to its source
// text.
func captureTexts(caps []Capture, index int, source []byte) []string {
	var texts []string
	for _, c := range caps {
		if c.Index != index {
			continue
		}
		start, end := int(c.Span.Start), int(c.Span.End)
		if start > len(source) || end > len(source) || start > end {
			continue
		}
		texts = append(texts, string(source[start:end]))
	}
	return texts
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
