package query

import "github.com/zac-garby/noteboks/tree"

// Capture is one named binding produced by a match.
type Capture struct {
	Index int // position in Query.CaptureNames
	Name  string
	Span  tree.Span
	Node  *tree.Node // the matched node, or the first node of a quantified run
}

// Match is one successful application of a rule. Rule is the rule's
// declaration ordinal; Captures follow pattern source order.
type Match struct {
	Rule     int
	Captures []Capture
}

// Matches attempts every rule at every node of a pre-order traversal
// and returns the matches that survive predicate evaluation, ordered
// by the traversal position of their top-level node with ties in rule
// declaration order. The tree is never mutated, no node is revisited
// within one rule attempt, and a pass always runs to completion, so
// identical inputs always produce identical output.
func (q *Query) Matches(t *tree.Tree) []Match {
	if t == nil || t.Root() == nil {
		return nil
	}

	m := &matcher{q: q, source: t.Source()}
	var out []Match

	stack := []*tree.Node{t.Root()}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Merge the symbol's candidate rules with the wildcard-rooted
		// ones, keeping declaration order.
		cand := q.candidates[node.Symbol()]
		ci, fi := 0, 0
		for ci < len(cand) || fi < len(q.fallback) {
			var ri int
			if fi >= len(q.fallback) || (ci < len(cand) && cand[ci] < q.fallback[fi]) {
				ri = cand[ci]
				ci++
			} else {
				ri = q.fallback[fi]
				fi++
			}

			rule := q.rules[ri]
			m.caps = m.caps[:0]
			if !m.match(rule.Pattern, node) {
				continue
			}
			if !m.predicatesHold(rule) {
				continue
			}
			out = append(out, Match{
				Rule:     rule.Index,
				Captures: append([]Capture(nil), m.caps...),
			})
		}

		children := node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// matcher holds the scratch state for one rule attempt.
type matcher struct {
	q      *Query
	source []byte
	caps   []Capture
}

// match attempts p at node n, appending capture bindings on success.
// On failure the capture list is left exactly as it was found.
func (m *matcher) match(p *Pattern, n *tree.Node) bool {
	switch p.Kind {
	case KindAlt:
		mark := len(m.caps)
		for _, alt := range p.Alts {
			if m.match(alt, n) {
				m.bind(p, n.Span(), n)
				return true
			}
			m.caps = m.caps[:mark]
		}
		return false
	case KindNode:
		if n.Symbol() != p.Symbol {
			return false
		}
	case KindAnon:
		if n.IsNamed() || n.Text(m.source) != p.Literal {
			return false
		}
	case KindWildcard:
		if p.NamedOnly && !n.IsNamed() {
			return false
		}
	}

	mark := len(m.caps)
	if len(p.Children) > 0 && !m.matchChildren(p, n) {
		m.caps = m.caps[:mark]
		return false
	}
	m.bind(p, n.Span(), n)
	return true
}

// matchChildren walks n's children left to right with a single
// cursor, assigning one region of the sibling list to each
// sub-pattern in order.
func (m *matcher) matchChildren(p *Pattern, n *tree.Node) bool {
	kids := n.Children()
	cur := 0
	for i, sp := range p.Children {
		// A quantified sub-pattern must not claim a sibling the next
		// anchored sub-pattern needs.
		var next *Pattern
		if i+1 < len(p.Children) && p.Children[i+1].AnchorLeft {
			next = p.Children[i+1]
		}
		var ok bool
		cur, ok = m.matchChildAt(sp, next, n, kids, cur)
		if !ok {
			return false
		}
	}
	// A trailing anchor pins the last sub-pattern's match to the last
	// sibling.
	if len(p.Children) > 0 && p.Children[len(p.Children)-1].AnchorRight && cur < len(kids) {
		return false
	}
	return true
}

// matchChildAt assigns sp a match among kids starting at cur and
// returns the new cursor. An unquantified sub-pattern scans forward
// for its match unless anchored, in which case only the adjacent
// sibling will do. A quantified sub-pattern greedily consumes
// consecutive satisfying siblings at the cursor and never fails the
// enclosing match.
func (m *matcher) matchChildAt(sp, next *Pattern, parent *tree.Node, kids []*tree.Node, cur int) (int, bool) {
	if sp.Quant == QuantNone {
		for j := cur; j < len(kids); j++ {
			if m.tryChild(sp, parent, kids, j) {
				return j + 1, true
			}
			if sp.AnchorLeft {
				return 0, false
			}
		}
		return 0, false
	}

	scratch := len(m.caps)
	var bound []int // capture indexes seen during the run, in first-appearance order
	var first, last *tree.Node
	count := 0
	for j := cur; j < len(kids); j++ {
		if sp.Quant == QuantZeroOrOne && count == 1 {
			break
		}
		if next != nil && m.probe(next, parent, kids, j) {
			break
		}
		if !m.tryChild(sp, parent, kids, j) {
			break
		}
		// The run binds each capture once below; individual
		// repetitions do not bind.
		for _, c := range m.caps[scratch:] {
			if !containsInt(bound, c.Index) {
				bound = append(bound, c.Index)
			}
		}
		m.caps = m.caps[:scratch]
		if first == nil {
			first = kids[j]
		}
		last = kids[j]
		count++
		cur = j + 1
	}

	if count > 0 {
		run := tree.Span{Start: first.StartByte(), End: last.EndByte()}
		for _, idx := range bound {
			m.caps = append(m.caps, Capture{
				Index: idx,
				Name:  m.q.captureNames[idx],
				Span:  run,
				Node:  first,
			})
		}
	}
	return cur, true
}

// tryChild attempts sp against the j-th child, honoring a field
// constraint on the child slot.
func (m *matcher) tryChild(sp *Pattern, parent *tree.Node, kids []*tree.Node, j int) bool {
	if sp.Field != 0 && parent.FieldForChild(j) != sp.Field {
		return false
	}
	return m.match(sp, kids[j])
}

// probe runs a trial match without keeping its captures.
func (m *matcher) probe(sp *Pattern, parent *tree.Node, kids []*tree.Node, j int) bool {
	mark := len(m.caps)
	ok := m.tryChild(sp, parent, kids, j)
	m.caps = m.caps[:mark]
	return ok
}

func (m *matcher) bind(p *Pattern, span tree.Span, node *tree.Node) {
	for _, ci := range p.Captures {
		m.caps = append(m.caps, Capture{
			Index: ci,
			Name:  m.q.captureNames[ci],
			Span:  span,
			Node:  node,
		})
	}
}

func (m *matcher) predicatesHold(r *Rule) bool {
	for _, pred := range r.Predicates {
		if !pred.holds(m.caps, m.source) {
			return false
		}
	}
	return true
}

func containsInt(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
