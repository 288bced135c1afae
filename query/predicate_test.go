package query

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zac-garby/noteboks/tree"
)

func TestPredicateHolds(t *testing.T) {
	//               0 2 4 6 8 10
	source := []byte("x X - 3 7 3")
	bind := func(index int, start, end uint32) Capture {
		return Capture{Index: index, Span: tree.Span{Start: start, End: end}}
	}

	tests := []struct {
		name string
		pred *Predicate
		caps []Capture
		want bool
	}{
		{
			"eq literal holds",
			&Predicate{Kind: PredEq, Capture: 0, Other: -1, Literal: "x"},
			[]Capture{bind(0, 0, 1)},
			true,
		},
		{
			"eq literal fails on different text",
			&Predicate{Kind: PredEq, Capture: 0, Other: -1, Literal: "x"},
			[]Capture{bind(0, 2, 3)},
			false,
		},
		{
			"eq requires every binding to agree",
			&Predicate{Kind: PredEq, Capture: 0, Other: -1, Literal: "x"},
			[]Capture{bind(0, 0, 1), bind(0, 2, 3)},
			false,
		},
		{
			"eq capture against capture",
			&Predicate{Kind: PredEq, Capture: 0, Other: 1},
			[]Capture{bind(0, 6, 7), bind(1, 10, 11)},
			true,
		},
		{
			"not-eq capture against capture",
			&Predicate{Kind: PredNotEq, Capture: 0, Other: 1},
			[]Capture{bind(0, 6, 7), bind(1, 8, 9)},
			true,
		},
		{
			"eq with unresolved capture is false",
			&Predicate{Kind: PredEq, Capture: 0, Other: -1, Literal: "x"},
			nil,
			false,
		},
		{
			"not-eq with unresolved capture is also false",
			&Predicate{Kind: PredNotEq, Capture: 0, Other: -1, Literal: "x"},
			nil,
			false,
		},
		{
			"eq with unresolved second capture is false",
			&Predicate{Kind: PredEq, Capture: 0, Other: 1},
			[]Capture{bind(0, 0, 1)},
			false,
		},
		{
			"any-of membership",
			&Predicate{Kind: PredAnyOf, Capture: 0, Choices: []string{"x", "X"}},
			[]Capture{bind(0, 0, 1), bind(0, 2, 3)},
			true,
		},
		{
			"any-of fails outside the set",
			&Predicate{Kind: PredAnyOf, Capture: 0, Choices: []string{"x", "X"}},
			[]Capture{bind(0, 4, 5)},
			false,
		},
		{
			"not-any-of holds outside the set",
			&Predicate{Kind: PredNotAnyOf, Capture: 0, Choices: []string{"x", "X"}},
			[]Capture{bind(0, 4, 5)},
			true,
		},
		{
			"match anchored",
			&Predicate{Kind: PredMatch, Capture: 0, Regex: regexp.MustCompile(`^x$`)},
			[]Capture{bind(0, 0, 1)},
			true,
		},
		{
			"match is unanchored by default",
			&Predicate{Kind: PredMatch, Capture: 0, Regex: regexp.MustCompile(`3`)},
			[]Capture{bind(0, 6, 7)},
			true,
		},
		{
			"match requires every binding to match",
			&Predicate{Kind: PredMatch, Capture: 0, Regex: regexp.MustCompile(`[xX]`)},
			[]Capture{bind(0, 0, 1), bind(0, 4, 5)},
			false,
		},
		{
			"match with unresolved capture is false",
			&Predicate{Kind: PredMatch, Capture: 0, Regex: regexp.MustCompile(`.`)},
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.holds(tt.caps, source))
		})
	}
}

// Negated predicates complement their positive forms exactly, as long
// as the capture resolves at all.
func TestPredicateComplements(t *testing.T) {
	source := []byte("x X - 3 7 3")
	bind := func(index int, start, end uint32) Capture {
		return Capture{Index: index, Span: tree.Span{Start: start, End: end}}
	}

	bindings := [][]Capture{
		{bind(0, 0, 1)},
		{bind(0, 2, 3)},
		{bind(0, 4, 5)},
		{bind(0, 0, 1), bind(0, 2, 3)},
		{bind(0, 0, 1), bind(0, 4, 5)},
	}

	for _, caps := range bindings {
		eq := &Predicate{Kind: PredEq, Capture: 0, Other: -1, Literal: "x"}
		notEq := &Predicate{Kind: PredNotEq, Capture: 0, Other: -1, Literal: "x"}
		assert.Equal(t, eq.holds(caps, source), !notEq.holds(caps, source))

		anyOf := &Predicate{Kind: PredAnyOf, Capture: 0, Choices: []string{"x", "X"}}
		notAnyOf := &Predicate{Kind: PredNotAnyOf, Capture: 0, Choices: []string{"x", "X"}}
		assert.Equal(t, anyOf.holds(caps, source), !notAnyOf.holds(caps, source))
	}
}

// checkboxTree builds "- [s] buy" where s is the status byte.
func checkboxTree(f *fixture, status string) *tree.Tree {
	root := f.parent("document", nil,
		f.parent("listitem", []string{"", "", "status", ""},
			f.named("bullet", 0, 1),
			f.anon("[", 2, 3),
			f.named("checkbox", 3, 4),
			f.anon("]", 4, 5),
		),
	)
	return f.tree("- ["+status+"] buy", root)
}

func TestPredicateCheckboxStates(t *testing.T) {
	f := newFixture(t)
	q := f.compile(`((listitem status: (checkbox) @check) (#any-of? @check "x" "X"))
((listitem status: (checkbox) @check) (#eq? @check "-"))`)

	tests := []struct {
		status string
		want   []string
	}{
		{"x", []string{"rule0 @check=3..4"}},
		{"X", []string{"rule0 @check=3..4"}},
		{"-", []string{"rule1 @check=3..4"}},
		{"?", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := q.Matches(checkboxTree(f, tt.status))
			assert.Equal(t, tt.want, summarize(got))
		})
	}
}

// cookieTree builds "[n/d]" progress cookies.
func cookieTree(f *fixture, n, d string) *tree.Tree {
	root := f.parent("document", nil,
		f.parent("cookie", []string{"", "numerator", "", "denominator", ""},
			f.anon("[", 0, 1),
			f.named("num", 1, uint32(1+len(n))),
			f.anon("/", uint32(1+len(n)), uint32(2+len(n))),
			f.named("num", uint32(2+len(n)), uint32(2+len(n)+len(d))),
			f.anon("]", uint32(2+len(n)+len(d)), uint32(3+len(n)+len(d))),
		),
	)
	return f.tree("["+n+"/"+d+"]", root)
}

func TestPredicateProgressCookie(t *testing.T) {
	f := newFixture(t)
	q := f.compile(`((cookie numerator: (num) @n denominator: (num) @d) (#not-eq? @n @d)) @progress
((cookie numerator: (num) @n denominator: (num) @d) (#eq? @n @d)) @done`)

	inProgress := q.Matches(cookieTree(f, "3", "7"))
	require.Len(t, inProgress, 1)
	assert.Equal(t, 0, inProgress[0].Rule)
	assert.Equal(t, "progress", inProgress[0].Captures[2].Name)

	done := q.Matches(cookieTree(f, "7", "7"))
	require.Len(t, done, 1)
	assert.Equal(t, 1, done[0].Rule)
	assert.Equal(t, "done", done[0].Captures[2].Name)
}

func TestPredicateRegexScenarios(t *testing.T) {
	f := newFixture(t)

	t.Run("unanchored by default", func(t *testing.T) {
		q := f.compile(`((item) @t (#match? @t "TODO"))`)
		match := f.tree("TODO write", f.parent("document", nil, f.named("item", 0, 10)))
		miss := f.tree("WIP write", f.parent("document", nil, f.named("item", 0, 9)))
		assert.Len(t, q.Matches(match), 1)
		assert.Empty(t, q.Matches(miss))
	})

	t.Run("depth cycling over star count", func(t *testing.T) {
		q := f.compile(`((stars) @s (#match? @s "^(\\*\\*\\*)*\\*$"))`)
		for _, tt := range []struct {
			stars string
			want  bool
		}{
			{"*", true},
			{"**", false},
			{"***", false},
			{"****", true},
		} {
			tr := f.tree(tt.stars, f.parent("document", nil,
				f.named("stars", 0, uint32(len(tt.stars)))))
			assert.Equal(t, tt.want, len(q.Matches(tr)) > 0, "stars %q", tt.stars)
		}
	})
}

func TestPredicateUnresolvedCaptureDiscards(t *testing.T) {
	f := newFixture(t)

	t.Run("capture in unmatched alternative", func(t *testing.T) {
		q := f.compile(`([(checkbox) @cb (bullet) @bl] (#eq? @cb "x"))`)
		root := f.parent("document", nil,
			f.parent("listitem", nil,
				f.named("bullet", 0, 1),
				f.named("checkbox", 2, 3),
			),
		)
		got := q.Matches(f.tree("- x", root))
		require.Len(t, got, 1)
		require.Len(t, got[0].Captures, 1)
		assert.Equal(t, "cb", got[0].Captures[0].Name)
	})

	t.Run("capture over an empty run", func(t *testing.T) {
		q := f.compile(`((list (paragraph)* @ps) (#eq? @ps "para"))`)
		root := f.parent("document", nil,
			f.parent("list", nil,
				f.named("listitem", 0, 3),
				f.named("listitem", 4, 7),
			),
		)
		assert.Empty(t, q.Matches(f.tree("- a\n- b", root)))
	})
}
