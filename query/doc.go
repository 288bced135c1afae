/*
Package query compiles and runs tree-sitter style highlight queries:
s-expression tree patterns with captures and textual predicates,
matched against a read-only concrete syntax tree.

# Pattern Syntax

A rule file is a sequence of top-level patterns. Each pattern
describes a tree shape:

	(headline (stars) @punctuation (item) @markup.heading)

  - (type ...) matches a named node of that type; nested patterns
    constrain its children in order.
  - "text" matches an anonymous token with exactly that text.
  - _ matches any node; (_) matches any named node.
  - [(a) (b) "c"] matches if any alternative matches, tried in order.
  - field: (pattern) requires the child to occupy the named field.
  - @name captures the span of whatever the annotated pattern matched.

# Anchors and Quantifiers

A '.' anchor between two sibling sub-patterns requires their matches
to be adjacent: no unmatched sibling may lie between them. A leading
or trailing anchor pins the first or last sub-pattern to the parent's
first or last child.

A sub-pattern followed by '?' matches zero or one sibling, and '*'
zero or more consecutive siblings, consumed greedily at the cursor. A
quantified sub-pattern never fails the enclosing match on its own, and
never claims a sibling the next anchored sub-pattern needs. A capture
under a quantifier binds the span of the whole matched run; an empty
run binds nothing.

# Predicates

Predicate forms attach to the enclosing rule and filter its matches by
capture text:

	((listitem (checkbox) @check) (#any-of? @check "x" "X"))

Five predicates exist: #match? (regular expression, unanchored unless
the pattern anchors itself), #eq? and #not-eq? (exact equality against
a literal or another capture), #any-of? and #not-any-of? (membership
in a literal set). Regexes are compiled with the rule, so an invalid
pattern is a compile diagnostic, and predicate evaluation can never
fail at runtime: a reference to a capture with no binding simply
discards the match.

# Compilation and Diagnostics

Compile builds a Query from rule source and a tree.Language. Problems
are reported per rule as Diagnostics (1-based rule ordinal plus
line:column); the offending rule is skipped and the rest of the file
still compiles. Matching a compiled Query is deterministic, read-only
and free of shared state, so one Query may serve many goroutines.

Comments run from ';' to the end of the line, as in any other
s-expression dialect.
*/
package query
