package tree

// Span is a contiguous byte range of source text, start inclusive and
// end exclusive.
type Span struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes the span covers.
func (s Span) Len() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether s fully covers o.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Overlaps reports whether s and o share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Node is a syntax tree node: a typed span of source text with ordered
// children and optional per-child field assignments.
type Node struct {
	symbol    Symbol
	startByte uint32
	endByte   uint32
	children  []*Node
	fieldIDs  []FieldID // parallel to children, 0 = no field
	named     bool
	parent    *Node
}

// Symbol returns the node's type symbol.
func (n *Node) Symbol() Symbol { return n.symbol }

// IsNamed reports whether this is a named node, as opposed to
// anonymous syntax like punctuation.
func (n *Node) IsNamed() bool { return n.named }

// StartByte returns the byte offset where this node begins.
func (n *Node) StartByte() uint32 { return n.startByte }

// EndByte returns the byte offset where this node ends (exclusive).
func (n *Node) EndByte() uint32 { return n.endByte }

// Span returns the node's byte range.
func (n *Node) Span() Span {
	return Span{Start: n.startByte, End: n.endByte}
}

// Parent returns this node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// ChildCount returns the number of children, named and anonymous.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child, or nil if i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns all children in document order.
func (n *Node) Children() []*Node { return n.children }

// NamedChildCount returns the number of named children.
func (n *Node) NamedChildCount() int {
	count := 0
	for _, c := range n.children {
		if c.named {
			count++
		}
	}
	return count
}

// FieldForChild returns the field assigned to the i-th child, or 0 if
// the child carries no field.
func (n *Node) FieldForChild(i int) FieldID {
	if i < 0 || i >= len(n.fieldIDs) {
		return 0
	}
	return n.fieldIDs[i]
}

// ChildrenByField returns the children assigned to the given field, in
// document order.
func (n *Node) ChildrenByField(fid FieldID) []*Node {
	if fid == 0 {
		return nil
	}
	var out []*Node
	for i, id := range n.fieldIDs {
		if id == fid && i < len(n.children) {
			out = append(out, n.children[i])
		}
	}
	return out
}

// Text returns the source text covered by this node.
func (n *Node) Text(source []byte) string {
	if int(n.startByte) > len(source) || int(n.endByte) > len(source) || n.startByte > n.endByte {
		return ""
	}
	return string(source[n.startByte:n.endByte])
}

// Type returns the node's type name from the language.
func (n *Node) Type(lang *Language) string {
	return lang.SymbolName(n.symbol)
}

// NewLeafNode creates a childless node covering the given byte range.
func NewLeafNode(sym Symbol, named bool, startByte, endByte uint32) *Node {
	return &Node{
		symbol:    sym,
		named:     named,
		startByte: startByte,
		endByte:   endByte,
	}
}

// NewParentNode creates a node with children. Parent pointers are set
// on the children and the byte span is derived from the first and last
// child. fieldIDs is parallel to children and may be nil when no child
// carries a field.
func NewParentNode(sym Symbol, named bool, children []*Node, fieldIDs []FieldID) *Node {
	n := &Node{
		symbol:   sym,
		named:    named,
		children: children,
		fieldIDs: fieldIDs,
	}
	if len(children) > 0 {
		n.startByte = children[0].startByte
		n.endByte = children[len(children)-1].endByte
		for _, c := range children {
			c.parent = n
		}
	}
	return n
}

// NewParentNodeSpan is NewParentNode with an explicit byte span, for
// parents whose extent exceeds their children (leading or trailing
// trivia the grammar assigns to the parent).
func NewParentNodeSpan(sym Symbol, named bool, startByte, endByte uint32, children []*Node, fieldIDs []FieldID) *Node {
	n := &Node{
		symbol:    sym,
		named:     named,
		startByte: startByte,
		endByte:   endByte,
		children:  children,
		fieldIDs:  fieldIDs,
	}
	for _, c := range children {
		c.parent = n
	}
	return n
}

// Tree holds a complete syntax tree along with its source text and
// language.
type Tree struct {
	root     *Node
	source   []byte
	language *Language
}

// NewTree creates a new Tree.
func NewTree(root *Node, source []byte, lang *Language) *Tree {
	return &Tree{
		root:     root,
		source:   source,
		language: lang,
	}
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node { return t.root }

// Source returns the original source text.
func (t *Tree) Source() []byte { return t.source }

// Language returns the language the tree was produced with.
func (t *Tree) Language() *Language { return t.language }

// Text returns the source text covered by a node of this tree.
func (t *Tree) Text(n *Node) string { return n.Text(t.source) }
