package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpan(t *testing.T) {
	a := Span{Start: 2, End: 8}

	assert.Equal(t, uint32(6), a.Len())
	assert.Equal(t, uint32(0), Span{Start: 5, End: 3}.Len())

	assert.True(t, a.Contains(Span{Start: 3, End: 7}))
	assert.True(t, a.Contains(a))
	assert.False(t, a.Contains(Span{Start: 1, End: 4}))

	assert.True(t, a.Overlaps(Span{Start: 7, End: 10}))
	assert.False(t, a.Overlaps(Span{Start: 8, End: 10}), "end is exclusive")
	assert.False(t, a.Overlaps(Span{Start: 0, End: 2}))
}

func TestParentNode(t *testing.T) {
	lang := NewLanguage("org", testTypes())
	hsym, _ := lang.Symbol("headline")
	lsym, _ := lang.Symbol("link")
	item, _ := lang.Field("item")

	a := NewLeafNode(lsym, true, 0, 3)
	b := NewLeafNode(lsym, true, 4, 9)
	parent := NewParentNode(hsym, true, []*Node{a, b}, []FieldID{0, item})

	assert.Equal(t, Span{Start: 0, End: 9}, parent.Span())
	assert.Equal(t, 2, parent.ChildCount())
	assert.Same(t, a, parent.Child(0))
	assert.Nil(t, parent.Child(2))
	assert.Same(t, parent, a.Parent())
	assert.Nil(t, parent.Parent())

	assert.Equal(t, FieldID(0), parent.FieldForChild(0))
	assert.Equal(t, item, parent.FieldForChild(1))
	assert.Equal(t, FieldID(0), parent.FieldForChild(5))
	require.Len(t, parent.ChildrenByField(item), 1)
	assert.Same(t, b, parent.ChildrenByField(item)[0])
}

func TestNodeText(t *testing.T) {
	lang := NewLanguage("org", testTypes())
	sym, _ := lang.Symbol("headline")
	source := []byte("** hello")

	n := NewLeafNode(sym, true, 3, 8)
	assert.Equal(t, "hello", n.Text(source))
	assert.Equal(t, "headline", n.Type(lang))

	out := NewLeafNode(sym, true, 3, 99)
	assert.Equal(t, "", out.Text(source), "out of range spans read as empty")

	tr := NewTree(n, source, lang)
	assert.Equal(t, "hello", tr.Text(n))
	assert.Same(t, n, tr.Root())
	assert.Equal(t, lang, tr.Language())
}
