package treeio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zac-garby/noteboks/tree"
)

const nodeTypesJSON = `[
  {"type": "document", "named": true},
  {"type": "headline", "named": true, "fields": {"item": {}, "tags": {}}},
  {"type": "stars", "named": true},
  {"type": "item", "named": true},
  {"type": "*", "named": false},
  {"type": "headline", "named": true}
]`

func testCatalog(t *testing.T) *tree.Language {
	lang, err := ParseLanguage("org", []byte(nodeTypesJSON))
	require.NoError(t, err)
	return lang
}

func TestParseLanguage(t *testing.T) {
	lang := testCatalog(t)

	assert.Equal(t, "org", lang.Name())
	assert.Equal(t, 5, lang.SymbolCount(), "duplicate entries collapse")

	h, ok := lang.Symbol("headline")
	require.True(t, ok)
	item, ok := lang.Field("item")
	require.True(t, ok)
	tags, ok := lang.Field("tags")
	require.True(t, ok)
	assert.True(t, lang.TypeHasField(h, item))
	assert.True(t, lang.TypeHasField(h, tags))

	star, ok := lang.AnonymousSymbol("*")
	require.True(t, ok)
	assert.False(t, lang.SymbolIsNamed(star))
}

func TestParseLanguageErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an array", `{"type": "document"}`},
		{"missing type", `[{"named": true}]`},
		{"invalid json", `[`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLanguage("org", []byte(tt.input))
			assert.Error(t, err)
		})
	}
}

const dumpJSON = `{
  "language": "org",
  "source": "** hi",
  "root": {
    "type": "document", "named": true, "start": 0, "end": 5,
    "children": [
      {"type": "headline", "named": true, "start": 0, "end": 5,
       "children": [
         {"type": "stars", "named": true, "start": 0, "end": 2},
         {"type": "item", "named": true, "start": 3, "end": 5, "field": "item"}
       ]}
    ]
  }
}`

func TestParseTree(t *testing.T) {
	lang := testCatalog(t)
	tr, err := ParseTree([]byte(dumpJSON), lang)
	require.NoError(t, err)

	assert.Equal(t, []byte("** hi"), tr.Source())

	root := tr.Root()
	assert.Equal(t, "document", root.Type(tr.Language()))
	assert.Equal(t, tree.Span{Start: 0, End: 5}, root.Span())
	require.Equal(t, 1, root.ChildCount())

	headline := root.Child(0)
	assert.Equal(t, "headline", headline.Type(tr.Language()))
	require.Equal(t, 2, headline.ChildCount())
	assert.Equal(t, "hi", tr.Text(headline.Child(1)))

	item, ok := lang.Field("item")
	require.True(t, ok)
	assert.Equal(t, tree.FieldID(0), headline.FieldForChild(0))
	assert.Equal(t, item, headline.FieldForChild(1))
	assert.Same(t, headline, headline.Child(0).Parent())
}

func TestParseTreeUnknownTypesAndFields(t *testing.T) {
	lang := testCatalog(t)
	dump := `{
  "language": "org",
  "source": "zzz",
  "root": {
    "type": "document", "named": true, "start": 0, "end": 3,
    "children": [
      {"type": "zettel", "named": true, "start": 0, "end": 3, "field": "wobble"}
    ]
  }
}`
	tr, err := ParseTree([]byte(dump), lang)
	require.NoError(t, err)

	// The dump's language is an extended copy; the catalog stays as is.
	_, ok := tr.Language().Symbol("zettel")
	assert.True(t, ok)
	_, ok = lang.Symbol("zettel")
	assert.False(t, ok)

	root := tr.Root()
	assert.Equal(t, "zettel", root.Child(0).Type(tr.Language()))
	assert.Equal(t, tree.FieldID(0), root.FieldForChild(0), "unknown fields resolve to none")
}

func TestParseTreeErrors(t *testing.T) {
	lang := testCatalog(t)
	tests := []struct {
		name  string
		input string
	}{
		{"language mismatch", `{"language": "markdown", "root": {"type": "document", "named": true}}`},
		{"missing root", `{"language": "org", "source": ""}`},
		{"reversed span", `{"root": {"type": "document", "named": true, "start": 5, "end": 2}}`},
		{"node missing type", `{"root": {"named": true, "start": 0, "end": 1}}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTree([]byte(tt.input), lang)
			assert.Error(t, err)
		})
	}

	_, err := ParseTree([]byte(dumpJSON), nil)
	assert.Error(t, err)
}

func TestReadTreeCompressed(t *testing.T) {
	lang := testCatalog(t)
	dir := t.TempDir()

	plain := filepath.Join(dir, "note.json")
	require.NoError(t, os.WriteFile(plain, []byte(dumpJSON), 0o644))

	gzPath := filepath.Join(dir, "note.json.gz")
	gzFile, err := os.Create(gzPath)
	require.NoError(t, err)
	zw := gzip.NewWriter(gzFile)
	_, err = zw.Write([]byte(dumpJSON))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, gzFile.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zstPath := filepath.Join(dir, "note.json.zst")
	require.NoError(t, os.WriteFile(zstPath, enc.EncodeAll([]byte(dumpJSON), nil), 0o644))
	require.NoError(t, enc.Close())

	for _, path := range []string{plain, gzPath, zstPath} {
		tr, err := ReadTree(path, lang)
		require.NoError(t, err, path)
		assert.Equal(t, "document", tr.Root().Type(tr.Language()), path)
	}

	_, err = ReadTree(filepath.Join(dir, "absent.json"), lang)
	assert.Error(t, err)
}
