package highlight

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/org"
	"github.com/zac-garby/noteboks/tree"
)

const starDump = `{
	"language": "org",
	"source": "* hi",
	"root": {
		"type": "document", "named": true, "start": 0, "end": 4,
		"children": [{
			"type": "headline", "named": true, "start": 0, "end": 4,
			"children": [
				{"type": "stars", "named": true, "start": 0, "end": 1, "field": "stars"},
				{"type": "item", "named": true, "start": 2, "end": 4, "field": "item"}
			]
		}]
	}
}`

func starSpans() []Styled {
	return []Styled{
		{Span: tree.Span{Start: 0, End: 1}, Capture: "punctuation.special", Rule: 0},
	}
}

func starEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(org.Language(), "(headline stars: (stars) @punctuation.special)")
	require.NoError(t, err)
	return e
}

func TestProcessFilesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), starDump)
	writeFile(t, filepath.Join(dir, "a.json"), starDump)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a dump")

	results, err := ProcessFiles(context.Background(), zap.NewNop(), starEngine(t),
		[]string{dir}, 2, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "a.json"), results[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.json"), results[1].Path)
	for _, r := range results {
		assert.Equal(t, starSpans(), r.Spans)
	}
}

func TestProcessPathSingleFile(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "note.json")
	writeFile(t, dump, starDump)
	other := filepath.Join(dir, "note.txt")
	writeFile(t, other, "plain text")

	results, err := ProcessPath(context.Background(), zap.NewNop(), starEngine(t),
		dump, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, starSpans(), results[0].Spans)

	results, err = ProcessPath(context.Background(), zap.NewNop(), starEngine(t),
		other, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = ProcessPath(context.Background(), zap.NewNop(), starEngine(t),
		filepath.Join(dir, "absent.json"), 1, nil)
	assert.Error(t, err)
}

func TestProcessPathSkipsBrokenDumps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.json"), starDump)
	writeFile(t, filepath.Join(dir, "broken.json"), "not json at all")

	results, err := ProcessPath(context.Background(), zap.NewNop(), starEngine(t),
		dir, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "good.json"), results[0].Path)
}

func TestProcessPathCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), starDump)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessPath(ctx, zap.NewNop(), starEngine(t), dir, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFilesStopOnPathError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), starDump)

	_, err := ProcessFiles(context.Background(), zap.NewNop(), starEngine(t),
		[]string{dir, filepath.Join(dir, "missing")}, 1, nil)
	assert.Error(t, err)
}

func TestCachedProcessor(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "note.json")
	writeFile(t, dump, starDump)

	cache, err := NewCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	seeded := []Styled{{Span: tree.Span{Start: 9, End: 12}, Capture: "seeded", Rule: 7}}
	require.NoError(t, cache.Set(dump, seeded))

	processor := CachedProcessor(cache)
	got, err := processor(starEngine(t), dump)
	require.NoError(t, err)
	assert.Equal(t, seeded, got, "a valid cache entry short-circuits the engine")

	cache.InvalidateAll()
	got, err = processor(starEngine(t), dump)
	require.NoError(t, err)
	assert.Equal(t, starSpans(), got)

	stored, ok := cache.Get(dump)
	require.True(t, ok, "a fresh result is written back")
	assert.Equal(t, starSpans(), stored)

	_, err = processor(starEngine(t), filepath.Join(dir, "absent.json"))
	assert.Error(t, err)
}
