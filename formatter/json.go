package formatter

import (
	"encoding/json"
	"sort"

	"github.com/zac-garby/noteboks/highlight"
	"github.com/zac-garby/noteboks/internal/treeio"
	"github.com/zac-garby/noteboks/tree"
)

// Position is a 1-based line and column in source text. Columns count
// bytes, not display cells.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range locates a span both as byte offsets and as positions. Byte
// offsets are half-open, positions point at the first and
// one-past-last byte.
type Range struct {
	StartByte uint32   `json:"start_byte"`
	EndByte   uint32   `json:"end_byte"`
	Start     Position `json:"start"`
	End       Position `json:"end"`
}

// SpanResult is one resolved highlight span in machine-readable form.
type SpanResult struct {
	Capture string `json:"capture"`
	Rule    int    `json:"rule"`
	Text    string `json:"text,omitempty"`
	Range   Range  `json:"range"`
}

// FileResult groups the resolved spans of a single dump file. When
// the dump cannot be re-read for source text, Error says why and the
// spans carry byte offsets only.
type FileResult struct {
	File  string       `json:"file"`
	Error string       `json:"error,omitempty"`
	Spans []SpanResult `json:"spans"`
}

// BuildResults shapes resolved spans for serialization, re-reading
// each dump so results carry the captured text and line positions.
func BuildResults(files []highlight.FileSpans, lang *tree.Language) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		result := FileResult{
			File:  file.Path,
			Spans: make([]SpanResult, 0, len(file.Spans)),
		}

		var source []byte
		var index *lineIndex
		if t, err := treeio.ReadTree(file.Path, lang); err != nil {
			result.Error = err.Error()
		} else {
			source = t.Source()
			index = newLineIndex(source)
		}

		for _, span := range file.Spans {
			sr := SpanResult{
				Capture: span.Capture,
				Rule:    span.Rule,
				Range: Range{
					StartByte: span.Span.Start,
					EndByte:   span.Span.End,
				},
			}
			if index != nil {
				from := min(int(span.Span.Start), len(source))
				to := min(int(span.Span.End), len(source))
				sr.Text = string(source[from:to])
				sr.Range.Start = index.position(span.Span.Start)
				sr.Range.End = index.position(span.Span.End)
			}
			result.Spans = append(result.Spans, sr)
		}
		results = append(results, result)
	}
	return results
}

// GenerateJSONOutput renders resolved spans as indented JSON, one
// object per file.
func GenerateJSONOutput(files []highlight.FileSpans, lang *tree.Language) ([]byte, error) {
	return json.MarshalIndent(BuildResults(files, lang), "", "  ")
}

// lineIndex precomputes line start offsets so byte offsets translate
// to positions without rescanning the source per span.
type lineIndex struct {
	starts []int
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (ix *lineIndex) position(offset uint32) Position {
	at := int(offset)
	line := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > at }) - 1
	return Position{Line: line + 1, Column: at - ix.starts[line] + 1}
}
