package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/zac-garby/noteboks/highlight"
	"github.com/zac-garby/noteboks/internal/treeio"
	"github.com/zac-garby/noteboks/tree"
)

var (
	errorStyle = color.New(color.FgRed, color.Bold)
	fileStyle  = color.New(color.FgCyan, color.Bold)
	lineStyle  = color.New(color.FgHiBlue, color.Bold)
	countStyle = color.New(color.FgYellow, color.Bold)
)

// Builder renders resolved spans as colorized source listings. The
// run itself only carries spans, so the source text is read back from
// each dump at render time.
type Builder struct {
	theme *Theme
	lang  *tree.Language
}

// NewBuilder returns a Builder that styles captures with theme. A nil
// theme falls back to DefaultTheme.
func NewBuilder(theme *Theme, lang *tree.Language) *Builder {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Builder{theme: theme, lang: lang}
}

// Generate formats one listing per file, in the order given. Files
// whose dump can no longer be read render as a one-line failure note
// instead of aborting the whole report.
func (b *Builder) Generate(files []highlight.FileSpans) string {
	var builder strings.Builder
	for _, file := range files {
		builder.WriteString(b.buildFile(file))
	}
	return builder.String()
}

type fileData struct {
	Filename        string
	SpanCount       int
	MaxLineNumWidth int
	Padding         string
	Lines           []string
	Error           string
}

const fileTemplate = `{{header .Filename .SpanCount .MaxLineNumWidth}}
{{- if .Error}}
{{failure .Error .Padding}}
{{- else}}
{{gutter .Padding}}
{{- range .Lines}}
{{.}}
{{- end}}
{{gutter .Padding}}
{{- end}}

`

func (b *Builder) buildFile(file highlight.FileSpans) string {
	data := fileData{
		Filename:        file.Path,
		SpanCount:       len(file.Spans),
		MaxLineNumWidth: 1,
	}

	t, err := treeio.ReadTree(file.Path, b.lang)
	if err != nil {
		data.Error = err.Error()
	} else {
		lines := paintSource(t.Source(), file.Spans, b.theme)
		data.MaxLineNumWidth = calculateMaxLineNumWidth(len(lines))
		data.Lines = make([]string, len(lines))
		for i, line := range lines {
			data.Lines[i] = lineStyle.Sprintf("%*d | ", data.MaxLineNumWidth, i+1) + line
		}
	}
	data.Padding = strings.Repeat(" ", data.MaxLineNumWidth+1)

	funcMap := template.FuncMap{
		"header":  header,
		"gutter":  gutter,
		"failure": failure,
	}

	tmpl := template.Must(template.New("file").Funcs(funcMap).Parse(fileTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting file: %v\n", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(filename string, count int, maxLineNumWidth int) string {
	noun := "spans"
	if count == 1 {
		noun = "span"
	}

	endString := lineStyle.Sprintf("%s--> ", strings.Repeat(" ", maxLineNumWidth))
	endString += fileStyle.Sprint(filename)
	endString += countStyle.Sprintf(" (%d %s)", count, noun)

	return endString
}

func gutter(padding string) string {
	return lineStyle.Sprintf("%s|", padding)
}

func failure(msg string, padding string) string {
	return errorStyle.Sprintf("%s= %s", padding, msg)
}

// paintSource styles each line of source. Spans arrive sorted and
// non-overlapping, so one cursor pass per line suffices; a span that
// crosses a newline stays active for every line it touches.
func paintSource(source []byte, spans []highlight.Styled, theme *Theme) []string {
	lines := strings.Split(string(source), "\n")
	styled := make([]string, len(lines))

	next := 0
	offset := 0
	for i, line := range lines {
		start, end := offset, offset+len(line)
		offset = end + 1

		for next < len(spans) && int(spans[next].Span.End) <= start {
			next++
		}

		var sb strings.Builder
		cursor := start
		for j := next; j < len(spans) && int(spans[j].Span.Start) < end; j++ {
			from := max(int(spans[j].Span.Start), start)
			to := min(int(spans[j].Span.End), end)
			if from > cursor {
				sb.WriteString(line[cursor-start : from-start])
			}
			segment := line[from-start : to-start]
			if style := theme.Style(spans[j].Capture); style != nil {
				sb.WriteString(style.Sprint(segment))
			} else {
				sb.WriteString(segment)
			}
			cursor = to
		}
		if cursor < end {
			sb.WriteString(line[cursor-start:])
		}
		styled[i] = sb.String()
	}

	return styled
}

func calculateMaxLineNumWidth(lineCount int) int {
	return len(fmt.Sprintf("%d", lineCount))
}
