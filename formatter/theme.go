package formatter

import (
	"strings"

	"github.com/fatih/color"
)

// Theme maps capture names to terminal styles. Capture names are
// dotted paths, and a lookup returns the style of the longest
// configured prefix, so a single "markup.heading" entry covers
// "markup.heading.2" until a more specific entry overrides it.
//
// Nodes live in a single arena slice and reference their children by
// index, so a theme is one contiguous structure no matter how many
// entries it holds.
type Theme struct {
	nodes []themeNode
}

// themeNode is one trie node in the theme arena. children maps a path
// segment to the index of the child node; style is nil for nodes that
// only exist as intermediate segments.
type themeNode struct {
	children map[string]int
	style    *color.Color
}

// NewTheme returns an empty theme. Captures with no matching entry
// render unstyled.
func NewTheme() *Theme {
	return &Theme{nodes: []themeNode{{children: make(map[string]int)}}}
}

// Set assigns a style to a capture name or capture-name prefix,
// replacing any previous entry for the same path.
func (t *Theme) Set(capture string, style *color.Color) {
	current := 0
	for _, part := range strings.Split(capture, ".") {
		next, ok := t.nodes[current].children[part]
		if !ok {
			next = len(t.nodes)
			t.nodes = append(t.nodes, themeNode{children: make(map[string]int)})
			t.nodes[current].children[part] = next
		}
		current = next
	}
	t.nodes[current].style = style
}

// Style resolves a capture name to the style of its most specific
// configured prefix, or nil when no prefix has an entry.
func (t *Theme) Style(capture string) *color.Color {
	current := 0
	style := t.nodes[0].style
	for _, part := range strings.Split(capture, ".") {
		next, ok := t.nodes[current].children[part]
		if !ok {
			break
		}
		current = next
		if t.nodes[current].style != nil {
			style = t.nodes[current].style
		}
	}
	return style
}

// DefaultTheme covers every capture name the built-in rules emit,
// using the standard 16-color terminal palette so the output respects
// the user's scheme.
func DefaultTheme() *Theme {
	t := NewTheme()
	for capture, style := range map[string]*color.Color{
		"comment":                color.New(color.FgHiBlack),
		"comment.drawer":         color.New(color.FgHiBlack, color.Faint),
		"keyword":                color.New(color.FgMagenta, color.Bold),
		"string":                 color.New(color.FgGreen),
		"string.special":         color.New(color.FgYellow),
		"property":               color.New(color.FgCyan),
		"tag":                    color.New(color.FgHiMagenta),
		"number":                 color.New(color.FgHiYellow),
		"operator":               color.New(color.FgWhite),
		"punctuation":            color.New(color.FgHiBlack),
		"punctuation.special":    color.New(color.FgYellow, color.Bold),
		"markup.heading":         color.New(color.FgHiCyan, color.Bold),
		"markup.heading.1":       color.New(color.FgHiCyan, color.Bold, color.Underline),
		"markup.heading.3":       color.New(color.FgCyan, color.Bold),
		"markup.todo":            color.New(color.FgRed, color.Bold),
		"markup.done":            color.New(color.FgGreen, color.Bold),
		"markup.list":            color.New(color.FgHiBlue),
		"markup.list.checked":    color.New(color.FgGreen),
		"markup.list.unchecked":  color.New(color.FgYellow),
		"markup.cookie.progress": color.New(color.FgYellow, color.Bold),
		"markup.cookie.done":     color.New(color.FgGreen, color.Bold),
		"markup.cookie.percent":  color.New(color.FgYellow, color.Bold),
		"markup.table":           color.New(color.FgHiWhite),
		"markup.link":            color.New(color.FgBlue, color.Underline),
		"markup.link.label":      color.New(color.FgHiBlue),
		"markup.bold":            color.New(color.Bold),
		"markup.italic":          color.New(color.Italic),
		"markup.raw":             color.New(color.FgHiGreen),
	} {
		t.Set(capture, style)
	}
	return t
}
