package highlight

import (
	"sort"

	"github.com/zac-garby/noteboks/query"
	"github.com/zac-garby/noteboks/tree"
)

// Styled is one resolved highlight assignment: a byte span, the capture
// name that governs its presentation, and the rule that bound it.
type Styled struct {
	Span    tree.Span
	Capture string
	Rule    int
}

// Resolve flattens a match stream into non-overlapping styled spans,
// ordered by start offset. Where captures overlap, the narrower
// (deeper-nested) capture wins its region; an enclosing capture keeps
// whatever the inner ones leave uncovered. Among captures of equal
// width the later-declared rule wins, then the later binding.
// Zero-width captures are dropped.
//
// Resolution is a pure function of the match stream: identical matches
// always produce identical output, so re-running the pipeline after a
// tree change needs no state carried over.
func Resolve(matches []query.Match) []Styled {
	var entries []Styled
	for _, m := range matches {
		for _, c := range m.Captures {
			if c.Span.Len() == 0 {
				continue
			}
			entries = append(entries, Styled{Span: c.Span, Capture: c.Name, Rule: m.Rule})
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return sweep(entries)
}

// sweep walks the span boundaries in order, tracking which entries are
// active and emitting a segment for the winning entry between
// consecutive boundaries. Adjacent segments with the same capture and
// rule are merged.
func sweep(entries []Styled) []Styled {
	type event struct {
		pos     uint32
		isStart bool
		idx     int
	}

	events := make([]event, 0, len(entries)*2)
	for i := range entries {
		events = append(events,
			event{pos: entries[i].Span.Start, isStart: true, idx: i},
			event{pos: entries[i].Span.End, isStart: false, idx: i},
		)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return !events[i].isStart && events[j].isStart // ends before starts
	})

	active := make([]bool, len(entries))
	out := make([]Styled, 0, len(entries))
	var lastPos uint32
	current := -1

	flush := func(end uint32) {
		if current < 0 || end <= lastPos {
			return
		}
		seg := Styled{
			Span:    tree.Span{Start: lastPos, End: end},
			Capture: entries[current].Capture,
			Rule:    entries[current].Rule,
		}
		if n := len(out); n > 0 && out[n-1].Span.End == seg.Span.Start &&
			out[n-1].Capture == seg.Capture && out[n-1].Rule == seg.Rule {
			out[n-1].Span.End = seg.Span.End
			return
		}
		out = append(out, seg)
	}

	for _, ev := range events {
		flush(ev.pos)
		active[ev.idx] = ev.isStart
		lastPos = ev.pos
		current = pick(entries, active)
	}
	return out
}

// pick selects the governing entry among the active ones.
func pick(entries []Styled, active []bool) int {
	win := -1
	for i, on := range active {
		if !on {
			continue
		}
		if win < 0 || beats(entries, i, win) {
			win = i
		}
	}
	return win
}

// beats reports whether entry i takes priority over entry j: narrower
// span first, then higher rule ordinal, then later arrival in the
// match stream.
func beats(entries []Styled, i, j int) bool {
	wi, wj := entries[i].Span.Len(), entries[j].Span.Len()
	if wi != wj {
		return wi < wj
	}
	if entries[i].Rule != entries[j].Rule {
		return entries[i].Rule > entries[j].Rule
	}
	return i > j
}
