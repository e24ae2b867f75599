// Package fold computes section fold ranges from an outline and applies
// them to a host buffer.
package fold

import "github.com/dgallion1/docnav/internal/outline"

// Range is an inclusive row range. For section folds the Start row is the
// heading row, which hosts keep visible.
type Range struct {
	Start    int  `json:"start"`
	End      int  `json:"end"`
	Preamble bool `json:"preamble,omitempty"` // Content before the first node, folded entirely
}

// Buffer is the host side of folding.
type Buffer interface {
	LineCount() int
	Fold(start, end int)
	FoldPreamble(end int)
	Unfold(row int)
	UnfoldAll()
	IsFolded(row int) bool
}

// At returns the section to fold for a cursor at cursorRow: the last node
// in document order starting at or before cursorRow (restricted to depth
// when depth > 0), up to the row before the next node at the same or a
// shallower depth, or lastRow.
func At(forest []*outline.Node, cursorRow, depth, lastRow int) (Range, bool) {
	flat := outline.Flatten(forest)
	for i := len(flat) - 1; i >= 0; i-- {
		n := flat[i]
		if n.Start.Row > cursorRow || (depth > 0 && n.Depth != depth) {
			continue
		}
		end := lastRow
		for _, next := range flat[i+1:] {
			if next.Depth <= n.Depth {
				end = next.Start.Row - 1
				break
			}
		}
		if end < n.Start.Row {
			return Range{}, false
		}
		return Range{Start: n.Start.Row, End: end}, true
	}
	return Range{}, false
}

// Table returns the ranges that fold the document down to its headings:
// the preamble before the first node, then each node up to the next one.
// With a tag, only sections of nodes carrying it are folded, except the
// tail from the last node to lastRow, which always folds.
func Table(forest []*outline.Node, tag string, lastRow int) []Range {
	flat := outline.Flatten(forest)
	if len(flat) == 0 {
		return nil
	}

	var out []Range
	if first := flat[0].Start.Row; first > 0 {
		out = append(out, Range{Start: 0, End: first - 1, Preamble: true})
	}
	add := func(n *outline.Node, end int) {
		if end >= n.Start.Row {
			out = append(out, Range{Start: n.Start.Row, End: end})
		}
	}
	for i := 1; i < len(flat); i++ {
		if prev := flat[i-1]; tag == "" || prev.HasTag(tag) {
			add(prev, flat[i].Start.Row-1)
		}
	}
	add(flat[len(flat)-1], lastRow)
	return out
}

// Navigator applies fold computations to a host buffer. A miss is a
// silent no-op.
type Navigator struct {
	Buffer Buffer
}

func (n *Navigator) lastRow() int {
	if c := n.Buffer.LineCount(); c > 0 {
		return c - 1
	}
	return 0
}

func (n *Navigator) apply(r Range) {
	if r.Preamble {
		n.Buffer.FoldPreamble(r.End)
		return
	}
	n.Buffer.Fold(r.Start, r.End)
}

// FoldAt folds the section around cursorRow, restricted to depth when
// depth > 0. It reports whether anything was folded.
func (n *Navigator) FoldAt(forest []*outline.Node, cursorRow, depth int) bool {
	r, ok := At(forest, cursorRow, depth, n.lastRow())
	if !ok {
		return false
	}
	n.apply(r)
	return true
}

// FoldAsTable unfolds everything, then folds every section so only the
// headings remain. With a tag only sections carrying it are folded.
func (n *Navigator) FoldAsTable(forest []*outline.Node, tag string) []Range {
	if len(forest) == 0 {
		return nil
	}
	n.Buffer.UnfoldAll()
	ranges := Table(forest, tag, n.lastRow())
	for _, r := range ranges {
		n.apply(r)
	}
	return ranges
}

// Unfold unfolds the fold at row.
func (n *Navigator) Unfold(row int) { n.Buffer.Unfold(row) }

// UnfoldAll removes every fold.
func (n *Navigator) UnfoldAll() { n.Buffer.UnfoldAll() }

// Toggle unfolds when cursorRow is folded, otherwise folds the section
// around it. It reports whether the row is folded afterwards.
func (n *Navigator) Toggle(forest []*outline.Node, cursorRow int) bool {
	if n.Buffer.IsFolded(cursorRow) {
		n.Buffer.Unfold(cursorRow)
		return false
	}
	return n.FoldAt(forest, cursorRow, 0)
}
