// Package render prints outlines, search results and fold ranges for
// terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/search"
)

// Options controls rendering.
type Options struct {
	Display config.DisplayState
	Width   int  // Terminal width; 0 disables wrapping and truncation
	Rows    bool // Append the heading row to each line
}

// Gutter markers.
const (
	markCurrent = ">"
	markStack   = "·"
	markVisible = "|"
	markOpen    = "▾"
	markClosed  = "▸"
	markLeaf    = "•"
)

// Outline renders the forest one node per line. Hidden categories drop
// the node with its subtree; the tree mode decides which children show.
func Outline(forest []*outline.Node, opts Options) string {
	var b strings.Builder
	var walk func(nodes []*outline.Node, indent int)
	walk = func(nodes []*outline.Node, indent int) {
		for _, n := range nodes {
			if !opts.Display.ShowsNode(n) {
				continue
			}
			open := len(n.Children) > 0 && opts.Display.ShowChildren(n)
			b.WriteString(line(n, indent, open, opts))
			b.WriteByte('\n')
			if open {
				walk(n.Children, indent+1)
			}
		}
	}
	walk(forest, 0)
	return b.String()
}

func line(n *outline.Node, indent int, open bool, opts Options) string {
	gutter := " "
	switch {
	case n.Current():
		gutter = markCurrent
	case n.InStack():
		gutter = markStack
	}
	if n.Visibility > 0 {
		gutter += markVisible
	} else {
		gutter += " "
	}

	bullet := markLeaf
	if len(n.Children) > 0 {
		bullet = markClosed
		if open {
			bullet = markOpen
		}
	}
	prefix := gutter + " " + strings.Repeat("  ", indent) + bullet + " "

	suffix := ""
	if opts.Rows {
		suffix = dimStyle.Render(fmt.Sprintf(" :%d", n.Start.Row+1))
	}

	st := nodeStyle(n)
	if w := opts.Width - lipgloss.Width(prefix) - lipgloss.Width(suffix); opts.Width > 0 && w > 0 {
		if opts.Display.TextWrap {
			st = st.Width(w)
			text := st.Render(n.Text)
			pad := strings.Repeat(" ", lipgloss.Width(prefix))
			lines := strings.Split(text, "\n")
			for i := 1; i < len(lines); i++ {
				lines[i] = pad + lines[i]
			}
			return prefix + strings.Join(lines, "\n") + suffix
		}
		return prefix + st.MaxWidth(w).Render(truncate(n.Text, w)) + suffix
	}
	return prefix + st.Render(n.Text) + suffix
}

// truncate shortens s to w cells, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// Search renders ranked search results with the matched characters
// highlighted.
func Search(results []search.Result, opts Options) string {
	var b strings.Builder
	for _, r := range results {
		st := textStyle
		if c, ok := categoryStyles[r.Node.Category()]; ok {
			st = c
		}
		for _, seg := range search.Segments(r.Node.Text, r.Spans) {
			if seg.Matched {
				b.WriteString(matchStyle.Render(seg.Text))
			} else {
				b.WriteString(st.Render(seg.Text))
			}
		}
		if opts.Rows {
			b.WriteString(dimStyle.Render(fmt.Sprintf(" :%d", r.Row+1)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Breadcrumb renders a cursor's path from root to innermost heading.
func Breadcrumb(path []string) string {
	if len(path) == 0 {
		return dimStyle.Render("(no heading)")
	}
	return headerStyle.Render(strings.Join(path, " › "))
}

// Folds renders fold ranges as one-based inclusive line spans.
func Folds(ranges []fold.Range) string {
	var b strings.Builder
	for _, r := range ranges {
		fmt.Fprintf(&b, "%d-%d", r.Start+1, r.End+1)
		if r.Preamble {
			b.WriteString(dimStyle.Render(" (preamble)"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
