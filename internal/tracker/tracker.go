// Package tracker maintains, per cursor, the path of outline nodes that
// contain the cursor row and the occupancy counters that path contributes.
package tracker

import "github.com/dgallion1/docnav/internal/outline"

// Cursor tracks one host cursor. The zero value is a detached cursor at
// row 0.
type Cursor struct {
	row  int
	path []*outline.Node // innermost first
}

// New returns a cursor at row, not yet attached to any forest.
func New(row int) *Cursor { return &Cursor{row: row} }

// Row returns the last row reported for the cursor.
func (c *Cursor) Row() int { return c.row }

// Path returns the nodes containing the cursor, innermost first.
func (c *Cursor) Path() []*outline.Node { return c.path }

// Current returns the innermost node containing the cursor, or nil.
func (c *Cursor) Current() *outline.Node {
	if len(c.path) == 0 {
		return nil
	}
	return c.path[0]
}

// Breadcrumb returns the texts of the path, outermost first.
func (c *Cursor) Breadcrumb() []string {
	out := make([]string, 0, len(c.path))
	for i := len(c.path) - 1; i >= 0; i-- {
		out = append(out, c.path[i].Text)
	}
	return out
}

// Attach locates row in forest and increments the counters along the
// path. Any previous path is detached first.
func (c *Cursor) Attach(forest []*outline.Node, row int) {
	c.Detach()
	c.row = row
	lookup(forest, row, &c.path)
}

// Replay attaches the cursor to a freshly built forest at its last row.
// The previous path belonged to a discarded forest and is dropped without
// touching its counters.
func (c *Cursor) Replay(forest []*outline.Node) {
	c.path = nil
	lookup(forest, c.row, &c.path)
}

// OnMove handles a cursor move. Moves caused by text edits only record the
// new row; the forest rebuild that follows replays the cursor. It reports
// whether the path was recomputed.
func (c *Cursor) OnMove(forest []*outline.Node, row int, textChanged bool) bool {
	if textChanged {
		c.row = row
		return false
	}
	if row == c.row && c.path != nil {
		return false
	}
	c.Attach(forest, row)
	return true
}

// Detach removes this cursor's contribution from the counters. Calling it
// again is a no-op.
func (c *Cursor) Detach() {
	if len(c.path) == 0 {
		return
	}
	if n := c.path[0]; n.CurrentCount > 0 {
		n.CurrentCount--
	}
	for _, n := range c.path {
		if n.StackCount > 0 {
			n.StackCount--
		}
	}
	c.path = nil
}

// lookup finds the last node starting at or before row among items,
// descends into its children and appends the path innermost first. It
// reports whether a node was found.
func lookup(items []*outline.Node, row int, path *[]*outline.Node) bool {
	for i := len(items) - 1; i >= 0; i-- {
		n := items[i]
		if n.Start.Row > row {
			continue
		}
		if !lookup(n.Children, row, path) {
			n.CurrentCount++
		}
		n.StackCount++
		*path = append(*path, n)
		return true
	}
	return false
}
