// Package visibility marks which outline nodes fall inside the host's
// visible region.
package visibility

import "github.com/dgallion1/docnav/internal/outline"

// MarkRange marks a node visible when its start row lies within
// [rowTop, rowBot], or when rowTop lies within the node's subtree extent.
// Every node is visited regardless of its parent's result.
func MarkRange(forest []*outline.Node, rowTop, rowBot int) {
	outline.Walk(forest, func(n *outline.Node) bool {
		start := n.Start.Row
		if (rowTop <= start && start <= rowBot) || (start <= rowTop && rowTop <= n.LastRow) {
			n.Visibility = 1
		} else {
			n.Visibility = 0
		}
		return true
	})
}

// MarkSet marks a node visible when its ExternalID is in ids. Used by
// viewers that report visible destinations instead of rows.
func MarkSet(forest []*outline.Node, ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	outline.Walk(forest, func(n *outline.Node) bool {
		n.Visibility = 0
		if n.ExternalID != "" {
			if _, ok := set[n.ExternalID]; ok {
				n.Visibility = 1
			}
		}
		return true
	})
}

// Clear marks every node invisible.
func Clear(forest []*outline.Node) {
	outline.Walk(forest, func(n *outline.Node) bool {
		n.Visibility = 0
		return true
	})
}

// AnyVisible reports whether n or any of its descendants is visible.
func AnyVisible(n *outline.Node) bool {
	if n.Visibility > 0 {
		return true
	}
	for _, c := range n.Children {
		if AnyVisible(c) {
			return true
		}
	}
	return false
}

// Visible returns the visible nodes in document order.
func Visible(forest []*outline.Node) []*outline.Node {
	var out []*outline.Node
	outline.Walk(forest, func(n *outline.Node) bool {
		if n.Visibility > 0 {
			out = append(out, n)
		}
		return true
	})
	return out
}
