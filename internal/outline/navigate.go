package outline

// Navigable returns the nodes a user can step through, in document order.
// A node rejected by keep is skipped together with its subtree.
func Navigable(forest []*Node, keep func(*Node) bool) []*Node {
	var out []*Node
	Walk(forest, func(n *Node) bool {
		if keep != nil && !keep(n) {
			return false
		}
		out = append(out, n)
		return true
	})
	return out
}

// Step returns the navigable node after (dir > 0) or before (dir < 0)
// row, wrapping around at either end. It returns nil when nothing is
// navigable.
func Step(forest []*Node, row, dir int, keep func(*Node) bool) *Node {
	nodes := Navigable(forest, keep)
	if len(nodes) == 0 {
		return nil
	}
	if dir >= 0 {
		for _, n := range nodes {
			if n.Start.Row > row {
				return n
			}
		}
		return nodes[0]
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Start.Row < row {
			return nodes[i]
		}
	}
	return nodes[len(nodes)-1]
}
