package outline

// Build turns scanner entries into a forest. Entries must be in document
// order. A node's section ends on the row before the next entry whose raw
// level is less than or equal to its own, or on the last row of doc.
func Build(entries []RawEntry, doc Bounds) []*Node {
	type stackEntry struct {
		node  *Node
		level int
	}

	var forest []*Node
	var stack []stackEntry
	lastRow := doc.LastRow()

	closeNode := func(n *Node, endRow int) {
		if endRow < n.Start.Row {
			endRow = n.Start.Row
		}
		n.RangeEnd = Position{Row: endRow, Column: doc.LineLength(endRow)}
		n.LastRow = endRow
		if k := len(n.Children); k > 0 && n.Children[k-1].LastRow > n.LastRow {
			n.LastRow = n.Children[k-1].LastRow
		}
	}

	for _, e := range entries {
		// Pop stack until the top is shallower than the new entry.
		for len(stack) > 0 && stack[len(stack)-1].level >= e.RawLevel {
			closeNode(stack[len(stack)-1].node, e.Start.Row-1)
			stack = stack[:len(stack)-1]
		}

		n := &Node{
			RawLevel:   e.RawLevel,
			Depth:      len(stack) + 1,
			Text:       e.Text,
			Tags:       append([]string(nil), e.Tags...),
			Start:      e.Start,
			End:        e.End,
			ExternalID: e.ExternalID,
		}
		if len(stack) == 0 {
			forest = append(forest, n)
		} else {
			parent := stack[len(stack)-1].node
			n.Parent = parent
			parent.Children = append(parent.Children, n)
		}
		stack = append(stack, stackEntry{node: n, level: e.RawLevel})
	}

	for len(stack) > 0 {
		closeNode(stack[len(stack)-1].node, lastRow)
		stack = stack[:len(stack)-1]
	}
	return forest
}
