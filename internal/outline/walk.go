package outline

// Flatten returns every node of the forest in document (pre-order) order.
func Flatten(forest []*Node) []*Node {
	var out []*Node
	Walk(forest, func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Walk visits nodes in pre-order. Returning false from fn skips the
// node's children.
func Walk(forest []*Node, fn func(*Node) bool) {
	for _, n := range forest {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	c := 0
	Walk(forest, func(*Node) bool { c++; return true })
	return c
}

// Breadcrumb returns the texts from the root down to n.
func Breadcrumb(n *Node) []string {
	var bc []string
	for p := n; p != nil; p = p.Parent {
		bc = append(bc, p.Text)
	}
	for i, j := 0, len(bc)-1; i < j; i, j = i+1, j-1 {
		bc[i], bc[j] = bc[j], bc[i]
	}
	return bc
}

// Clone deep-copies the forest including annotations. Parent links of the
// copy point into the copy.
func Clone(forest []*Node) []*Node {
	return cloneInto(forest, nil)
}

func cloneInto(forest []*Node, parent *Node) []*Node {
	if forest == nil {
		return nil
	}
	out := make([]*Node, len(forest))
	for i, n := range forest {
		c := *n
		c.Parent = parent
		c.Tags = append([]string(nil), n.Tags...)
		c.Children = cloneInto(n.Children, &c)
		out[i] = &c
	}
	return out
}

// ResetAnnotations zeroes the cursor and visibility counters of every node.
func ResetAnnotations(forest []*Node) {
	Walk(forest, func(n *Node) bool {
		n.CurrentCount = 0
		n.StackCount = 0
		n.Visibility = 0
		return true
	})
}

// Marker is a line-marker range for one heading.
type Marker struct {
	Layer int      `json:"layer"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Markers returns one marker per node covering the heading match. Layers
// are the structural depth, or the raw level when byRawLevel is set.
func Markers(forest []*Node, byRawLevel bool) []Marker {
	var out []Marker
	Walk(forest, func(n *Node) bool {
		layer := n.Depth
		if byRawLevel {
			layer = n.RawLevel
		}
		out = append(out, Marker{Layer: layer, Start: n.Start, End: n.End})
		return true
	})
	return out
}

// Find returns the first node in pre-order for which match reports true.
func Find(forest []*Node, match func(*Node) bool) *Node {
	var found *Node
	Walk(forest, func(n *Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
