package outline

// Category tags recognised by the display filters. A node without any of
// them belongs to the "standard" category.
const (
	TagInfo      = "info"
	TagSuccess   = "success"
	TagWarning   = "warning"
	TagError     = "error"
	TagSeparator = "separator"

	CategoryStandard = "standard"
)

// Categories lists every category a node can be filtered by, in display order.
var Categories = []string{TagInfo, TagSuccess, TagWarning, TagError, CategoryStandard}

// Position is a zero-based buffer position. Column counts runes.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Before reports whether p sorts strictly before o.
func (p Position) Before(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Column < o.Column
}

// RawEntry is one scanner match, before tree construction.
type RawEntry struct {
	RawLevel   int      // Format-native rank, may skip values
	Text       string   // Heading text
	Tags       []string // Category labels, empty for standard entries
	Start      Position // Start of the match
	End        Position // End of the match
	ExternalID string   // Identifier for non-text viewers (pdf destinations etc.)
}

// Node is one outline entry with its section range and live annotations.
type Node struct {
	RawLevel int      `json:"raw_level"`
	Depth    int      `json:"depth"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`

	Start    Position `json:"start"`     // Section start (heading start)
	End      Position `json:"end"`       // End of the heading match
	RangeEnd Position `json:"range_end"` // End of this node's own section
	LastRow  int      `json:"last_row"`  // Last row of the full subtree

	ExternalID string `json:"external_id,omitempty"`

	Children []*Node `json:"children"`
	Parent   *Node   `json:"-"`

	// Live annotations. Never persisted; rebuilt after every tree rebuild.
	CurrentCount int `json:"current_count"`
	StackCount   int `json:"stack_count"`
	Visibility   int `json:"visibility"`
}

// HasTag reports whether the node carries tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Category returns the display category of the node: the first category
// tag it carries, or "standard".
func (n *Node) Category() string {
	for _, t := range n.Tags {
		switch t {
		case TagInfo, TagSuccess, TagWarning, TagError:
			return t
		}
	}
	return CategoryStandard
}

// Current reports whether at least one cursor sits directly in this node.
func (n *Node) Current() bool { return n.CurrentCount > 0 }

// InStack reports whether at least one cursor is inside this node's subtree.
func (n *Node) InStack() bool { return n.StackCount > 0 }
