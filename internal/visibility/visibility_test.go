package visibility

import (
	"testing"

	"github.com/dgallion1/docnav/internal/outline"
)

// sample: A(0..9) -> [A.1(2..5), A.2(6..9)], B(10..19)
func sample() []*outline.Node {
	return outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "A", Start: outline.Position{Row: 0}},
		{RawLevel: 2, Text: "A.1", Start: outline.Position{Row: 2}},
		{RawLevel: 2, Text: "A.2", Start: outline.Position{Row: 6}},
		{RawLevel: 1, Text: "B", Start: outline.Position{Row: 10}},
	}, outline.Rows(20))
}

func visibleTexts(forest []*outline.Node) []string {
	var out []string
	for _, n := range Visible(forest) {
		out = append(out, n.Text)
	}
	return out
}

func TestMarkRange(t *testing.T) {
	tests := []struct {
		name     string
		top, bot int
		want     []string
	}{
		{"inside A.1", 3, 4, []string{"A", "A.1"}},
		{"spans A.2 into B", 7, 12, []string{"A", "A.2", "B"}},
		{"starts exactly on heading", 6, 6, []string{"A", "A.2"}},
		{"everything", 0, 19, []string{"A", "A.1", "A.2", "B"}},
		{"below document", 25, 30, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sample()
			MarkRange(f, tt.top, tt.bot)
			got := visibleTexts(f)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestMarkRange_ResetsPreviousMarks(t *testing.T) {
	f := sample()
	MarkRange(f, 0, 19)
	MarkRange(f, 11, 12)
	if got := visibleTexts(f); len(got) != 1 || got[0] != "B" {
		t.Errorf("expected [B], got %v", got)
	}
}

func TestMarkSet(t *testing.T) {
	f := sample()
	f[0].Children[1].ExternalID = "1.2"
	f[1].ExternalID = "2"
	MarkSet(f, []string{"2", "9"})
	if got := visibleTexts(f); len(got) != 1 || got[0] != "B" {
		t.Errorf("expected [B], got %v", got)
	}
	if AnyVisible(f[0]) {
		t.Error("expected A subtree invisible")
	}
	MarkSet(f, []string{"1.2"})
	if !AnyVisible(f[0]) {
		t.Error("expected A subtree visible through A.2")
	}
}

func TestClear(t *testing.T) {
	f := sample()
	MarkRange(f, 0, 19)
	Clear(f)
	if got := Visible(f); len(got) != 0 {
		t.Errorf("expected nothing visible, got %d nodes", len(got))
	}
}
