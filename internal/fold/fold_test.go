package fold

import (
	"reflect"
	"testing"

	"github.com/dgallion1/docnav/internal/outline"
)

// sample over 20 rows:
//
//	row 2  A      (depth 1, info)
//	row 4    A.1  (depth 2)
//	row 8    A.2  (depth 2, warning)
//	row 12 B      (depth 1)
func sample() []*outline.Node {
	return outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "A", Tags: []string{outline.TagInfo}, Start: outline.Position{Row: 2}},
		{RawLevel: 2, Text: "A.1", Start: outline.Position{Row: 4}},
		{RawLevel: 2, Text: "A.2", Tags: []string{outline.TagWarning}, Start: outline.Position{Row: 8}},
		{RawLevel: 1, Text: "B", Start: outline.Position{Row: 12}},
	}, outline.Rows(20))
}

func TestAt(t *testing.T) {
	f := sample()
	tests := []struct {
		name      string
		row       int
		depth     int
		want      Range
		wantFound bool
	}{
		{"innermost section", 5, 0, Range{Start: 4, End: 7}, true},
		{"depth 1 around child", 5, 1, Range{Start: 2, End: 11}, true},
		{"last child runs to next root", 9, 0, Range{Start: 8, End: 11}, true},
		{"last root runs to end", 15, 0, Range{Start: 12, End: 19}, true},
		{"depth 2 from B picks A.2", 15, 2, Range{Start: 8, End: 11}, true},
		{"before first heading", 1, 0, Range{}, false},
		{"no node at depth", 5, 3, Range{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := At(f, tt.row, tt.depth, 19)
			if ok != tt.wantFound || got != tt.want {
				t.Errorf("expected %+v/%v, got %+v/%v", tt.want, tt.wantFound, got, ok)
			}
		})
	}
}

func TestTable_CoversDocument(t *testing.T) {
	got := Table(sample(), "", 19)
	want := []Range{
		{Start: 0, End: 1, Preamble: true},
		{Start: 2, End: 3},
		{Start: 4, End: 7},
		{Start: 8, End: 11},
		{Start: 12, End: 19},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	// Every row is covered exactly once.
	covered := make([]int, 20)
	for _, r := range got {
		for row := r.Start; row <= r.End; row++ {
			covered[row]++
		}
	}
	for row, c := range covered {
		if c != 1 {
			t.Errorf("row %d covered %d times", row, c)
		}
	}
}

func TestTable_TagFilter(t *testing.T) {
	got := Table(sample(), outline.TagWarning, 19)
	want := []Range{
		{Start: 0, End: 1, Preamble: true},
		{Start: 8, End: 11},
		{Start: 12, End: 19},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestTable_TagFilterStillFoldsTail(t *testing.T) {
	f := outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "W", Tags: []string{outline.TagWarning}, Start: outline.Position{Row: 2}},
		{RawLevel: 1, Text: "S", Start: outline.Position{Row: 5}},
	}, outline.Rows(10))

	got := Table(f, outline.TagWarning, 9)
	want := []Range{
		{Start: 0, End: 1, Preamble: true},
		{Start: 2, End: 4},
		{Start: 5, End: 9},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	got = Table(f, outline.TagError, 9)
	want = []Range{
		{Start: 0, End: 1, Preamble: true},
		{Start: 5, End: 9},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestTable_NoPreambleAtRowZero(t *testing.T) {
	f := outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "A", Start: outline.Position{Row: 0}},
	}, outline.Rows(5))
	got := Table(f, "", 4)
	if !reflect.DeepEqual(got, []Range{{Start: 0, End: 4}}) {
		t.Errorf("expected single section fold, got %+v", got)
	}
	if Table(nil, "", 4) != nil {
		t.Error("expected nil for empty forest")
	}
}

func TestNavigator(t *testing.T) {
	f := sample()
	buf := NewMemory(20)
	nav := &Navigator{Buffer: buf}

	if nav.FoldAt(f, 1, 0) {
		t.Error("expected miss before the first heading")
	}
	if len(buf.Folds()) != 0 {
		t.Error("expected a miss to leave the buffer untouched")
	}

	if !nav.Toggle(f, 5) {
		t.Error("expected toggle to fold")
	}
	if !buf.IsFolded(6) {
		t.Error("expected row 6 folded")
	}
	if nav.Toggle(f, 5) {
		t.Error("expected second toggle to unfold")
	}
	if buf.IsFolded(6) {
		t.Error("expected row 6 unfolded")
	}

	nav.FoldAt(f, 5, 0)
	ranges := nav.FoldAsTable(f, "")
	if len(ranges) != 5 || len(buf.Folds()) != 5 {
		t.Errorf("expected 5 table folds, got %d ranges, %d folds", len(ranges), len(buf.Folds()))
	}
	if !buf.Folds()[0].Preamble {
		t.Error("expected first fold to be the preamble")
	}

	nav.Unfold(9)
	if buf.IsFolded(9) {
		t.Error("expected row 9 unfolded")
	}
	nav.UnfoldAll()
	if len(buf.Folds()) != 0 {
		t.Errorf("expected no folds, got %d", len(buf.Folds()))
	}
}

func TestMemory_SetLineCountDropsStaleFolds(t *testing.T) {
	m := NewMemory(20)
	m.Fold(2, 5)
	m.Fold(10, 19)
	m.SetLineCount(12)
	if got := m.Folds(); len(got) != 1 || got[0].Start != 2 {
		t.Errorf("expected only the 2-5 fold, got %+v", got)
	}
}
