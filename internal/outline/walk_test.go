package outline

import (
	"reflect"
	"testing"
)

func sampleForest() []*Node {
	return Build([]RawEntry{
		entry(1, 0, "Intro"),
		entry(2, 2, "Setup"),
		entry(3, 4, "Install"),
		entry(1, 8, "Usage"),
	}, Rows(12))
}

func TestFlatten_PreOrder(t *testing.T) {
	var got []string
	for _, n := range Flatten(sampleForest()) {
		got = append(got, n.Text)
	}
	want := []string{"Intro", "Setup", "Install", "Usage"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBreadcrumb(t *testing.T) {
	forest := sampleForest()
	install := forest[0].Children[0].Children[0]
	want := []string{"Intro", "Setup", "Install"}
	if got := Breadcrumb(install); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	forest := sampleForest()
	forest[0].StackCount = 2
	c := Clone(forest)
	c[0].StackCount = 0
	c[0].Children[0].Text = "changed"
	if forest[0].StackCount != 2 {
		t.Errorf("expected original counters to be untouched")
	}
	if forest[0].Children[0].Text != "Setup" {
		t.Errorf("expected original text to be untouched")
	}
	if c[0].Children[0].Parent != c[0] {
		t.Errorf("expected clone parent links to point into the clone")
	}
}

func TestMarkers_Layers(t *testing.T) {
	forest := Build([]RawEntry{entry(1, 0, "a"), entry(3, 1, "b")}, Rows(3))
	byDepth := Markers(forest, false)
	byRaw := Markers(forest, true)
	if byDepth[1].Layer != 2 {
		t.Errorf("expected depth layer 2, got %d", byDepth[1].Layer)
	}
	if byRaw[1].Layer != 3 {
		t.Errorf("expected raw layer 3, got %d", byRaw[1].Layer)
	}
}

func TestNode_Category(t *testing.T) {
	n := &Node{Tags: []string{TagSeparator, TagWarning}}
	if n.Category() != TagWarning {
		t.Errorf("expected %q, got %q", TagWarning, n.Category())
	}
	if (&Node{}).Category() != CategoryStandard {
		t.Errorf("expected untagged node to be standard")
	}
}

func TestFind(t *testing.T) {
	forest := sampleForest()
	n := Find(forest, func(n *Node) bool { return n.Start.Row >= 4 })
	if n == nil || n.Text != "Install" {
		t.Fatalf("expected Install, got %v", n)
	}
	if Find(forest, func(*Node) bool { return false }) != nil {
		t.Error("expected nil for no match")
	}
}
