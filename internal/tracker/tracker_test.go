package tracker

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/dgallion1/docnav/internal/outline"
)

// forest builds A(row 0) -> [A.1(row 2)], B(row 5) over 10 rows.
func forest() []*outline.Node {
	return outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "A", Start: outline.Position{Row: 0}},
		{RawLevel: 3, Text: "A.1", Start: outline.Position{Row: 2}},
		{RawLevel: 1, Text: "B", Start: outline.Position{Row: 5}},
	}, outline.Rows(10))
}

func TestTwoCursorsMoveOut(t *testing.T) {
	f := forest()
	a, a1, b := f[0], f[0].Children[0], f[1]

	c1, c2 := New(0), New(0)
	c1.Attach(f, 3)
	c2.Attach(f, 4)

	if a1.CurrentCount != 2 {
		t.Errorf("expected A.1 current 2, got %d", a1.CurrentCount)
	}
	if a.CurrentCount != 0 {
		t.Errorf("expected A current 0, got %d", a.CurrentCount)
	}
	if a.StackCount != 2 {
		t.Errorf("expected A stack 2, got %d", a.StackCount)
	}

	if !c2.OnMove(f, 6, false) {
		t.Fatal("expected move to recompute path")
	}
	if a1.CurrentCount != 1 || b.CurrentCount != 1 {
		t.Errorf("expected A.1/B current 1/1, got %d/%d", a1.CurrentCount, b.CurrentCount)
	}
	if a.StackCount != 1 || b.StackCount != 1 {
		t.Errorf("expected A/B stack 1/1, got %d/%d", a.StackCount, b.StackCount)
	}
}

func TestPathAndBreadcrumb(t *testing.T) {
	f := forest()
	c := New(0)
	c.Attach(f, 2)
	if got := c.Current(); got == nil || got.Text != "A.1" {
		t.Fatalf("expected current A.1, got %v", got)
	}
	want := []string{"A", "A.1"}
	if got := c.Breadcrumb(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(c.Path()) != 2 || c.Path()[0].Text != "A.1" {
		t.Errorf("expected innermost-first path, got %v", c.Path())
	}
}

func TestRowBeforeFirstNode(t *testing.T) {
	f := outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "A", Start: outline.Position{Row: 3}},
	}, outline.Rows(10))
	c := New(0)
	c.Attach(f, 1)
	if c.Current() != nil {
		t.Errorf("expected no current node, got %v", c.Current())
	}
	if f[0].StackCount != 0 {
		t.Errorf("expected no counters, got stack %d", f[0].StackCount)
	}
}

func TestOnMove_IgnoresEditsAndSameRow(t *testing.T) {
	f := forest()
	c := New(0)
	c.Attach(f, 3)
	if c.OnMove(f, 3, false) {
		t.Error("expected same-row move to be a no-op")
	}
	if c.OnMove(f, 7, true) {
		t.Error("expected edit move to be a no-op")
	}
	if c.Row() != 7 {
		t.Errorf("expected row to follow edit, got %d", c.Row())
	}
	if c.Current().Text != "A.1" {
		t.Errorf("expected path unchanged until replay, got %s", c.Current().Text)
	}

	rebuilt := forest()
	c.Replay(rebuilt)
	if c.Current().Text != "B" || rebuilt[1].CurrentCount != 1 {
		t.Errorf("expected replay onto B, got %s", c.Current().Text)
	}
}

func TestDetach_Idempotent(t *testing.T) {
	f := forest()
	c := New(0)
	c.Attach(f, 3)
	c.Detach()
	c.Detach()
	outline.Walk(f, func(n *outline.Node) bool {
		if n.CurrentCount != 0 || n.StackCount != 0 {
			t.Errorf("%s: expected zero counters, got %d/%d", n.Text, n.CurrentCount, n.StackCount)
		}
		return true
	})
}

func TestCounters_RandomCursors(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	var entries []outline.RawEntry
	for row := 0; row < 60; row += 1 + rng.IntN(3) {
		entries = append(entries, outline.RawEntry{RawLevel: 1 + rng.IntN(4), Text: "n", Start: outline.Position{Row: row}})
	}
	f := outline.Build(entries, outline.Rows(70))

	cursors := make([]*Cursor, 8)
	for i := range cursors {
		cursors[i] = New(0)
		cursors[i].Attach(f, rng.IntN(70))
	}
	for step := 0; step < 200; step++ {
		c := cursors[rng.IntN(len(cursors))]
		if rng.IntN(5) == 0 {
			c.Detach()
		} else {
			c.OnMove(f, rng.IntN(70), false)
		}

		// Recount from paths and compare.
		cur := map[*outline.Node]int{}
		stack := map[*outline.Node]int{}
		for _, c := range cursors {
			if p := c.Path(); len(p) > 0 {
				cur[p[0]]++
				for _, n := range p {
					stack[n]++
				}
			}
		}
		outline.Walk(f, func(n *outline.Node) bool {
			if n.CurrentCount != cur[n] || n.StackCount != stack[n] {
				t.Fatalf("step %d: expected %d/%d, got %d/%d", step, cur[n], stack[n], n.CurrentCount, n.StackCount)
			}
			if n.CurrentCount > n.StackCount {
				t.Fatalf("step %d: current exceeds stack", step)
			}
			return true
		})
	}
}
