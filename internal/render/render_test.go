package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/search"
	"github.com/dgallion1/docnav/internal/tracker"
)

func sample() []*outline.Node {
	return outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "Intro", Start: outline.Position{Row: 0}},
		{RawLevel: 2, Text: "Setup", Start: outline.Position{Row: 2}},
		{RawLevel: 1, Text: "Errors", Tags: []string{outline.TagError}, Start: outline.Position{Row: 5}},
		{RawLevel: 2, Text: "Timeouts", Start: outline.Position{Row: 6}},
	}, outline.Rows(9))
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestOutline_Expanded(t *testing.T) {
	got := lines(Outline(sample(), Options{Display: config.DefaultDisplay()}))
	want := []string{
		"   ▾ Intro",
		"     • Setup",
		"   ▾ Errors",
		"     • Timeouts",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("expected\n%s\ngot\n%s", strings.Join(want, "\n"), strings.Join(got, "\n"))
	}
}

func TestOutline_HiddenCategoryDropsSubtree(t *testing.T) {
	d := config.DefaultDisplay()
	d.Categories[outline.TagError] = false
	got := Outline(sample(), Options{Display: d})
	if strings.Contains(got, "Errors") || strings.Contains(got, "Timeouts") {
		t.Errorf("expected error subtree hidden, got\n%s", got)
	}
	if !strings.Contains(got, "Setup") {
		t.Errorf("expected Setup shown, got\n%s", got)
	}
}

func TestOutline_AutoCollapseFollowsCursor(t *testing.T) {
	forest := sample()
	c := tracker.New(3)
	c.Attach(forest, 3)

	d := config.DefaultDisplay()
	d.Tree = config.TreeAuto
	got := lines(Outline(forest, Options{Display: d}))
	want := []string{
		"·  ▾ Intro",
		">    • Setup",
		"   ▸ Errors",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("expected\n%s\ngot\n%s", strings.Join(want, "\n"), strings.Join(got, "\n"))
	}

	d.Tree = config.TreeCollapse
	if n := len(lines(Outline(forest, Options{Display: d}))); n != 2 {
		t.Errorf("expected 2 root lines in collapse mode, got %d", n)
	}
}

func TestOutline_VisibleGutterAndRows(t *testing.T) {
	forest := sample()
	forest[1].Visibility = 1
	got := lines(Outline(forest, Options{Display: config.DefaultDisplay(), Rows: true}))
	if got[2] != " | ▾ Errors :6" {
		t.Errorf("expected visible marker and row, got %q", got[2])
	}
}

func TestOutline_Truncates(t *testing.T) {
	forest := outline.Build([]outline.RawEntry{
		{RawLevel: 1, Text: "A very long heading that does not fit"},
	}, outline.Rows(1))
	got := lines(Outline(forest, Options{Display: config.DefaultDisplay(), Width: 20}))
	if w := lipgloss.Width(got[0]); w > 20 {
		t.Errorf("expected width <= 20, got %d (%q)", w, got[0])
	}
	if !strings.HasSuffix(got[0], "…") {
		t.Errorf("expected ellipsis, got %q", got[0])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected short, got %q", got)
	}
	if got := truncate("abcdefgh", 5); got != "abcd…" {
		t.Errorf("expected abcd…, got %q", got)
	}
}

func TestSearch(t *testing.T) {
	results := search.Filter("tmo", sample())
	got := Search(results, Options{Rows: true})
	if got != "Timeouts :7\n" {
		t.Errorf("expected highlighted result line, got %q", got)
	}
}

func TestFoldsAndBreadcrumb(t *testing.T) {
	got := Folds([]fold.Range{{Start: 0, End: 1, Preamble: true}, {Start: 2, End: 4}})
	if got != "1-2 (preamble)\n3-5\n" {
		t.Errorf("unexpected folds output %q", got)
	}
	if got := Breadcrumb([]string{"A", "B"}); got != "A › B" {
		t.Errorf("expected \"A › B\", got %q", got)
	}
	if got := Breadcrumb(nil); got != "(no heading)" {
		t.Errorf("expected placeholder, got %q", got)
	}
}
