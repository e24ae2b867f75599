// Package search filters an outline with a diacritic-insensitive fuzzy
// query.
package search

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Span is a half-open byte range of a node's original text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Result is one matching node, copied without children.
type Result struct {
	Node  *outline.Node `json:"node"`
	Score int           `json:"score"`
	Row   int           `json:"row"`
	Spans []Span        `json:"spans"`
}

// folded is a node text with diacritics removed, plus the original byte
// range behind every byte of the folded form.
type folded struct {
	text  string
	start []int
	end   []int
}

func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func fold(t transform.Transformer, s string) folded {
	var f folded
	buf := make([]byte, 0, len(s))
	for i, r := range s {
		_, size := utf8.DecodeRuneInString(s[i:])
		out, _, err := transform.String(t, string(r))
		if err != nil {
			out = string(r)
		}
		for range len(out) {
			f.start = append(f.start, i)
			f.end = append(f.end, i+size)
		}
		buf = append(buf, out...)
	}
	f.text = string(buf)
	return f
}

// Clean removes diacritics from s.
func Clean(s string) string {
	return fold(newFolder(), s).text
}

type source []folded

func (s source) String(i int) string { return s[i].text }
func (s source) Len() int            { return len(s) }

// Filter returns the nodes whose text fuzzy-matches query, best first.
// Nodes with equal scores keep document order. An empty query returns nil,
// meaning no restriction.
func Filter(query string, forest []*outline.Node) []Result {
	if query == "" {
		return nil
	}
	t := newFolder()
	q := fold(t, query).text

	nodes := outline.Flatten(forest)
	src := make(source, len(nodes))
	for i, n := range nodes {
		src[i] = fold(t, n.Text)
	}

	matches := fuzzy.FindFromNoSort(q, src)
	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		n := nodes[m.Index]
		c := *n
		c.Children = []*outline.Node{}
		c.Parent = nil
		c.Tags = append([]string(nil), n.Tags...)
		out = append(out, Result{
			Node:  &c,
			Score: m.Score,
			Row:   n.Start.Row,
			Spans: spans(src[m.Index], m.MatchedIndexes),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// spans maps matched byte indexes of the folded text back to merged byte
// ranges of the original text.
func spans(f folded, idx []int) []Span {
	var out []Span
	for _, i := range idx {
		if i < 0 || i >= len(f.start) {
			continue
		}
		s := Span{Start: f.start[i], End: f.end[i]}
		if k := len(out); k > 0 && out[k-1].End >= s.Start {
			if s.End > out[k-1].End {
				out[k-1].End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// Segment is a run of text that is either highlighted or not.
type Segment struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// Segments splits text into alternating unmatched and matched runs.
func Segments(text string, spans []Span) []Segment {
	var out []Segment
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(text) {
			continue
		}
		if s.Start > pos {
			out = append(out, Segment{Text: text[pos:s.Start]})
		}
		out = append(out, Segment{Text: text[s.Start:s.End], Matched: true})
		pos = s.End
	}
	if pos < len(text) {
		out = append(out, Segment{Text: text[pos:]})
	}
	return out
}
