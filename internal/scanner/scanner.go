package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
)

var (
	// ErrUnsupported is returned when no scanner is registered for a format.
	ErrUnsupported = errors.New("unsupported format")
	// ErrNonMonotonic is returned when an adapter emits entries out of order.
	ErrNonMonotonic = errors.New("entries out of document order")
)

// Result is the output of one scan: the entries in document order and the
// row extent of the scanned document.
type Result struct {
	Entries []outline.RawEntry
	Bounds  outline.Bounds
}

// Scanner converts raw document bytes into outline entries.
type Scanner interface {
	Scan(ctx context.Context, src []byte) (Result, error)
}

// Adapter is the per-format plug-in for pattern-driven scanning. Pattern is
// matched repeatedly over the whole text; Parse maps each match to an entry
// or reports false for matches that only toggle adapter state.
type Adapter interface {
	Pattern() *regexp2.Regexp
	BeforeScan()
	Parse(m *Match) (outline.RawEntry, bool)
}

// Match is one pattern match handed to an adapter.
type Match struct {
	m     *regexp2.Match
	lines *outline.Lines

	Start outline.Position
	End   outline.Position
}

// Text returns the whole matched text.
func (m *Match) Text() string { return m.m.String() }

// Group returns the text of capture group i, or "" if it did not take part
// in the match.
func (m *Match) Group(i int) string {
	g := m.m.GroupByNumber(i)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

// Matched reports whether capture group i took part in the match.
func (m *Match) Matched(i int) bool {
	g := m.m.GroupByNumber(i)
	return g != nil && len(g.Captures) > 0
}

// Line returns the text of a document row.
func (m *Match) Line(row int) string { return m.lines.Line(row) }

// LineCount returns the number of rows in the scanned document.
func (m *Match) LineCount() int { return m.lines.Count() }

// Run drives adapter a over text and returns its entries in document order.
func Run(ctx context.Context, a Adapter, text string) (Result, error) {
	lines := outline.NewLines(text)
	res := Result{Bounds: lines}

	a.BeforeScan()
	re := a.Pattern()
	rm, err := re.FindStringMatch(text)
	if err != nil {
		return res, fmt.Errorf("match: %w", err)
	}

	var last outline.Position
	for rm != nil {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		m := &Match{
			m:     rm,
			lines: lines,
			Start: lines.AtRune(rm.Index),
			End:   lines.AtRune(rm.Index + rm.Length),
		}
		if e, ok := a.Parse(m); ok {
			if e.Start == (outline.Position{}) && e.End == (outline.Position{}) {
				e.Start, e.End = m.Start, m.End
			}
			if e.Start.Before(last) {
				return res, fmt.Errorf("%w: %q at %d:%d", ErrNonMonotonic, e.Text, e.Start.Row, e.Start.Column)
			}
			last = e.Start
			res.Entries = append(res.Entries, e)
		}

		rm, err = re.FindNextMatch(rm)
		if err != nil {
			return res, fmt.Errorf("match: %w", err)
		}
	}
	return res, nil
}

// patternScanner adapts an Adapter to the Scanner interface.
type patternScanner struct {
	adapter Adapter
}

func (s *patternScanner) Scan(ctx context.Context, src []byte) (Result, error) {
	return Run(ctx, s.adapter, string(src))
}

// categoryTags maps the single-character category markers used by several
// formats to tags.
func categoryTags(marker string) []string {
	switch marker {
	case "*":
		return []string{outline.TagInfo}
	case "+":
		return []string{outline.TagSuccess}
	case "-":
		return []string{outline.TagWarning}
	case "!":
		return []string{outline.TagError}
	case "_":
		return []string{outline.TagSeparator}
	}
	return nil
}

// joinText joins non-empty trimmed parts with a single space.
func joinText(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
