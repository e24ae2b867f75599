package scanner

import (
	"context"
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdownPattern = regexp2.MustCompile(
	"^ {0,3}(`{3,})|^ {0,3}(~{3,})|^ {0,3}(#+)[ \\t]+(.+?)(?:[ \\t]+#+)?[ \\t]*\\r?$",
	regexp2.Multiline)

// Markdown scans ATX headings. Lines inside ``` or ~~~ fences are ignored;
// the two fence kinds toggle independently.
type Markdown struct {
	insideBacktick bool
	insideTilde    bool
}

func (a *Markdown) Pattern() *regexp2.Regexp { return markdownPattern }

func (a *Markdown) BeforeScan() {
	a.insideBacktick = false
	a.insideTilde = false
}

func (a *Markdown) Parse(m *Match) (outline.RawEntry, bool) {
	if m.Matched(1) {
		a.insideBacktick = !a.insideBacktick
		return outline.RawEntry{}, false
	}
	if m.Matched(2) {
		a.insideTilde = !a.insideTilde
		return outline.RawEntry{}, false
	}
	if a.insideBacktick || a.insideTilde {
		return outline.RawEntry{}, false
	}
	return outline.RawEntry{
		RawLevel: len(m.Group(3)),
		Text:     strings.TrimSpace(m.Group(4)),
	}, true
}

// CommonMark scans headings from a full goldmark parse, so setext headings
// and fenced code are handled by the CommonMark grammar itself.
type CommonMark struct{}

func (s *CommonMark) Scan(ctx context.Context, src []byte) (Result, error) {
	lines := outline.NewLines(string(src))
	res := Result{Bounds: lines}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		last := h.Lines().At(h.Lines().Len() - 1)
		start := lines.AtByte(seg.Start)
		start.Column = 0
		res.Entries = append(res.Entries, outline.RawEntry{
			RawLevel: h.Level,
			Text:     strings.TrimSpace(headingText(h, src)),
			Start:    start,
			End:      lines.AtByte(last.Stop),
		})
	}
	return res, nil
}

// headingText collects the inline text of a heading.
func headingText(n ast.Node, src []byte) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(headingText(c, src))
		}
	}
	return buf.String()
}
