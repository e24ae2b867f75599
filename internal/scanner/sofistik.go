package scanner

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
)

var (
	sofistikPattern = regexp2.MustCompile(
		"^ *(#define [^\\n=]+$|#enddef)"+
			"|^!([-+#$])!(?:chapter|kapitel) (.*)"+
			"|(^(?! *\\$)[^!\\n]*)!(\\$+)!(.*)"+
			"|^ *([+-])?prog +([^\\n]*)"+
			"|^ *!.! +(.*)"+
			"|^\\$ graphics +(\\d+) +\\| +picture +(\\d+) +\\| +layer +(\\d+) +: *(.*)",
		regexp2.Multiline|regexp2.IgnoreCase)

	sofistikDecoration = regexp2.MustCompile("^(?:-+|=+|\\*+) (.+?) (?:-+|=+|\\*+)$", 0)
	sofistikURS        = regexp2.MustCompile("urs:.+", regexp2.IgnoreCase)
	sofistikHead       = regexp2.MustCompile("^ *head +(.+)", 0)
)

const (
	sofistikChapterLevel = 4
	sofistikProgLevel    = 5
	sofistikCommentLevel = 6
	sofistikGraphicLevel = 7
)

// Sofistik scans SOFiSTiK input files: chapters, "$" markers, prog blocks,
// "!x!" comments and graphics references. Text between #define and #enddef
// is skipped unless InBlock is set.
type Sofistik struct {
	InBlock bool

	defines int
}

func (a *Sofistik) Pattern() *regexp2.Regexp { return sofistikPattern }

func (a *Sofistik) BeforeScan() { a.defines = 0 }

func (a *Sofistik) Parse(m *Match) (outline.RawEntry, bool) {
	if m.Matched(1) {
		if !a.InBlock {
			if strings.HasPrefix(strings.ToLower(m.Group(1)), "#d") {
				a.defines++
			} else {
				a.defines--
			}
		}
		return outline.RawEntry{}, false
	}
	if a.defines > 0 {
		return outline.RawEntry{}, false
	}

	switch {
	case m.Matched(5):
		return outline.RawEntry{
			RawLevel: len(m.Group(5)),
			Text:     joinText(m.Group(4), m.Group(6)),
		}, true
	case m.Matched(3):
		return outline.RawEntry{
			RawLevel: sofistikChapterLevel,
			Text:     undecorate(strings.TrimSpace(m.Group(3))),
		}, true
	case m.Matched(8):
		text, _ := sofistikURS.Replace(m.Group(8), "", -1, -1)
		text = strings.TrimSpace(text)
		if hm, _ := sofistikHead.FindStringMatch(m.Line(m.End.Row + 1)); hm != nil {
			text = strings.TrimSpace(text + ": " + strings.TrimSpace(hm.GroupByNumber(1).String()))
		}
		return outline.RawEntry{RawLevel: sofistikProgLevel, Text: text}, true
	case m.Matched(9):
		return outline.RawEntry{
			RawLevel: sofistikCommentLevel,
			Text:     undecorate(strings.TrimSpace(m.Group(9))),
		}, true
	case m.Matched(10):
		return outline.RawEntry{
			RawLevel: sofistikGraphicLevel,
			Text: strings.TrimSpace(fmt.Sprintf("%s-%s-%s: %s",
				m.Group(10), m.Group(11), m.Group(12), strings.TrimSpace(m.Group(13)))),
		}, true
	}
	return outline.RawEntry{}, false
}

// undecorate strips symmetric "--- title ---" style decorations.
func undecorate(s string) string {
	if dm, _ := sofistikDecoration.FindStringMatch(s); dm != nil {
		return dm.GroupByNumber(1).String()
	}
	return s
}
