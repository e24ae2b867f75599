package scanner

import (
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
)

var bibtexPattern = regexp2.MustCompile(
	"([^%\\n]*)%(\\$+)([*+\\-!_]?)%(.*)|^[ ]*@(\\w*)[ ]*\\{[ ]*([^,\\n]*)",
	regexp2.Multiline|regexp2.IgnoreCase)

// bibtexEntryLevel ranks "@type{key" entries below every marker comment
// level in common use.
const bibtexEntryLevel = 4

// BibTeX scans "%$$%" marker comments, ranked by the number of "$", and
// "@type{key" entries.
type BibTeX struct{}

func (a *BibTeX) Pattern() *regexp2.Regexp { return bibtexPattern }

func (a *BibTeX) BeforeScan() {}

func (a *BibTeX) Parse(m *Match) (outline.RawEntry, bool) {
	if m.Matched(2) {
		return outline.RawEntry{
			RawLevel: len(m.Group(2)),
			Text:     joinText(m.Group(1), strings.TrimRight(m.Group(4), "\r")),
			Tags:     categoryTags(m.Group(3)),
		}, true
	}
	if m.Matched(5) {
		return outline.RawEntry{
			RawLevel: bibtexEntryLevel,
			Text:     strings.TrimSpace(m.Group(5) + ": " + strings.TrimSpace(m.Group(6))),
		}, true
	}
	return outline.RawEntry{}, false
}
