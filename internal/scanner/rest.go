package scanner

import (
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
)

var restPattern = regexp2.MustCompile(
	"^(.+)\\r?\\n([!-/:-@\\[-`{-~])\\2+\\r?$",
	regexp2.Multiline|regexp2.IgnoreCase)

// ReST scans reStructuredText section titles. Underline characters are
// ranked in the order they first appear in the document.
type ReST struct {
	levels map[string]int
}

func (a *ReST) Pattern() *regexp2.Regexp { return restPattern }

func (a *ReST) BeforeScan() { a.levels = make(map[string]int) }

func (a *ReST) Parse(m *Match) (outline.RawEntry, bool) {
	c := m.Group(2)
	level, ok := a.levels[c]
	if !ok {
		level = len(a.levels) + 1
		a.levels[c] = level
	}
	return outline.RawEntry{
		RawLevel: level,
		Text:     strings.TrimSpace(m.Group(1)),
	}, true
}
