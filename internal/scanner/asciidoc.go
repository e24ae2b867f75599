package scanner

import (
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
)

var asciidocPattern = regexp2.MustCompile(
	"^(=+|#+)[ \\t]+(.+?)(?:[ \\t]+\\1)?[ \\t]*\\r?$",
	regexp2.Multiline)

// AsciiDoc scans "=" and "#" prefixed section titles with an optional
// matching closing sequence.
type AsciiDoc struct{}

func (a *AsciiDoc) Pattern() *regexp2.Regexp { return asciidocPattern }

func (a *AsciiDoc) BeforeScan() {}

func (a *AsciiDoc) Parse(m *Match) (outline.RawEntry, bool) {
	return outline.RawEntry{
		RawLevel: len(m.Group(1)),
		Text:     strings.TrimSpace(m.Group(2)),
	}, true
}
