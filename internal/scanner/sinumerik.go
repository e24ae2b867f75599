package scanner

import (
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
)

var sinumerikPattern = regexp2.MustCompile(
	"^;{2}([*+\\-!]?) (.+?)\\r?$",
	regexp2.Multiline)

// Sinumerik scans ";;" comments of NC programs. An optional marker after
// the semicolons sets the category.
type Sinumerik struct{}

func (a *Sinumerik) Pattern() *regexp2.Regexp { return sinumerikPattern }

func (a *Sinumerik) BeforeScan() {}

func (a *Sinumerik) Parse(m *Match) (outline.RawEntry, bool) {
	return outline.RawEntry{
		RawLevel: 1,
		Text:     strings.TrimSpace(m.Group(2)),
		Tags:     categoryTags(m.Group(1)),
	}, true
}
