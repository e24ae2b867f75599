package scanner

import (
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dlclark/regexp2"
)

var tasklistPattern = regexp2.MustCompile(
	"(?:^(#+) +(.+?) *\\r?$|^ *([^▷☐✔✘• \\r\\n].*?) *: *\\r?$)",
	regexp2.Multiline)

// projectLevel ranks "project:" lines below markdown-style headers.
const projectLevel = 5

// Tasklist scans "#" headers and, when UseHeaders is set, "project:" lines
// of task lists.
type Tasklist struct {
	UseHeaders bool
}

func (a *Tasklist) Pattern() *regexp2.Regexp { return tasklistPattern }

func (a *Tasklist) BeforeScan() {}

func (a *Tasklist) Parse(m *Match) (outline.RawEntry, bool) {
	if m.Matched(1) {
		return outline.RawEntry{
			RawLevel: len(m.Group(1)),
			Text:     strings.TrimSpace(m.Group(2)),
		}, true
	}
	if a.UseHeaders && m.Matched(3) {
		return outline.RawEntry{
			RawLevel: projectLevel,
			Text:     strings.TrimSpace(m.Group(3)),
		}, true
	}
	return outline.RawEntry{}, false
}
