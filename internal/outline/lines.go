package outline

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Bounds describes the row extent of a document for tree construction.
type Bounds interface {
	LastRow() int
	LineLength(row int) int
}

// Lines indexes line starts of a text so match offsets can be turned into
// row/column positions.
type Lines struct {
	text       string
	byteStarts []int
	runeStarts []int
	runeLens   []int
}

// NewLines indexes text. A trailing newline opens a final empty row.
func NewLines(text string) *Lines {
	l := &Lines{text: text}
	byteOff, runeOff := 0, 0
	for {
		l.byteStarts = append(l.byteStarts, byteOff)
		l.runeStarts = append(l.runeStarts, runeOff)
		i := strings.IndexByte(text[byteOff:], '\n')
		if i < 0 {
			line := text[byteOff:]
			l.runeLens = append(l.runeLens, utf8.RuneCountInString(strings.TrimSuffix(line, "\r")))
			break
		}
		line := text[byteOff : byteOff+i]
		n := utf8.RuneCountInString(line)
		l.runeLens = append(l.runeLens, utf8.RuneCountInString(strings.TrimSuffix(line, "\r")))
		byteOff += i + 1
		runeOff += n + 1
	}
	return l
}

// Count returns the number of rows.
func (l *Lines) Count() int { return len(l.byteStarts) }

// LastRow returns the index of the last row.
func (l *Lines) LastRow() int { return len(l.byteStarts) - 1 }

// LineLength returns the rune length of row, without the line terminator.
func (l *Lines) LineLength(row int) int {
	if row < 0 || row >= len(l.runeLens) {
		return 0
	}
	return l.runeLens[row]
}

// Line returns the text of row without its terminator.
func (l *Lines) Line(row int) string {
	if row < 0 || row >= len(l.byteStarts) {
		return ""
	}
	start := l.byteStarts[row]
	end := len(l.text)
	if row+1 < len(l.byteStarts) {
		end = l.byteStarts[row+1] - 1
	}
	return strings.TrimSuffix(l.text[start:end], "\r")
}

// AtRune converts a rune offset into a position.
func (l *Lines) AtRune(off int) Position {
	row := sort.Search(len(l.runeStarts), func(i int) bool { return l.runeStarts[i] > off }) - 1
	if row < 0 {
		row = 0
	}
	return Position{Row: row, Column: off - l.runeStarts[row]}
}

// AtByte converts a byte offset into a position.
func (l *Lines) AtByte(off int) Position {
	if off > len(l.text) {
		off = len(l.text)
	}
	row := sort.Search(len(l.byteStarts), func(i int) bool { return l.byteStarts[i] > off }) - 1
	if row < 0 {
		row = 0
	}
	return Position{Row: row, Column: utf8.RuneCountInString(l.text[l.byteStarts[row]:off])}
}

// Rows is a synthetic document of n rows with no text, used by sources
// whose entries are addressed by ordinal rather than by buffer row.
type Rows int

func (r Rows) LastRow() int {
	if r <= 0 {
		return 0
	}
	return int(r) - 1
}

func (r Rows) LineLength(int) int { return 0 }
