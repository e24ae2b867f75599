package fold

import (
	"sort"
	"sync"
)

// Memory is a Buffer that only records fold state. Hosts without a real
// editor buffer (the HTTP API, the CLI) use it to keep per-session folds.
type Memory struct {
	mu    sync.Mutex
	lines int
	folds []Range
}

// NewMemory returns an unfolded buffer of lines rows.
func NewMemory(lines int) *Memory { return &Memory{lines: lines} }

// SetLineCount updates the row count after the document changed. Folds
// reaching past the new end are dropped.
func (m *Memory) SetLineCount(lines int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = lines
	kept := m.folds[:0]
	for _, f := range m.folds {
		if f.End < lines {
			kept = append(kept, f)
		}
	}
	m.folds = kept
}

func (m *Memory) LineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lines
}

func (m *Memory) Fold(start, end int) {
	m.add(Range{Start: start, End: end})
}

func (m *Memory) FoldPreamble(end int) {
	m.add(Range{Start: 0, End: end, Preamble: true})
}

func (m *Memory) add(r Range) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.folds {
		if f.Start == r.Start && f.End == r.End {
			return
		}
	}
	m.folds = append(m.folds, r)
	sort.SliceStable(m.folds, func(i, j int) bool { return m.folds[i].Start < m.folds[j].Start })
}

// Unfold removes every fold containing row.
func (m *Memory) Unfold(row int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.folds[:0]
	for _, f := range m.folds {
		if row < f.Start || row > f.End {
			kept = append(kept, f)
		}
	}
	m.folds = kept
}

func (m *Memory) UnfoldAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folds = nil
}

func (m *Memory) IsFolded(row int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.folds {
		if row >= f.Start && row <= f.End {
			return true
		}
	}
	return false
}

// Folds returns a copy of the current folds ordered by start row.
func (m *Memory) Folds() []Range {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Range(nil), m.folds...)
}
