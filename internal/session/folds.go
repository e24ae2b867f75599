package session

import "github.com/dgallion1/docnav/internal/fold"

// FoldAt folds the section around row, restricted to depth when depth > 0.
func (s *Session) FoldAt(row, depth int) (fold.Range, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	r, ok := fold.At(s.forest, row, depth, s.lastRowLocked())
	if ok {
		s.folds.Fold(r.Start, r.End)
	}
	return r, ok
}

// SectionAt computes the FoldAt range without recording it.
func (s *Session) SectionAt(row, depth int) (fold.Range, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fold.At(s.forest, row, depth, s.lastRowLocked())
}

// FoldAtCursor folds around the top-most cursor.
func (s *Session) FoldAtCursor(depth int) (fold.Range, bool) {
	s.mu.Lock()
	row := s.primaryRowLocked()
	s.mu.Unlock()
	return s.FoldAt(row, depth)
}

// FoldAsTable unfolds everything, then folds every section, or only
// sections tagged tag.
func (s *Session) FoldAsTable(tag string) []fold.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return (&fold.Navigator{Buffer: s.folds}).FoldAsTable(s.forest, tag)
}

// TableRanges computes the fold-as-table ranges without recording them.
func (s *Session) TableRanges(tag string) []fold.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fold.Table(s.forest, tag, s.lastRowLocked())
}

// Toggle unfolds row when folded, otherwise folds the section around it.
// It reports whether the row is folded afterwards.
func (s *Session) Toggle(row int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return (&fold.Navigator{Buffer: s.folds}).Toggle(s.forest, row)
}

// Unfold removes the folds containing row.
func (s *Session) Unfold(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.folds.Unfold(row)
}

// UnfoldAll removes every fold.
func (s *Session) UnfoldAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.folds.UnfoldAll()
}

// Folds returns the recorded folds.
func (s *Session) Folds() []fold.Range { return s.folds.Folds() }

// PrimaryRow returns the row of the top-most cursor, or 0.
func (s *Session) PrimaryRow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primaryRowLocked()
}

func (s *Session) lastRowLocked() int {
	if s.bounds == nil {
		return 0
	}
	return s.bounds.LastRow()
}
