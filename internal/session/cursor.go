package session

import (
	"sort"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/tracker"
	"github.com/google/uuid"
)

// Cursor is a session-owned handle for one host cursor.
type Cursor struct {
	ID string

	s *Session
	t *tracker.Cursor
}

// CursorState is a JSON-safe view of a cursor.
type CursorState struct {
	ID         string   `json:"cursor_id"`
	Row        int      `json:"row"`
	Current    string   `json:"current,omitempty"`
	Breadcrumb []string `json:"breadcrumb"`
}

func (c *Cursor) stateLocked() CursorState {
	st := CursorState{ID: c.ID, Row: c.t.Row(), Breadcrumb: c.t.Breadcrumb()}
	if n := c.t.Current(); n != nil {
		st.Current = n.Text
	}
	return st
}

func sortCursors(cs []CursorState) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Row != cs[j].Row {
			return cs[i].Row < cs[j].Row
		}
		return cs[i].ID < cs[j].ID
	})
}

// AddCursor creates a cursor at row and attaches it to the current forest.
func (s *Session) AddCursor(row int) (*Cursor, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.touchLocked()
	c := &Cursor{ID: uuid.NewString(), s: s, t: tracker.New(row)}
	c.t.Attach(s.forest, row)
	s.cursors[c.ID] = c
	notify := s.updateLocked(false)
	s.mu.Unlock()
	notify()
	return c, nil
}

// Cursor returns the cursor with id.
func (s *Session) Cursor(id string) (*Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	c, ok := s.cursors[id]
	if !ok {
		return nil, ErrNoCursor
	}
	return c, nil
}

// Cursors returns the state of every cursor ordered by row.
func (s *Session) Cursors() []CursorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CursorState, 0, len(s.cursors))
	for _, c := range s.cursors {
		out = append(out, c.stateLocked())
	}
	sortCursors(out)
	return out
}

// primaryRowLocked returns the row of the top-most cursor, or 0.
func (s *Session) primaryRowLocked() int {
	row, found := 0, false
	for _, c := range s.cursors {
		if !found || c.t.Row() < row {
			row, found = c.t.Row(), true
		}
	}
	return row
}

// Move reports a cursor move. Moves caused by edits only record the row;
// the next rebuild replays the cursor against the new outline.
func (c *Cursor) Move(row int, textChanged bool) error {
	s := c.s
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, ok := s.cursors[c.ID]; !ok {
		s.mu.Unlock()
		return ErrNoCursor
	}
	s.touchLocked()
	notify := func() {}
	if c.t.OnMove(s.forest, row, textChanged) {
		notify = s.updateLocked(false)
	}
	s.mu.Unlock()
	notify()
	return nil
}

// Remove detaches the cursor and forgets it. Removing twice is a no-op.
func (c *Cursor) Remove() {
	s := c.s
	s.mu.Lock()
	if _, ok := s.cursors[c.ID]; !ok || s.closed {
		s.mu.Unlock()
		return
	}
	s.touchLocked()
	c.t.Detach()
	delete(s.cursors, c.ID)
	notify := s.updateLocked(false)
	s.mu.Unlock()
	notify()
}

// State returns the cursor's row and containing path.
func (c *Cursor) State() CursorState {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.stateLocked()
}

// Navigate moves the cursor to the next (dir > 0) or previous (dir < 0)
// node shown under the display's category filter, wrapping around. It
// returns the node reached, or nil when nothing is navigable.
func (c *Cursor) Navigate(dir int, display config.DisplayState) (*outline.Node, error) {
	s := c.s
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if _, ok := s.cursors[c.ID]; !ok {
		s.mu.Unlock()
		return nil, ErrNoCursor
	}
	s.touchLocked()
	n := outline.Step(s.forest, c.t.Row(), dir, display.ShowsNode)
	if n == nil {
		s.mu.Unlock()
		return nil, nil
	}
	target := *n
	target.Children, target.Parent = nil, nil
	notify := func() {}
	if c.t.OnMove(s.forest, n.Start.Row, false) {
		notify = s.updateLocked(false)
	}
	s.mu.Unlock()
	notify()
	return &target, nil
}
