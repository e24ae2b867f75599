package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgallion1/docnav/internal/outline"
	"gopkg.in/yaml.v3"
)

// TreeMode controls which children an outline view shows.
type TreeMode string

const (
	TreeExpand   TreeMode = "expand"   // All children shown
	TreeCollapse TreeMode = "collapse" // Only roots shown
	TreeAuto     TreeMode = "auto"     // Children shown along the cursor stack
)

// DisplayState is the process-wide view configuration shared by every
// outline view.
type DisplayState struct {
	Categories  map[string]bool `yaml:"categories" json:"categories"`
	SearchBar   bool            `yaml:"search_bar" json:"search_bar"`
	CategoryBar bool            `yaml:"category_bar" json:"category_bar"`
	TextWrap    bool            `yaml:"text_wrap" json:"text_wrap"`
	PanelOpen   bool            `yaml:"panel_open" json:"panel_open"`
	Markers     bool            `yaml:"markers" json:"markers"`
	Tree        TreeMode        `yaml:"tree" json:"tree"`
}

// DefaultDisplay shows every category with an expanded tree.
func DefaultDisplay() DisplayState {
	cats := make(map[string]bool, len(outline.Categories))
	for _, c := range outline.Categories {
		cats[c] = true
	}
	return DisplayState{
		Categories:  cats,
		SearchBar:   true,
		CategoryBar: false,
		PanelOpen:   true,
		Tree:        TreeExpand,
	}
}

func (s DisplayState) clone() DisplayState {
	c := s
	c.Categories = make(map[string]bool, len(s.Categories))
	for k, v := range s.Categories {
		c.Categories[k] = v
	}
	return c
}

// Shows reports whether nodes of category are displayed. Unknown
// categories are shown.
func (s DisplayState) Shows(category string) bool {
	v, ok := s.Categories[category]
	return !ok || v
}

// ShowsNode reports whether n passes the category filter.
func (s DisplayState) ShowsNode(n *outline.Node) bool {
	return s.Shows(n.Category())
}

// ShowChildren reports whether n's children are displayed in mode s.Tree.
func (s DisplayState) ShowChildren(n *outline.Node) bool {
	switch s.Tree {
	case TreeCollapse:
		return false
	case TreeAuto:
		return n.StackCount > 0
	}
	return true
}

// Display holds the shared DisplayState and notifies observers of
// changes. It is safe for concurrent use.
type Display struct {
	mu     sync.Mutex
	state  DisplayState
	subs   map[int]func(DisplayState)
	nextID int
}

// NewDisplay returns a Display holding state.
func NewDisplay(state DisplayState) *Display {
	if state.Categories == nil {
		state.Categories = DefaultDisplay().Categories
	}
	if state.Tree == "" {
		state.Tree = TreeExpand
	}
	return &Display{state: state.clone(), subs: make(map[int]func(DisplayState))}
}

// Snapshot returns a copy of the current state.
func (d *Display) Snapshot() DisplayState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// Update applies fn to the state and notifies observers with the result.
func (d *Display) Update(fn func(*DisplayState)) DisplayState {
	d.mu.Lock()
	fn(&d.state)
	snap := d.state.clone()
	subs := make([]func(DisplayState), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(snap.clone())
	}
	return snap
}

// Subscribe registers fn to be called after every change. The returned
// function removes the registration.
func (d *Display) Subscribe(fn func(DisplayState)) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// SetCategories sets every named category to value, or flips each one
// when value is nil.
func (d *Display) SetCategories(names []string, value *bool) DisplayState {
	return d.Update(func(s *DisplayState) {
		for _, name := range names {
			if value == nil {
				s.Categories[name] = !s.Shows(name)
			} else {
				s.Categories[name] = *value
			}
		}
	})
}

// LoadDisplayFile reads display preferences from a YAML file. A missing
// file yields the defaults; keys absent from the file keep their defaults.
func LoadDisplayFile(path string) (DisplayState, error) {
	state := DefaultDisplay()
	if path == "" {
		return state, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state, nil
		}
		return state, err
	}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return DefaultDisplay(), fmt.Errorf("parse display file: %w", err)
	}
	switch state.Tree {
	case TreeExpand, TreeCollapse, TreeAuto:
	default:
		return DefaultDisplay(), fmt.Errorf("parse display file: unknown tree mode %q", state.Tree)
	}
	return state, nil
}

// SaveDisplayFile writes display preferences as YAML.
func SaveDisplayFile(path string, state DisplayState) error {
	if path == "" {
		return errors.New("display file path missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
