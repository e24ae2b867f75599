// Package commands binds named commands to session and display operations.
// Every host (HTTP API, LSP, CLI) runs commands through one Registry.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/search"
	"github.com/dgallion1/docnav/internal/session"
)

var (
	// ErrUnknown is returned for names that are not registered.
	ErrUnknown = errors.New("unknown command")
	// ErrNoSession is returned when a document command runs without a session.
	ErrNoSession = errors.New("command needs a session")
	// ErrDuplicate is returned when registering a name twice.
	ErrDuplicate = errors.New("command already registered")
)

// Env is what a command acts on. Session may be nil for commands that only
// touch the display state.
type Env struct {
	Display  *config.Display
	Session  *session.Session
	CursorID string // Acting cursor; empty means the top-most one
	Query    string // Search text for the search command
}

// Result reports the effect of a command. Only the fields the command
// touched are set.
type Result struct {
	Display *config.DisplayState `json:"display,omitempty"`
	Node    *outline.Node        `json:"node,omitempty"`
	Folds   []fold.Range         `json:"folds,omitempty"`
	Folded  *bool                `json:"folded,omitempty"`
	Query   *string              `json:"query,omitempty"` // Active search query after search or clear
	Search  []search.Result      `json:"search,omitempty"`
	Markers []outline.Marker     `json:"markers,omitempty"`
}

// Handler runs one command.
type Handler func(ctx context.Context, env Env) (Result, error)

// Command is a registered command.
type Command struct {
	Name        string
	Description string
	Document    bool // Needs a session
	Run         Handler
}

// Registry holds the available commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Default returns a registry holding every built-in command.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range builtins() {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds c. Names are unique.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[c.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.Name)
	}
	r.commands[c.Name] = c
	return nil
}

// Get returns the command called name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// List returns the registered commands sorted by name.
func (r *Registry) List() []Command {
	r.mu.RLock()
	out := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run executes the command called name against env.
func (r *Registry) Run(ctx context.Context, name string, env Env) (Result, error) {
	c, ok := r.Get(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	if c.Document && env.Session == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoSession, name)
	}
	if env.Display == nil {
		env.Display = config.NewDisplay(config.DefaultDisplay())
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return c.Run(ctx, env)
}
