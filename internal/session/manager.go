package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Manager is a thread-safe registry of open sessions with idle eviction.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	opts     Options
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(opts Options, ttl time.Duration, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if opts.Stats == nil {
		opts.Stats = NewRebuildStats(time.Hour)
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		opts:     opts,
		log:      log,
	}
}

// Options returns the options new sessions are opened with.
func (m *Manager) Options() Options { return m.opts }

// Stats returns the rebuild latencies of all sessions opened by m.
func (m *Manager) Stats() StatsSnapshot { return m.opts.Stats.Snapshot() }

// Start launches the idle-session cleanup loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	interval := m.ttl / 4
	if interval <= 0 || interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := m.Cleanup(); n > 0 {
					m.log.Info("evicted idle sessions", "count", n)
				}
			}
		}
	}()
}

// Stop ends the cleanup loop and closes every session.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// Open creates a session for text and registers it.
func (m *Manager) Open(filename, format string, text []byte) (*Session, error) {
	s, err := New(filename, format, text, m.opts, m.log)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	s.log.Info("session opened", "filename", filename, "bytes", len(text))
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close closes and forgets the session with id.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// List returns the open sessions ordered by filename.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.Unlock()
	names := make(map[*Session]string, len(out))
	for _, s := range out {
		names[s] = s.Filename()
	}
	sort.Slice(out, func(i, j int) bool {
		if names[out[i]] != names[out[j]] {
			return names[out[i]] < names[out[j]]
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Cleanup closes sessions idle for longer than the TTL and returns how
// many were closed.
func (m *Manager) Cleanup() int {
	now := time.Now()
	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt()) > m.ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}
