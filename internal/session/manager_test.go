package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_OpenGetClose(t *testing.T) {
	m := NewManager(opts(), time.Hour, nil)
	defer m.Stop()

	s, err := m.Open("b.md", "markdown", []byte(doc))
	require.NoError(t, err)
	s2, err := m.Open("a.md", "markdown", []byte("# x\n"))
	require.NoError(t, err)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	list := m.List()
	require.Len(t, list, 2)
	require.Equal(t, s2.ID, list[0].ID)

	require.NoError(t, m.Close(s.ID))
	_, err = m.Get(s.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, m.Close(s.ID), ErrNotFound)
	require.ErrorIs(t, s.Refresh(), ErrClosed)
}

func TestManager_CleanupEvictsIdle(t *testing.T) {
	m := NewManager(opts(), 50*time.Millisecond, nil)
	defer m.Stop()

	idle, err := m.Open("idle.md", "markdown", []byte(doc))
	require.NoError(t, err)
	time.Sleep(80 * time.Millisecond)
	active, err := m.Open("active.md", "markdown", []byte(doc))
	require.NoError(t, err)

	require.Equal(t, 1, m.Cleanup())
	_, err = m.Get(idle.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(active.ID)
	require.NoError(t, err)
}

func TestManager_StopClosesSessions(t *testing.T) {
	m := NewManager(opts(), time.Hour, nil)
	m.Start(context.Background())
	s, err := m.Open("a.md", "markdown", []byte(doc))
	require.NoError(t, err)
	m.Stop()
	require.ErrorIs(t, s.Refresh(), ErrClosed)
	require.Empty(t, m.List())
}

func TestManager_StatsRecordsRebuilds(t *testing.T) {
	m := NewManager(opts(), time.Hour, nil)
	defer m.Stop()

	s, err := m.Open("a.md", "markdown", []byte(doc))
	require.NoError(t, err)
	require.NoError(t, s.Sync(context.Background()))

	snap := m.Stats()
	require.GreaterOrEqual(t, snap.Count, 1)
	require.Zero(t, snap.Failed)
}
