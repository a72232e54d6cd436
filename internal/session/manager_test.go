package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, id, userID, mockID string) *Session {
	t.Helper()
	s, err := New(id, userID, draw(mockID, 2), Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Abandon() })
	return s
}

func TestManager_RetakeAbandonsActiveAttempt(t *testing.T) {
	m := NewManager(time.Minute, zerolog.Nop())
	first := start(t, "a", "u1", "s_gk_hg-mock-1")
	second := start(t, "b", "u1", "s_gk_hg-mock-1")

	assert.Nil(t, m.Add(first))
	replaced := m.Add(second)

	require.NotNil(t, replaced)
	assert.Equal(t, "a", replaced.ID())
	assert.Equal(t, StatusAbandoned, first.Status())
	_, ok := m.Get("a")
	assert.False(t, ok)
	_, ok = m.Get("b")
	assert.True(t, ok)
}

func TestManager_RetakeKeepsFinishedAttempt(t *testing.T) {
	m := NewManager(time.Minute, zerolog.Nop())
	first := start(t, "a", "u1", "s_gk_hg-mock-1")
	m.Add(first)
	_, err := first.Finish()
	require.NoError(t, err)

	assert.Nil(t, m.Add(start(t, "b", "u1", "s_gk_hg-mock-1")))
	_, ok := m.Get("a")
	assert.True(t, ok, "finished attempt stays reviewable")
}

func TestManager_DifferentUsersDoNotCollide(t *testing.T) {
	m := NewManager(time.Minute, zerolog.Nop())
	m.Add(start(t, "a", "u1", "s_gk_hg-mock-1"))

	assert.Nil(t, m.Add(start(t, "b", "u2", "s_gk_hg-mock-1")))
	assert.Equal(t, 2, m.Len())
}

func TestManager_SweepRemovesExpired(t *testing.T) {
	m := NewManager(time.Minute, zerolog.Nop())
	done := start(t, "a", "u1", "s_gk_hg-mock-1")
	active := start(t, "b", "u1", "s_gk_hg-mock-2")
	m.Add(done)
	m.Add(active)
	_, err := done.Finish()
	require.NoError(t, err)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(2*time.Minute)))

	_, ok := m.Get("a")
	assert.False(t, ok)
	_, ok = m.Get("b")
	assert.True(t, ok, "active sessions are never swept")
}

func TestManager_RunAbandonsOnShutdown(t *testing.T) {
	m := NewManager(time.Minute, zerolog.Nop())
	s := start(t, "a", "u1", "s_gk_hg-mock-1")
	m.Add(s)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		m.Run(ctx, 10*time.Millisecond)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
	assert.Equal(t, StatusAbandoned, s.Status())
}
