package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRetention is how long an ended session stays reviewable.
const DefaultRetention = time.Hour

type attemptKey struct {
	userID string
	mockID string
}

// Manager is the in-process registry of sessions.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	latest    map[attemptKey]string
	retention time.Duration
	log       zerolog.Logger
}

// NewManager creates a Manager. A non-positive retention means DefaultRetention.
func NewManager(retention time.Duration, log zerolog.Logger) *Manager {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		latest:    make(map[attemptKey]string),
		retention: retention,
		log:       log.With().Str("component", "session_manager").Logger(),
	}
}

// Add registers s. A still-Active earlier attempt of the same user and mock
// is abandoned and removed; it is returned when that happens.
func (m *Manager) Add(s *Session) *Session {
	key := attemptKey{userID: s.UserID(), mockID: s.MockID()}

	m.mu.Lock()
	var replaced *Session
	if prevID, ok := m.latest[key]; ok {
		if prev, ok := m.sessions[prevID]; ok && prev.Status() == StatusActive {
			replaced = prev
			delete(m.sessions, prevID)
		}
	}
	m.sessions[s.ID()] = s
	m.latest[key] = s.ID()
	m.mu.Unlock()

	if replaced != nil && replaced.Abandon() {
		m.log.Info().
			Str("session_id", replaced.ID()).
			Str("replaced_by", s.ID()).
			Msg("Earlier attempt abandoned on retake")
	}
	return replaced
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove unregisters a session and returns it.
func (m *Manager) Remove(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	delete(m.sessions, id)
	key := attemptKey{userID: s.UserID(), mockID: s.MockID()}
	if m.latest[key] == id {
		delete(m.latest, key)
	}
	return s, true
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions that ended more than the retention window before now.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		ended := s.EndedAt()
		if !ended.IsZero() && now.Sub(ended) > m.retention {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.Remove(id)
	}
	if len(expired) > 0 {
		m.log.Debug().Int("count", len(expired)).Msg("Swept ended sessions")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then abandons every session
// that is still Active.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	m.log.Info().Dur("retention", m.retention).Msg("Session sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Shutdown abandons every Active session so no countdown outlives the process.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	active := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		active = append(active, s)
	}
	m.mu.RUnlock()

	n := 0
	for _, s := range active {
		if s.Abandon() {
			n++
		}
	}
	m.log.Info().Int("abandoned", n).Msg("Session manager stopped")
}
