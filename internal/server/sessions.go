package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"lifequest/internal/auth"
	"lifequest/internal/engine"
)

// sessionEntry is one browser session: its own engine state and login gate.
type sessionEntry struct {
	id      string
	session *engine.Session
	gate    *auth.Gate

	mu       sync.Mutex
	lastSeen time.Time
}

func (e *sessionEntry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *sessionEntry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeen
}

// SessionFactory builds the state and gate for a new session.
type SessionFactory func() (*engine.Session, *auth.Gate)

// SessionManager keeps isolated sessions keyed by an opaque id.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	factory SessionFactory
	now     func() time.Time
	onCount func(int)
	onEvict func(id string)
}

func NewSessionManager(factory SessionFactory) *SessionManager {
	return &SessionManager{
		sessions: map[string]*sessionEntry{},
		factory:  factory,
		now:      time.Now,
		onCount:  func(int) {},
		onEvict:  func(string) {},
	}
}

func (m *SessionManager) Create() *sessionEntry {
	sess, gate := m.factory()
	e := &sessionEntry{
		id:       uuid.NewString(),
		session:  sess,
		gate:     gate,
		lastSeen: m.now(),
	}
	m.mu.Lock()
	m.sessions[e.id] = e
	n := len(m.sessions)
	m.mu.Unlock()
	m.onCount(n)
	return e
}

// Get looks up a session and marks it as seen.
func (m *SessionManager) Get(id string) (*sessionEntry, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		e.touch(m.now())
	}
	return e, ok
}

// Has reports whether id is a live session without touching it.
func (m *SessionManager) Has(id string) bool {
	m.mu.RLock()
	_, ok := m.sessions[id]
	m.mu.RUnlock()
	return ok
}

func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	m.onCount(n)
	m.onEvict(id)
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle longer than ttl and runs the daily rollover check
// on the rest. A ttl of zero disables eviction.
func (m *SessionManager) Sweep(ttl time.Duration) (rolledOver, evicted int) {
	now := m.now()

	m.mu.Lock()
	var live []*sessionEntry
	var gone []string
	for id, e := range m.sessions {
		if ttl > 0 && now.Sub(e.idleSince()) > ttl {
			delete(m.sessions, id)
			gone = append(gone, id)
			continue
		}
		live = append(live, e)
	}
	n := len(m.sessions)
	m.mu.Unlock()
	m.onCount(n)
	for _, id := range gone {
		m.onEvict(id)
	}
	evicted = len(gone)

	for _, e := range live {
		if e.session.CheckDailyRollover() {
			rolledOver++
		}
	}
	return rolledOver, evicted
}
