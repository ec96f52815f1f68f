package study

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrSessionNotFound = errors.New("study session not found")

type (
	entry struct {
		userID  uint64
		session *Session
	}

	// Manager holds live study sessions in memory, keyed by an opaque id
	// and scoped to the owning user. Nothing is persisted; sessions die
	// with the process or an explicit End.
	Manager struct {
		mu       sync.Mutex
		sessions map[string]*entry
		rng      *rand.Rand
	}
)

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *Manager) Start(userID uint64, cards []Card) (string, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	s := NewSession(cards)
	m.sessions[id] = &entry{userID: userID, session: s}
	return id, s
}

// Do runs fn against the session under the manager lock. A session owned by
// another user is reported as missing, same as one that does not exist.
func (m *Manager) Do(userID uint64, id string, fn func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || e.userID != userID {
		return ErrSessionNotFound
	}
	fn(e.session)
	return nil
}

// Shuffle is Do plus access to the manager's rand source.
func (m *Manager) Shuffle(userID uint64, id string) error {
	return m.Do(userID, id, func(s *Session) {
		s.Shuffle(m.rng)
	})
}

func (m *Manager) End(userID uint64, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || e.userID != userID {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}
