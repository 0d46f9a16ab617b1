package memory

import (
	"sync"

	"github.com/google/uuid"
)

// SessionLocks serializes turns per session. Concurrent requests for
// the same session run one at a time; different sessions do not block
// each other. Entries are reference counted and removed when the last
// holder releases, so the table stays bounded by in-flight turns.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[uuid.UUID]*sessionLock),
	}
}

func (s *SessionLocks) Lock(sessionId uuid.UUID) {
	s.mu.Lock()
	l, ok := s.locks[sessionId]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionId] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
}

func (s *SessionLocks) Unlock(sessionId uuid.UUID) {
	s.mu.Lock()
	l, ok := s.locks[sessionId]
	if ok {
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionId)
		}
	}
	s.mu.Unlock()

	if ok {
		l.mu.Unlock()
	}
}
