package memory

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionLocksSerializeSameSession(t *testing.T) {
	locks := NewSessionLocks()
	sessionId := uuid.New()

	var (
		wg      sync.WaitGroup
		holders int
		maxSeen int
		mu      sync.Mutex
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock(sessionId)
			defer locks.Unlock(sessionId)

			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			mu.Lock()
			holders--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "turns of one session must run one at a time")
}

func TestSessionLocksReleaseEntries(t *testing.T) {
	locks := NewSessionLocks()

	for i := 0; i < 3; i++ {
		sessionId := uuid.New()
		locks.Lock(sessionId)
		locks.Unlock(sessionId)
	}

	locks.mu.Lock()
	remaining := len(locks.locks)
	locks.mu.Unlock()

	assert.Equal(t, 0, remaining, "idle sessions must not keep lock entries alive")
}
