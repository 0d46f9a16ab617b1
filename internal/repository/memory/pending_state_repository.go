package memory

import (
	"time"

	"customer-inquiry-be/pkg/chat/state"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PendingStateRepository caches pending state per session so the hot
// path avoids a database round trip on every turn. The database column
// remains the source of truth; the cache is refilled on miss.
type PendingStateRepository struct {
	cache *cache.Cache
}

func NewPendingStateRepository() *PendingStateRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &PendingStateRepository{
		cache: c,
	}
}

func (r *PendingStateRepository) Save(sessionId uuid.UUID, pending *state.PendingState) {
	r.cache.Set(sessionId.String(), pending, cache.DefaultExpiration)
}

func (r *PendingStateRepository) Get(sessionId uuid.UUID) (*state.PendingState, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(*state.PendingState), true
	}
	return nil, false
}

func (r *PendingStateRepository) Delete(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}
