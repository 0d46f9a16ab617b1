package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/serverutils"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory ConversationStore. It backs unit tests and
// local development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entity.ChatSession
	turns    map[uuid.UUID][]entity.ChatMessage
	pending  map[uuid.UUID]*PendingState
}

var _ ConversationStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		turns:    make(map[uuid.UUID][]entity.ChatMessage),
		pending:  make(map[uuid.UUID]*PendingState),
	}
}

func (s *MemoryStore) CreateSession(ctx context.Context, userId uuid.UUID) (*entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "",
		CreatedAt: time.Now(),
	}
	s.sessions[session.Id] = session
	return session, nil
}

func (s *MemoryStore) GetSession(ctx context.Context, sessionId, userId uuid.UUID) (*entity.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionId]
	if !ok || session.UserId != userId {
		return nil, serverutils.NewNotFoundError("chat session not found")
	}
	copied := *session
	return &copied, nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, sessionId uuid.UUID, role, text string) (*entity.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          text,
		Role:          role,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	}
	s.turns[sessionId] = append(s.turns[sessionId], msg)
	return &msg, nil
}

func (s *MemoryStore) GetRecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]entity.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionId]
	sorted := make([]entity.ChatMessage, len(turns))
	copy(sorted, turns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	return sorted, nil
}

func (s *MemoryStore) CountTurns(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.turns[sessionId])), nil
}

func (s *MemoryStore) UpdateTitle(ctx context.Context, sessionId uuid.UUID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionId]
	if !ok {
		return serverutils.NewNotFoundError("chat session not found")
	}
	session.Title = title
	return nil
}

func (s *MemoryStore) GetPendingState(ctx context.Context, sessionId uuid.UUID) (*PendingState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[sessionId], nil
}

func (s *MemoryStore) SetPendingState(ctx context.Context, sessionId uuid.UUID, pending *PendingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[sessionId] = pending
	return nil
}

func (s *MemoryStore) ClearPendingState(ctx context.Context, sessionId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, sessionId)
	return nil
}
