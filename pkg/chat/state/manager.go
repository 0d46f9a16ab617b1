package state

import (
	"context"
	"fmt"

	"customer-inquiry-be/internal/entity"

	"github.com/google/uuid"
)

// Manager wraps a ConversationStore and enforces the pending-state
// invariant: a session never holds a rewrite and a clarification at the
// same time. All pipeline code goes through the Manager, never the store
// directly.
type Manager struct {
	store ConversationStore
}

func NewManager(store ConversationStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) Store() ConversationStore {
	return m.store
}

func (m *Manager) SetPendingRewrite(ctx context.Context, sessionId uuid.UUID, rewrite *entity.PendingRewrite) error {
	if rewrite == nil {
		return fmt.Errorf("pending rewrite must not be nil")
	}
	return m.store.SetPendingState(ctx, sessionId, &PendingState{Rewrite: rewrite})
}

func (m *Manager) SetPendingClarification(ctx context.Context, sessionId uuid.UUID, clarification *entity.PendingClarification) error {
	if clarification == nil {
		return fmt.Errorf("pending clarification must not be nil")
	}
	return m.store.SetPendingState(ctx, sessionId, &PendingState{Clarification: clarification})
}

// Consume fetches the current pending state and clears it in one logical
// step. Pending state survives at most one turn, whatever the outcome.
func (m *Manager) Consume(ctx context.Context, sessionId uuid.UUID) (*PendingState, error) {
	pending, err := m.store.GetPendingState(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if pending.IsEmpty() {
		return nil, nil
	}
	if err := m.store.ClearPendingState(ctx, sessionId); err != nil {
		return nil, err
	}
	return pending, nil
}
