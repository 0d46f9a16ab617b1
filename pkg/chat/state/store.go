package state

import (
	"context"

	"customer-inquiry-be/internal/entity"

	"github.com/google/uuid"
)

// PendingState is the carried-over slot a session may hold between turns.
// At most one of the two fields is set.
type PendingState struct {
	Rewrite       *entity.PendingRewrite
	Clarification *entity.PendingClarification
}

func (p *PendingState) IsEmpty() bool {
	return p == nil || (p.Rewrite == nil && p.Clarification == nil)
}

// ConversationStore persists sessions, turns and pending state. Append is
// at-most-once per logical turn; the other operations are safe to retry.
type ConversationStore interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*entity.ChatSession, error)
	GetSession(ctx context.Context, sessionId, userId uuid.UUID) (*entity.ChatSession, error)
	AppendTurn(ctx context.Context, sessionId uuid.UUID, role, text string) (*entity.ChatMessage, error)
	GetRecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]entity.ChatMessage, error)
	CountTurns(ctx context.Context, sessionId uuid.UUID) (int64, error)
	UpdateTitle(ctx context.Context, sessionId uuid.UUID, title string) error

	GetPendingState(ctx context.Context, sessionId uuid.UUID) (*PendingState, error)
	SetPendingState(ctx context.Context, sessionId uuid.UUID, pending *PendingState) error
	ClearPendingState(ctx context.Context, sessionId uuid.UUID) error
}
