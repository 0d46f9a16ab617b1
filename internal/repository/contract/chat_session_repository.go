package contract

import (
	"context"

	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	// UpdatePendingState persists exactly the two pending columns. A nil value
	// clears the corresponding slot.
	UpdatePendingState(ctx context.Context, id uuid.UUID, rewrite *entity.PendingRewrite, clarification *entity.PendingClarification) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
