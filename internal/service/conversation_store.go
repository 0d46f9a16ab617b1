package service

import (
	"context"
	"time"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/serverutils"
	"customer-inquiry-be/internal/repository/memory"
	"customer-inquiry-be/internal/repository/specification"
	"customer-inquiry-be/internal/repository/unitofwork"
	"customer-inquiry-be/pkg/chat/state"

	"github.com/google/uuid"
)

// gormConversationStore is the database-backed ConversationStore. Pending
// state lives in a jsonb column on the session row and is mirrored in an
// in-process cache for the per-turn hot path.
type gormConversationStore struct {
	uowFactory   unitofwork.RepositoryFactory
	pendingCache *memory.PendingStateRepository
}

var _ state.ConversationStore = (*gormConversationStore)(nil)

func NewGormConversationStore(uowFactory unitofwork.RepositoryFactory, pendingCache *memory.PendingStateRepository) state.ConversationStore {
	return &gormConversationStore{
		uowFactory:   uowFactory,
		pendingCache: pendingCache,
	}
}

func (s *gormConversationStore) CreateSession(ctx context.Context, userId uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultSessionTitle,
		CreatedAt: time.Now(),
	}

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *gormConversationStore) GetSession(ctx context.Context, sessionId, userId uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("chat session not found")
	}
	return session, nil
}

func (s *gormConversationStore) AppendTurn(ctx context.Context, sessionId uuid.UUID, role, text string) (*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	message := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          text,
		Role:          role,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	}

	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *gormConversationStore) GetRecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.ChatMessageRepository().FindRecentBySessionId(ctx, sessionId, limit)
	if err != nil {
		return nil, err
	}

	turns := make([]entity.ChatMessage, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, *m)
	}
	return turns, nil
}

func (s *gormConversationStore) CountTurns(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().Count(ctx, specification.ByChatSessionID{ChatSessionID: sessionId})
}

func (s *gormConversationStore) UpdateTitle(ctx context.Context, sessionId uuid.UUID, title string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.NewNotFoundError("chat session not found")
	}

	session.Title = title
	return uow.ChatSessionRepository().Update(ctx, session)
}

func (s *gormConversationStore) GetPendingState(ctx context.Context, sessionId uuid.UUID) (*state.PendingState, error) {
	if pending, found := s.pendingCache.Get(sessionId); found {
		return pending, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFoundError("chat session not found")
	}

	pending := &state.PendingState{
		Rewrite:       session.PendingRewrite,
		Clarification: session.PendingClarification,
	}
	s.pendingCache.Save(sessionId, pending)
	return pending, nil
}

func (s *gormConversationStore) SetPendingState(ctx context.Context, sessionId uuid.UUID, pending *state.PendingState) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var (
		rewrite       *entity.PendingRewrite
		clarification *entity.PendingClarification
	)
	if pending != nil {
		rewrite = pending.Rewrite
		clarification = pending.Clarification
	}

	if err := uow.ChatSessionRepository().UpdatePendingState(ctx, sessionId, rewrite, clarification); err != nil {
		return err
	}
	s.pendingCache.Save(sessionId, pending)
	return nil
}

func (s *gormConversationStore) ClearPendingState(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.ChatSessionRepository().UpdatePendingState(ctx, sessionId, nil, nil); err != nil {
		return err
	}
	s.pendingCache.Delete(sessionId)
	return nil
}
